// streamprobe connects to the engine's public market stream and prints
// parsed events to the console.
// Usage: go run ./cmd/streamprobe --ws ws://localhost:8001/ws
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/probolabs/probo-sync/internal/model"
	"github.com/probolabs/probo-sync/internal/router"
	"github.com/probolabs/probo-sync/internal/session"
	"github.com/probolabs/probo-sync/internal/wire"
)

func main() {
	wsURL := flag.String("ws", "ws://localhost:8001/ws", "engine WebSocket URL")
	verbose := flag.Bool("verbose", false, "print full event JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	// No identity: this is the public market stream only.
	rtr := router.New("", logger)
	rtr.SetMarketHandlers(router.MarketHandlers{
		OnPrice: func(p model.Price) {
			if *verbose {
				data, _ := json.MarshalIndent(p, "", "  ")
				fmt.Printf("[PRICE] %s\n", data)
			} else {
				fmt.Printf("[PRICE] market=%s option=%s price=%.1f\n",
					p.MarketID, p.Option, p.Price)
			}
		},
		OnDepth: func(d model.Depth) {
			if *verbose {
				data, _ := json.MarshalIndent(d, "", "  ")
				fmt.Printf("[DEPTH] %s\n", data)
			} else {
				fmt.Printf("[DEPTH] market=%s bids=%d asks=%d\n",
					d.MarketID, len(d.Bids), len(d.Asks))
			}
		},
	})
	rtr.OnUnknown(func(ev wire.Event) {
		fmt.Printf("[UNKNOWN] tag=%s\n", ev.Tag)
	})

	s := session.New(session.Config{Endpoint: *wsURL}, logger)
	rtr.Attach(s, router.StreamMarket)

	closed := make(chan struct{})
	s.OnClose(func(reason error) {
		logger.Info("stream closed", "reason", reason)
		close(closed)
	})

	logger.Info("connecting", "ws_url", *wsURL)
	if err := s.Open(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := rtr.Stats()
				logger.Info("stats",
					"received", stats.Received,
					"routed", stats.Routed,
					"decode_errors", stats.DecodeErrors,
					"unknown", stats.Unknown,
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case <-closed:
	}

	s.Close()
	logger.Info("shutdown complete")
}
