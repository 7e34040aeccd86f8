package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/probolabs/probo-sync/internal/client"
	"github.com/probolabs/probo-sync/internal/config"
)

// newDebugHandler exposes read-only views of the synced state, plus health
// and Prometheus metrics. It never mutates state; all writes flow through
// the event streams.
func newDebugHandler(cfg config.DebugConfig, trader *client.Trader, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Debug("debug request", "method", req.Method, "path", req.URL.Path)
			next.ServeHTTP(w, req)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		stats := trader.RouterStats()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"client_id": trader.ClientID(),
			"routing": map[string]int64{
				"received":      stats.Received,
				"routed":        stats.Routed,
				"decode_errors": stats.DecodeErrors,
				"unknown":       stats.Unknown,
				"foreign_depth": stats.ForeignDepth,
			},
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/state/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"orders": trader.State().OpenOrders(),
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/state/markets", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"markets": trader.State().Markets(),
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/state/prices", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"prices": trader.State().Prices(),
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/state/depth/{market_id}", func(w http.ResponseWriter, req *http.Request) {
		marketID := mux.Vars(req)["market_id"]

		out := map[string]any{"market_id": marketID}
		if d, ok := trader.State().PublicDepth(marketID); ok {
			out["public"] = d
		}
		if d, ok := trader.State().ScopedDepth(marketID); ok {
			out["scoped"] = d
		}
		writeJSON(w, http.StatusOK, out)
	}).Methods(http.MethodGet)

	r.HandleFunc("/state/trades", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"trades": trader.State().RecentTrades(),
		})
	}).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	})

	return c.Handler(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
