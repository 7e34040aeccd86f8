// Package session owns one streaming connection to the matching engine:
// dialing, the receive loop, serialized sends, and teardown. A Session
// does not reconnect; callers open a fresh Session instead.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/probolabs/probo-sync/internal/wire"
)

// Session is one logical streaming connection. Send and Close are safe to
// call from any goroutine; decoded events are delivered to the OnMessage
// handler in arrival order from a single receive goroutine.
type Session struct {
	cfg    Config
	logger *slog.Logger

	conn *websocket.Conn

	// Write serialization
	writeMu sync.Mutex

	// State and handler registration
	mu            sync.Mutex
	state         State
	onMessage     func(wire.Event)
	onDecodeError func(raw []byte, err error)
	onClose       func(reason error)
	lastPingAt    time.Time

	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
}

// New creates an unopened Session.
func New(cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	return &Session{
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// OnMessage registers the handler invoked once per decoded message, in
// arrival order. Register before Open.
func (s *Session) OnMessage(fn func(wire.Event)) {
	s.mu.Lock()
	s.onMessage = fn
	s.mu.Unlock()
}

// OnDecodeError registers the handler for messages that failed to decode.
// The message is dropped; the connection stays up.
func (s *Session) OnDecodeError(fn func(raw []byte, err error)) {
	s.mu.Lock()
	s.onDecodeError = fn
	s.mu.Unlock()
}

// OnClose registers the hook invoked exactly once when the session reaches
// Closed. Reason is nil for a locally requested close.
func (s *Session) OnClose(fn func(reason error)) {
	s.mu.Lock()
	s.onClose = fn
	s.mu.Unlock()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open establishes the connection. The configured Identity, if any, is
// carried as a client_id query parameter so the engine can address
// client-scoped events to this connection.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return ErrAlreadyClosed
	}
	s.mu.Unlock()

	endpoint, err := s.buildURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
		return fmt.Errorf("dial %s: %w", s.cfg.Endpoint, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.state = StateOpen
	s.lastPingAt = time.Now()
	s.mu.Unlock()

	// The engine pings to keep connections alive; track liveness on both
	// ping and pong.
	conn.SetPingHandler(func(data string) error {
		s.mu.Lock()
		s.lastPingAt = time.Now()
		s.mu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		s.mu.Lock()
		s.lastPingAt = time.Now()
		s.mu.Unlock()
		return nil
	})

	go s.readLoop()
	go s.heartbeatLoop()

	s.logger.Debug("session open", "endpoint", s.cfg.Endpoint, "identity", s.cfg.Identity != "")
	return nil
}

// buildURL appends the identity token to the endpoint query string.
func (s *Session) buildURL() (string, error) {
	if s.cfg.Identity == "" {
		return s.cfg.Endpoint, nil
	}

	u, err := url.Parse(s.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("client_id", s.cfg.Identity)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Send encodes v as JSON and transmits it. It does not wait for any
// response; correlation, if any, happens via a later event. Fails with
// ErrNotConnected unless the session is Open.
func (s *Session) Send(v any) error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return ErrNotConnected
	}
	conn := s.conn
	s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Re-check under the write lock: a Close racing this Send must surface
	// as ErrNotConnected, not a silent drop.
	if s.State() != StateOpen {
		return ErrNotConnected
	}

	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Close releases the connection. Idempotent: closing twice is a no-op.
// The receive loop is unblocked by the transport close and exits; the
// OnClose hook fires once with a nil reason.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateClosing {
		s.mu.Unlock()
		return nil
	}
	connected := s.state == StateOpen
	s.state = StateClosing
	conn := s.conn
	s.mu.Unlock()

	s.signalDone()

	if connected && conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()

	s.fireOnClose(nil)
	return nil
}

// terminate transitions to Closed after a transport failure.
func (s *Session) terminate(reason error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	conn := s.conn
	s.mu.Unlock()

	s.signalDone()

	if conn != nil {
		conn.Close()
	}

	s.logger.Warn("session terminated", "reason", reason)
	s.fireOnClose(reason)
}

// signalDone closes the done channel exactly once.
func (s *Session) signalDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// fireOnClose invokes the close hook exactly once.
func (s *Session) fireOnClose(reason error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		fn := s.onClose
		s.mu.Unlock()
		if fn != nil {
			fn(reason)
		}
	})
}

// readLoop receives, decodes, and delivers messages until the connection
// goes away.
func (s *Session) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Local close already in progress.
			default:
				s.terminate(err)
			}
			return
		}

		ev, err := wire.Decode(data)
		if err != nil {
			s.mu.Lock()
			fn := s.onDecodeError
			s.mu.Unlock()
			if fn != nil {
				fn(data, err)
			} else {
				s.logger.Warn("dropping undecodable message", "error", err)
			}
			continue
		}

		s.mu.Lock()
		fn := s.onMessage
		s.mu.Unlock()
		if fn != nil {
			fn(ev)
		}
	}
}

// heartbeatLoop sends keepalive pings and detects stale connections.
func (s *Session) heartbeatLoop() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			conn := s.conn
			lastPing := s.lastPingAt
			s.mu.Unlock()

			if conn != nil {
				deadline := time.Now().Add(s.cfg.WriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
					s.logger.Debug("failed to send ping", "error", err)
				}
			}

			if time.Since(lastPing) > s.cfg.PingTimeout {
				s.terminate(ErrStaleConnection)
				return
			}
		}
	}
}
