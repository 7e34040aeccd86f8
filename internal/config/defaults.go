package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPIURL             = "http://localhost:8000"
	DefaultWSURL              = "ws://localhost:8001/ws"
	DefaultAPITimeout         = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultPingInterval       = 30 * time.Second
	DefaultPingTimeout        = 90 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultResyncInterval     = 0 * time.Second // Disabled unless configured
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultBatchSize          = 500
	DefaultFlushInterval      = 1 * time.Second
	DefaultDebugPort          = 9090
)

func (c *TraderConfig) applyDefaults() {
	if c.Engine.APIURL == "" {
		c.Engine.APIURL = DefaultAPIURL
	}
	if c.Engine.WSURL == "" {
		c.Engine.WSURL = DefaultWSURL
	}
	if c.Engine.Timeout == 0 {
		c.Engine.Timeout = DefaultAPITimeout
	}
	if c.Engine.MaxRetries == 0 {
		c.Engine.MaxRetries = DefaultMaxRetries
	}

	if c.Streams.HandshakeTimeout == 0 {
		c.Streams.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Streams.WriteTimeout == 0 {
		c.Streams.WriteTimeout = DefaultWriteTimeout
	}
	if c.Streams.PingInterval == 0 {
		c.Streams.PingInterval = DefaultPingInterval
	}
	if c.Streams.PingTimeout == 0 {
		c.Streams.PingTimeout = DefaultPingTimeout
	}
	if c.Streams.ReconnectBaseDelay == 0 {
		c.Streams.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Streams.ReconnectMaxDelay == 0 {
		c.Streams.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}

	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			c.Database.Port = DefaultDBPort
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = DefaultDBSSLMode
		}
		if c.Database.MaxConns == 0 {
			c.Database.MaxConns = DefaultMaxConns
		}
		if c.Database.MinConns == 0 {
			c.Database.MinConns = DefaultMinConns
		}
	}

	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}

	if c.Debug.Port == 0 {
		c.Debug.Port = DefaultDebugPort
	}
}
