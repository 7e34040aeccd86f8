package config

import "time"

// TraderConfig is the root configuration for a trader instance.
type TraderConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Engine   EngineConfig   `yaml:"engine"`
	User     UserConfig     `yaml:"user"`
	Streams  StreamsConfig  `yaml:"streams"`
	Sync     SyncConfig     `yaml:"sync"`
	Database DBConfig       `yaml:"database"`
	Recorder RecorderConfig `yaml:"recorder"`
	Debug    DebugConfig    `yaml:"debug"`
}

// InstanceConfig identifies this trader.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// EngineConfig holds matching-engine endpoints.
type EngineConfig struct {
	APIURL     string        `yaml:"api_url"` // Request surface (e.g., http://localhost:8000)
	WSURL      string        `yaml:"ws_url"`  // Event streams (e.g., ws://localhost:8001/ws)
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// UserConfig identifies the trading account.
type UserConfig struct {
	ID uint32 `yaml:"id"`
}

// StreamsConfig holds streaming-session settings.
type StreamsConfig struct {
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

// SyncConfig holds state-resynchronization settings.
type SyncConfig struct {
	// ResyncInterval is how often the authoritative open-orders snapshot
	// is re-requested. Zero disables periodic resync.
	ResyncInterval time.Duration `yaml:"resync_interval"`
}

// DBConfig holds the Postgres connection for the market-data recorder.
// An empty host disables recording.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a database is configured.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

// RecorderConfig holds batch-recorder settings.
type RecorderConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DebugConfig holds the local debug/metrics HTTP surface settings.
type DebugConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}
