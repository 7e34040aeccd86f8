package config

import (
	"fmt"
	"strings"
)

// Validate checks required fields and cross-field consistency.
func (c *TraderConfig) Validate() error {
	if c.Instance.ID == "" {
		return fmt.Errorf("instance.id is required")
	}

	if c.User.ID == 0 {
		return fmt.Errorf("user.id is required")
	}

	if !strings.HasPrefix(c.Engine.APIURL, "http://") && !strings.HasPrefix(c.Engine.APIURL, "https://") {
		return fmt.Errorf("engine.api_url must be an http(s) URL")
	}
	if !strings.HasPrefix(c.Engine.WSURL, "ws://") && !strings.HasPrefix(c.Engine.WSURL, "wss://") {
		return fmt.Errorf("engine.ws_url must be a ws(s) URL")
	}

	if c.Streams.ReconnectBaseDelay > c.Streams.ReconnectMaxDelay {
		return fmt.Errorf("streams.reconnect_base_delay (%v) cannot exceed reconnect_max_delay (%v)",
			c.Streams.ReconnectBaseDelay, c.Streams.ReconnectMaxDelay)
	}

	if c.Database.Enabled() {
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database.min_conns (%d) cannot exceed max_conns (%d)",
				c.Database.MinConns, c.Database.MaxConns)
		}
	}

	if c.Recorder.BatchSize < 0 {
		return fmt.Errorf("recorder.batch_size cannot be negative")
	}

	return nil
}
