// Package config handles configuration for the tripsync client: defaults,
// optional JSON overlay, and command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the tripsync client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the sync backend.
//   - DatabasePath: path of the local SQLite database file.
//   - SyncInterval: periodic background sync interval.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	ServerEndpointAddr  string
	DatabasePath        string
	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "tripsync.db"
	c.SyncInterval = 5 * time.Minute
	c.OnlineCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
