package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.API.BaseURL = "http://127.0.0.1:0"
	cfg.API.HTTPTimeout = 5 * time.Second
	cfg.API.UserAgent = "redlist-test/1.0"
	cfg.API.MaxRetries = 0
	cfg.Search.Debounce = 0
	cfg.Database.Path = ""
	cfg.Database.SearchIndex = ""
	cfg.Log.Level = "off"
	cfg.Log.File = ""
	return cfg
}
