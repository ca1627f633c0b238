package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the GophJournal CLI.
type Config struct {
	ServerEndpointAddr string
	// DatabaseFile is the local SQLite file. A bare name is placed under DataDir.
	DatabaseFile   string
	RequestTimeout time.Duration
	// TimeZone names the IANA zone date filters are interpreted in; "Local"
	// uses the machine zone.
	TimeZone string
}

// DataDir is the directory, relative to the working directory, that holds
// bare-named database files.
const DataDir = "data"

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabaseFile = "journal.db"
	c.RequestTimeout = 10 * time.Second
	c.TimeZone = "Local"
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
