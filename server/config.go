package server

import (
	"time"

	"gopkg.in/ini.v1"
)

const (
	DefaultPort     = "58085"
	DefaultDatabase = "database"

	// DefaultSweepInterval paces the background expiry sweep; zero disables
	// it, leaving only lazy ending on reads.
	DefaultSweepInterval = 30 * time.Second
)

// Config collects the server knobs. Values come from the optional INI
// file, then flags override.
type Config struct {
	Port          string
	Verbose       bool
	Database      string
	SweepInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Port:          DefaultPort,
		Database:      DefaultDatabase,
		SweepInterval: DefaultSweepInterval,
	}
}

// LoadConfig reads cfg keys from an INI file: port, verbose, database,
// sweep_interval (Go duration syntax). Missing keys keep their current
// values.
func LoadConfig(path string, cfg Config) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return cfg, err
	}
	section := file.Section("")
	if key := section.Key("port"); key.String() != "" {
		cfg.Port = key.String()
	}
	if section.HasKey("verbose") {
		cfg.Verbose = section.Key("verbose").MustBool(cfg.Verbose)
	}
	if key := section.Key("database"); key.String() != "" {
		cfg.Database = key.String()
	}
	if key := section.Key("sweep_interval"); key.String() != "" {
		interval, err := time.ParseDuration(key.String())
		if err != nil {
			return cfg, err
		}
		cfg.SweepInterval = interval
	}
	return cfg, nil
}
