// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package iot holds the daemon's configuration: a plain JSON-tagged
// struct loaded from a file and overlaid with environment variables,
// following the teacher's own config idiom rather than a third-party
// config-loading framework (see DESIGN.md).
package iot

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// StoreBackend selects which store.Store implementation the daemon
// constructs.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StorePebble StoreBackend = "pebble"
)

// Config is the daemon's full set of runtime parameters.
type Config struct {
	ListenAddr    string       `json:"listen_addr"`
	StoreBackend  StoreBackend `json:"store_backend"`
	StorePath     string       `json:"store_path"`
	LeaseInterval Duration     `json:"lease_interval"`
	BufferSize    int          `json:"buffer_size"`
	Descriptors   string       `json:"descriptors"`
	LogLevel      string       `json:"log_level"`
	MetricsAddr   string       `json:"metrics_addr"`
	EnableMDNS    bool         `json:"enable_mdns"`
	AdminSocket   string       `json:"admin_socket"`
}

// Duration wraps time.Duration so it marshals as a human-readable
// string ("5m") in the JSON config file instead of raw nanoseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: lease_interval: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the daemon's default configuration.
func Default() Config {
	return Config{
		ListenAddr:    "0.0.0.0:10100",
		StoreBackend:  StoreMemory,
		StorePath:     "./iot-data",
		LeaseInterval: Duration(5 * time.Minute),
		BufferSize:    512,
		LogLevel:      "info",
		MetricsAddr:   "",
		EnableMDNS:    false,
		AdminSocket:   "./iotd.sock",
	}
}

// Load reads a JSON config file at path (if non-empty), starting from
// Default, then applies IOT_-prefixed environment variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("IOT_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("IOT_STORE_BACKEND"); ok {
		cfg.StoreBackend = StoreBackend(v)
	}
	if v, ok := os.LookupEnv("IOT_STORE_PATH"); ok {
		cfg.StorePath = v
	}
	if v, ok := os.LookupEnv("IOT_LEASE_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LeaseInterval = Duration(d)
		}
	}
	if v, ok := os.LookupEnv("IOT_BUFFER_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BufferSize = n
		}
	}
	if v, ok := os.LookupEnv("IOT_DESCRIPTORS"); ok {
		cfg.Descriptors = v
	}
	if v, ok := os.LookupEnv("IOT_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("IOT_METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := os.LookupEnv("IOT_ENABLE_MDNS"); ok {
		cfg.EnableMDNS = v == "1" || v == "true"
	}
	if v, ok := os.LookupEnv("IOT_ADMIN_SOCKET"); ok {
		cfg.AdminSocket = v
	}
}
