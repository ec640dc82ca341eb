// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"listen_addr": "0.0.0.0:20100",
		"store_backend": "pebble",
		"lease_interval": "2m"
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:20100", cfg.ListenAddr)
	require.Equal(t, StorePebble, cfg.StoreBackend)
	require.Equal(t, 2*time.Minute, time.Duration(cfg.LeaseInterval))
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"listen_addr": "0.0.0.0:20100",
		"buffer_size": 2048
	}`), 0o644))

	t.Setenv("IOT_LISTEN_ADDR", "0.0.0.0:30100")
	t.Setenv("IOT_BUFFER_SIZE", "1024")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:30100", cfg.ListenAddr)
	require.Equal(t, 1024, cfg.BufferSize)
}

func TestLoadDescriptors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "descriptors.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"kind": "temperature", "flags": "r"},
		{"kind": "brightness", "flags": "rw"}
	]`), 0o644))

	ds, err := LoadDescriptors(path)
	require.NoError(t, err)
	require.Len(t, ds, 2)
}

func TestLoadDescriptorsRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "descriptors.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"kind": "nonsense", "flags": "r"}]`), 0o644))

	_, err := LoadDescriptors(path)
	require.Error(t, err)
}
