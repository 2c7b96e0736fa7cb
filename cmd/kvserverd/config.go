// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

// config is the representation of kvserverd's YAML config file.
type config struct {
	// Address to serve the KV protocol on.
	ListenAddr string `yaml:"listenaddr,omitempty"`
	// Address for the HTTP monitoring server; empty disables it.
	MonitorAddr string `yaml:"monitoraddr,omitempty"`
}

func loadConfig(path string) (*config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &config{}
	if err := yaml.UnmarshalStrict(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
