// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The kvserverd daemon serves the kvloop in-memory key-value store over TCP.
// All state is held in memory and lost on restart.
package main

import (
	"flag"

	"github.com/aristanetworks/glog"

	"github.com/aristanetworks/kvloop/monitor"
	"github.com/aristanetworks/kvloop/server"
)

var addrFlag = flag.String("addr", "",
	"Address to listen on (default "+server.DefaultAddr+")")

var monitorFlag = flag.String("monitoraddr", "",
	"Address for the HTTP monitoring server; empty disables it")

var configFlag = flag.String("config", "", "Path to a YAML config file")

func main() {
	flag.Parse()

	cfg := &config{}
	if *configFlag != "" {
		var err error
		cfg, err = loadConfig(*configFlag)
		if err != nil {
			glog.Fatalf("Failed to load config %s: %v", *configFlag, err)
		}
	}
	// Flags take precedence over the config file.
	if *addrFlag != "" {
		cfg.ListenAddr = *addrFlag
	}
	if *monitorFlag != "" {
		cfg.MonitorAddr = *monitorFlag
	}

	if cfg.MonitorAddr != "" {
		go monitor.NewMonitorServer(cfg.MonitorAddr).Run()
	}

	s, err := server.New(server.Config{Addr: cfg.ListenAddr})
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Listening on %s", s.Addr())
	if err := s.Run(); err != nil {
		glog.Fatal(err)
	}
}
