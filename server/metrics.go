// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics are registered on the default registry and exposed by the monitor
// package's /metrics endpoint. Counters are shared across servers in the
// same process.
var (
	activeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kvloop_connections_active",
		Help: "Number of currently open client connections.",
	})
	acceptedConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kvloop_connections_accepted_total",
		Help: "Total client connections accepted.",
	})
	commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kvloop_commands_total",
		Help: "Commands dispatched, by command name.",
	}, []string{"command"})
	protocolErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kvloop_protocol_errors_total",
		Help: "Malformed frames that caused a connection to be closed.",
	})
)

func init() {
	prometheus.MustRegister(
		activeConnections,
		acceptedConnections,
		commands,
		protocolErrors,
	)
}
