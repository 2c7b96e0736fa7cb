// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package server

import "github.com/aristanetworks/kvloop/wire"

// Commands are case-sensitive and lowercase on the wire.
const (
	cmdGet = "get"
	cmdSet = "set"
	cmdDel = "del"
)

var unknownCommand = []byte("Unknown command")

// dispatch executes one parsed request against the server's store and
// appends the reply frame to the connection's write buffer. Unknown or
// misshapen commands are reported in-band with StatusErr and never close the
// connection.
func (s *Server) dispatch(c *conn, args [][]byte) {
	switch {
	case len(args) == 2 && string(args[0]) == cmdGet:
		commands.WithLabelValues(cmdGet).Inc()
		if v, ok := s.store.Get(string(args[1])); ok {
			wire.AppendResponse(c.out, wire.StatusOK, []byte(v))
		} else {
			wire.AppendResponse(c.out, wire.StatusNX, nil)
		}
	case len(args) == 3 && string(args[0]) == cmdSet:
		commands.WithLabelValues(cmdSet).Inc()
		s.store.Set(string(args[1]), string(args[2]))
		wire.AppendResponse(c.out, wire.StatusOK, nil)
	case len(args) == 2 && string(args[0]) == cmdDel:
		commands.WithLabelValues(cmdDel).Inc()
		// Deleting an absent key still succeeds.
		s.store.Delete(string(args[1]))
		wire.AppendResponse(c.out, wire.StatusOK, nil)
	default:
		commands.WithLabelValues("unknown").Inc()
		wire.AppendResponse(c.out, wire.StatusErr, unknownCommand)
	}
}
