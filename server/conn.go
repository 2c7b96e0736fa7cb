// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package server

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/aristanetworks/kvloop/buffer"
	"github.com/aristanetworks/kvloop/wire"
)

type connState int

const (
	stateRead connState = iota
	stateWrite
	stateClosed
)

// readChunk is the space reserved in the read buffer before each socket
// read.
const readChunk = 1024

// conn is one client connection. The event loop owns it exclusively:
// destruction closes the socket and drops both buffers.
type conn struct {
	fd    int
	state connState
	in    *buffer.Buffer
	out   *buffer.Buffer
}

func newConn(fd int) *conn {
	return &conn{
		fd:  fd,
		in:  buffer.New(readChunk),
		out: buffer.New(readChunk),
	}
}

// handleRead performs a single nonblocking read and pumps any complete
// frames out of the read buffer. A would-block result leaves the state
// untouched; EOF and hard errors close the connection.
func (c *conn) handleRead(s *Server) {
	c.in.Reserve(readChunk)
	n, err := unix.Read(c.fd, c.in.Writable())
	switch {
	case err == unix.EAGAIN || err == unix.EINTR:
		return
	case err != nil:
		s.log.Infof("fd=%d: read: %v", c.fd, err)
		c.state = stateClosed
		return
	case n == 0:
		s.log.Infof("fd=%d: peer closed", c.fd)
		c.state = stateClosed
		return
	}
	c.in.Commit(n)
	c.pump(s)
	if c.state == stateRead && c.out.Len() > 0 {
		c.state = stateWrite
	}
}

// pump peels complete request frames off the read buffer and dispatches
// them, appending each reply to the write buffer in request order. Any
// malformed frame closes the connection; frame boundaries cannot be trusted
// after one.
func (c *conn) pump(s *Server) {
	for {
		args, n, err := wire.DecodeRequest(c.in.Readable())
		if errors.Is(err, wire.ErrIncomplete) {
			return
		}
		if err != nil {
			s.log.Infof("fd=%d: %v", c.fd, err)
			protocolErrors.Inc()
			c.state = stateClosed
			return
		}
		s.dispatch(c, args)
		c.in.Consume(n)
	}
}

// handleWrite performs a single nonblocking write from the write buffer and
// returns to reading once it drains.
func (c *conn) handleWrite(s *Server) {
	n, err := unix.Write(c.fd, c.out.Readable())
	switch {
	case err == unix.EAGAIN || err == unix.EINTR:
		return
	case err != nil:
		s.log.Infof("fd=%d: write: %v", c.fd, err)
		c.state = stateClosed
		return
	}
	c.out.Consume(n)
	if c.out.Len() == 0 {
		c.state = stateRead
	}
}
