// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package server implements the KV server: a single-threaded readiness loop
// multiplexing nonblocking client sockets, a per-connection read/write state
// machine with request pipelining, and the command dispatch over an
// in-memory store.
//
// All connection and dictionary state is confined to the goroutine running
// Run, so the server uses no locks. Per-connection replies are emitted in
// request order because parsing, dispatch and reply buffering happen
// together inside the read handler's pump.
package server

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"

	aglog "github.com/aristanetworks/kvloop/glog"
	"github.com/aristanetworks/kvloop/logger"
	"github.com/aristanetworks/kvloop/store"
)

// DefaultAddr is where the server listens when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:6379"

// Config carries the server's construction options.
type Config struct {
	// Addr is the host:port to listen on. Port 0 picks an ephemeral port;
	// the bound address is then available from Server.Addr.
	Addr string
	// Logger defaults to the glog shim when nil.
	Logger logger.Logger
}

// Server is one KV server instance. Create it with New, drive it with Run.
type Server struct {
	log      logger.Logger
	store    *store.Store
	listenFD int
	addr     string

	// conns is indexed by socket fd and grows on demand; nil slots are
	// unused.
	conns []*conn
	// pollfds is rebuilt each iteration, sized to cover every connection.
	pollfds []unix.PollFd

	// stopR/stopW form a nonblocking pipe watched by the poll set so Stop
	// can wake the loop from another goroutine.
	stopR, stopW int
	stopOnce     sync.Once
}

// New binds and listens on cfg.Addr and returns a server ready to Run. The
// listening socket is nonblocking with SO_REUSEADDR set.
func New(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = &aglog.Glog{InfoLevel: 1}
	}
	fd, bound, err := listen(cfg.Addr)
	if err != nil {
		return nil, err
	}
	var pipefds [2]int
	if err := unix.Pipe(pipefds[:]); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("pipe", err)
	}
	unix.SetNonblock(pipefds[0], true)
	unix.SetNonblock(pipefds[1], true)
	s := &Server{
		log:      cfg.Logger,
		store:    store.New(),
		listenFD: fd,
		addr:     bound,
		stopR:    pipefds[0],
		stopW:    pipefds[1],
	}
	return s, nil
}

// listen creates the nonblocking IPv4 listening socket for addr and returns
// its fd and the actually bound address.
func listen(addr string) (int, string, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return -1, "", fmt.Errorf("invalid listen address %q: %v", addr, err)
	}
	ip := net.IPv4zero
	if host != "" {
		ip = net.ParseIP(host)
		if ip == nil || ip.To4() == nil {
			return -1, "", fmt.Errorf("listen address %q is not an IPv4 address", host)
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return -1, "", fmt.Errorf("invalid listen port %q: %v", portStr, err)
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, "", os.NewSyscallError("socket", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, "", os.NewSyscallError("setsockopt", err)
	}
	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip.To4())
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, "", os.NewSyscallError("bind", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return -1, "", os.NewSyscallError("listen", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, "", os.NewSyscallError("fcntl", err)
	}
	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return -1, "", os.NewSyscallError("getsockname", err)
	}
	sa4 := bound.(*unix.SockaddrInet4)
	return fd, net.JoinHostPort(net.IP(sa4.Addr[:]).String(), strconv.Itoa(sa4.Port)), nil
}

// Addr returns the bound listen address, useful when Config.Addr requested
// port 0.
func (s *Server) Addr() string {
	return s.addr
}

// Run drives the event loop until Stop is called. Each iteration polls the
// listener, the stop pipe and every open connection, services whatever is
// ready, and reaps connections that reached the closed state.
func (s *Server) Run() error {
	defer s.cleanup()
	s.log.Infof("serving on %s", s.addr)
	for {
		s.pollfds = s.pollfds[:0]
		s.pollfds = append(s.pollfds,
			unix.PollFd{Fd: int32(s.listenFD), Events: unix.POLLIN},
			unix.PollFd{Fd: int32(s.stopR), Events: unix.POLLIN},
		)
		for _, c := range s.conns {
			if c == nil {
				continue
			}
			ev := int16(unix.POLLIN)
			if c.state == stateWrite {
				ev = unix.POLLOUT
			}
			s.pollfds = append(s.pollfds, unix.PollFd{Fd: int32(c.fd), Events: ev})
		}
		if _, err := unix.Poll(s.pollfds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return os.NewSyscallError("poll", err)
		}
		if s.pollfds[1].Revents != 0 {
			s.log.Infof("stop requested")
			return nil
		}
		if s.pollfds[0].Revents&unix.POLLIN != 0 {
			s.acceptReady()
		}
		for _, pfd := range s.pollfds[2:] {
			if pfd.Revents == 0 {
				continue
			}
			c := s.conns[pfd.Fd]
			if c == nil {
				continue
			}
			// POLLERR and POLLHUP are reported unrequested; the handler for
			// the current state runs either way and surfaces the error from
			// the syscall itself.
			switch c.state {
			case stateRead:
				c.handleRead(s)
			case stateWrite:
				c.handleWrite(s)
			}
			if c.state == stateClosed {
				s.closeConn(c)
			}
		}
	}
}

// acceptReady accepts until the listener would block, registering each new
// connection nonblocking in the fd-indexed table.
func (s *Server) acceptReady() {
	for {
		fd, _, err := unix.Accept(s.listenFD)
		if err == unix.EAGAIN || err == unix.EINTR {
			return
		}
		if err != nil {
			s.log.Errorf("accept: %v", err)
			return
		}
		if err := unix.SetNonblock(fd, true); err != nil {
			s.log.Errorf("fd=%d: set nonblocking: %v", fd, err)
			unix.Close(fd)
			continue
		}
		for fd >= len(s.conns) {
			s.conns = append(s.conns, nil)
		}
		s.conns[fd] = newConn(fd)
		acceptedConnections.Inc()
		activeConnections.Inc()
		s.log.Infof("fd=%d: accepted", fd)
	}
}

func (s *Server) closeConn(c *conn) {
	unix.Close(c.fd)
	s.conns[c.fd] = nil
	activeConnections.Dec()
	s.log.Infof("fd=%d: closed", c.fd)
}

// Stop wakes the event loop and makes Run return. Safe to call from any
// goroutine, more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		unix.Write(s.stopW, []byte{0})
	})
}

func (s *Server) cleanup() {
	for _, c := range s.conns {
		if c != nil {
			s.closeConn(c)
		}
	}
	unix.Close(s.listenFD)
	unix.Close(s.stopR)
	unix.Close(s.stopW)
}
