// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package client implements a client for the kvloop wire protocol. A Client
// owns one TCP connection. Get, Set and Del issue a single request and wait
// for its reply; Send, Flush and Recv expose the pipelining primitives those
// conveniences are built on, letting callers batch many requests into one
// write and collect the replies in order.
//
// A Client is not safe for concurrent use.
package client

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/aristanetworks/kvloop/wire"
)

const defaultDialTimeout = 10 * time.Second

// Option configures Dial.
type Option func(*options)

type options struct {
	timeout  time.Duration
	retryFor time.Duration
}

// WithDialTimeout bounds each connection attempt.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetry keeps dialing with exponential backoff until a connection is
// established or d has elapsed.
func WithRetry(d time.Duration) Option {
	return func(o *options) { o.retryFor = d }
}

// Client is a connection to a kvloop server.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	wbuf []byte // frames queued by Send, written by Flush
}

// Dial connects to the server at addr.
func Dial(addr string, opts ...Option) (*Client, error) {
	o := options{timeout: defaultDialTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	dial := func() (net.Conn, error) {
		return net.DialTimeout("tcp", addr, o.timeout)
	}
	var conn net.Conn
	var err error
	if o.retryFor == 0 {
		conn, err = dial()
	} else {
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = o.retryFor
		err = backoff.Retry(func() error {
			var derr error
			conn, derr = dial()
			return derr
		}, bo)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Reply is one decoded response frame.
type Reply struct {
	Status wire.Status
	Body   []byte
}

// ReplyError is an in-band error reported by the server with StatusErr.
type ReplyError struct {
	Msg string
}

func (e *ReplyError) Error() string {
	return "server: " + e.Msg
}

// Send encodes one request frame and queues it for the next Flush.
func (c *Client) Send(args ...[]byte) error {
	frame, err := wire.EncodeRequest(args)
	if err != nil {
		return err
	}
	c.wbuf = append(c.wbuf, frame...)
	return nil
}

// Flush writes all queued request frames in a single write.
func (c *Client) Flush() error {
	if len(c.wbuf) == 0 {
		return nil
	}
	_, err := c.conn.Write(c.wbuf)
	c.wbuf = c.wbuf[:0]
	return err
}

// Recv reads one response frame. Replies arrive in the order their requests
// were sent.
func (c *Client) Recv() (*Reply, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
		return nil, err
	}
	payload := binary.LittleEndian.Uint32(hdr[:])
	if payload > wire.MaxMsg {
		return nil, fmt.Errorf("%w: payload %d exceeds limit %d",
			wire.ErrMalformed, payload, wire.MaxMsg)
	}
	frame := make([]byte, 4+payload)
	copy(frame, hdr[:])
	if _, err := io.ReadFull(c.r, frame[4:]); err != nil {
		return nil, err
	}
	status, body, _, err := wire.DecodeResponse(frame)
	if err != nil {
		return nil, err
	}
	return &Reply{Status: status, Body: body}, nil
}

// Do sends a single request and waits for its reply.
func (c *Client) Do(args ...[]byte) (*Reply, error) {
	if err := c.Send(args...); err != nil {
		return nil, err
	}
	if err := c.Flush(); err != nil {
		return nil, err
	}
	return c.Recv()
}

// Get fetches the value for key. The second return is false when the key
// does not exist.
func (c *Client) Get(key string) ([]byte, bool, error) {
	reply, err := c.Do([]byte("get"), []byte(key))
	if err != nil {
		return nil, false, err
	}
	switch reply.Status {
	case wire.StatusOK:
		return reply.Body, true, nil
	case wire.StatusNX:
		return nil, false, nil
	}
	return nil, false, &ReplyError{Msg: string(reply.Body)}
}

// Set stores value under key.
func (c *Client) Set(key string, value []byte) error {
	reply, err := c.Do([]byte("set"), []byte(key), value)
	if err != nil {
		return err
	}
	if reply.Status != wire.StatusOK {
		return &ReplyError{Msg: string(reply.Body)}
	}
	return nil
}

// Del removes key. Deleting an absent key is not an error.
func (c *Client) Del(key string) error {
	reply, err := c.Do([]byte("del"), []byte(key))
	if err != nil {
		return err
	}
	if reply.Status != wire.StatusOK {
		return &ReplyError{Msg: string(reply.Body)}
	}
	return nil
}
