// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package wire implements the length-prefixed binary protocol spoken between
// client and server. All multi-byte integers are little-endian 32-bit
// unsigned.
//
// A request frame carries an argv-style command:
//
//	[payload_len:u32][argc:u32] argc × ([arg_len:u32][arg_bytes])
//
// A response frame carries a status and an optional body:
//
//	[payload_len:u32][status:u32][body_bytes]
//
// payload_len counts everything after itself.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aristanetworks/kvloop/buffer"
)

const (
	// MaxMsg is the maximum frame payload in bytes.
	MaxMsg = 4096
	// MaxArgs is the maximum number of arguments in a request.
	MaxArgs = 16
	// headerLen is the size of the payload length prefix.
	headerLen = 4
)

// Status is a response status code.
type Status uint32

const (
	// StatusOK means the operation succeeded; the body holds the result.
	StatusOK Status = 0
	// StatusErr means the command was rejected; the body holds an ASCII
	// message.
	StatusErr Status = 1
	// StatusNX means the requested key does not exist.
	StatusNX Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusErr:
		return "ERR"
	case StatusNX:
		return "NX"
	}
	return fmt.Sprintf("Status(%d)", uint32(s))
}

// ErrIncomplete reports that the input does not yet hold a whole frame. The
// decoder returns the same result for the same input, so callers simply wait
// for more bytes.
var ErrIncomplete = errors.New("wire: incomplete frame")

// ErrMalformed reports a protocol violation. Frame boundaries cannot be
// recovered after one, so connections are closed on it. Use errors.Is to
// test; the wrapped message names the violated constraint.
var ErrMalformed = errors.New("wire: malformed frame")

// DecodeRequest parses one request frame from the front of p. On success it
// returns the argument vector and the total number of frame bytes to
// consume. The argument slices alias p.
func DecodeRequest(p []byte) (args [][]byte, n int, err error) {
	if len(p) < headerLen {
		return nil, 0, ErrIncomplete
	}
	payload := binary.LittleEndian.Uint32(p)
	if payload > MaxMsg {
		return nil, 0, fmt.Errorf("%w: payload %d exceeds limit %d", ErrMalformed, payload, MaxMsg)
	}
	if uint32(len(p)-headerLen) < payload {
		return nil, 0, ErrIncomplete
	}
	body := p[headerLen : headerLen+int(payload)]
	if len(body) < 4 {
		return nil, 0, fmt.Errorf("%w: payload too short for argc", ErrMalformed)
	}
	argc := binary.LittleEndian.Uint32(body)
	if argc > MaxArgs {
		return nil, 0, fmt.Errorf("%w: argc %d exceeds limit %d", ErrMalformed, argc, MaxArgs)
	}
	cur := body[4:]
	args = make([][]byte, 0, argc)
	for i := uint32(0); i < argc; i++ {
		if len(cur) < 4 {
			return nil, 0, fmt.Errorf("%w: truncated argument length", ErrMalformed)
		}
		alen := binary.LittleEndian.Uint32(cur)
		if uint32(len(cur)-4) < alen {
			return nil, 0, fmt.Errorf("%w: argument overruns frame", ErrMalformed)
		}
		args = append(args, cur[4:4+alen])
		cur = cur[4+alen:]
	}
	if len(cur) != 0 {
		return nil, 0, fmt.Errorf("%w: %d trailing bytes after argv", ErrMalformed, len(cur))
	}
	return args, headerLen + int(payload), nil
}

// EncodeRequest returns a request frame for args.
func EncodeRequest(args [][]byte) ([]byte, error) {
	if len(args) > MaxArgs {
		return nil, fmt.Errorf("wire: %d arguments exceed limit %d", len(args), MaxArgs)
	}
	payload := 4
	for _, a := range args {
		payload += 4 + len(a)
	}
	if payload > MaxMsg {
		return nil, fmt.Errorf("wire: request payload %d exceeds limit %d", payload, MaxMsg)
	}
	out := make([]byte, headerLen+payload)
	binary.LittleEndian.PutUint32(out, uint32(payload))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(args)))
	cur := out[8:]
	for _, a := range args {
		binary.LittleEndian.PutUint32(cur, uint32(len(a)))
		copy(cur[4:], a)
		cur = cur[4+len(a):]
	}
	return out, nil
}

// AppendResponse appends a response frame for status and body to out. The
// server calls this from command dispatch, so replies land in the connection
// write buffer in request order.
func AppendResponse(out *buffer.Buffer, status Status, body []byte) {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(4+len(body)))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(status))
	out.Reserve(len(hdr) + len(body))
	out.Append(hdr[:])
	out.Append(body)
}

// DecodeResponse parses one response frame from the front of p, returning the
// status, the body (aliasing p) and the total frame bytes consumed.
func DecodeResponse(p []byte) (status Status, body []byte, n int, err error) {
	if len(p) < headerLen {
		return 0, nil, 0, ErrIncomplete
	}
	payload := binary.LittleEndian.Uint32(p)
	if payload > MaxMsg {
		return 0, nil, 0, fmt.Errorf("%w: payload %d exceeds limit %d", ErrMalformed, payload, MaxMsg)
	}
	if uint32(len(p)-headerLen) < payload {
		return 0, nil, 0, ErrIncomplete
	}
	if payload < 4 {
		return 0, nil, 0, fmt.Errorf("%w: payload too short for status", ErrMalformed)
	}
	status = Status(binary.LittleEndian.Uint32(p[headerLen:]))
	body = p[headerLen+4 : headerLen+int(payload)]
	return status, body, headerLen + int(payload), nil
}
