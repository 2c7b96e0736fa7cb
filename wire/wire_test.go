// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package wire

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/aristanetworks/kvloop/buffer"
)

// frame builds a raw request frame out of explicit field values so tests can
// produce violations EncodeRequest refuses to.
func frame(payloadLen uint32, fields ...[]byte) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, payloadLen)
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

func u32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func TestRequestRoundTrip(t *testing.T) {
	for _, tcase := range []struct {
		name string
		args [][]byte
	}{
		{name: "get", args: [][]byte{[]byte("get"), []byte("mykey")}},
		{name: "set", args: [][]byte{[]byte("set"), []byte("mykey"), []byte("123")}},
		{name: "empty arg", args: [][]byte{[]byte("set"), []byte("k"), {}}},
		{name: "no args", args: [][]byte{}},
		{name: "max args", args: make([][]byte, MaxArgs)},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			for i, a := range tcase.args {
				if a == nil {
					tcase.args[i] = []byte{}
				}
			}
			raw, err := EncodeRequest(tcase.args)
			if err != nil {
				t.Fatalf("EncodeRequest: %v", err)
			}
			args, n, err := DecodeRequest(raw)
			if err != nil {
				t.Fatalf("DecodeRequest: %v", err)
			}
			if n != len(raw) {
				t.Errorf("consumed %d bytes of %d", n, len(raw))
			}
			if diff := pretty.Compare(args, tcase.args); diff != "" {
				t.Errorf("argv mismatch: (-got +want)\n%s", diff)
			}
		})
	}
}

func TestDecodeRequestIncomplete(t *testing.T) {
	raw, err := EncodeRequest([][]byte{[]byte("get"), []byte("mykey")})
	if err != nil {
		t.Fatal(err)
	}
	// Every proper prefix is Incomplete, and decoding it twice gives the
	// same answer.
	for i := 0; i < len(raw); i++ {
		for pass := 0; pass < 2; pass++ {
			if _, _, err := DecodeRequest(raw[:i]); !errors.Is(err, ErrIncomplete) {
				t.Fatalf("prefix %d pass %d: err = %v, want ErrIncomplete", i, pass, err)
			}
		}
	}
}

func TestDecodeRequestMalformed(t *testing.T) {
	for _, tcase := range []struct {
		name string
		raw  []byte
	}{
		{
			name: "oversize payload",
			raw:  frame(MaxMsg+1, u32(2)),
		},
		{
			name: "payload too short for argc",
			raw:  frame(2, []byte{1, 2}),
		},
		{
			name: "argc over limit",
			raw:  frame(4, u32(MaxArgs+1)),
		},
		{
			name: "truncated argument length",
			raw:  frame(6, u32(1), []byte{9, 9}),
		},
		{
			name: "argument overruns frame",
			raw:  frame(12, u32(1), u32(100), []byte("shrt")),
		},
		{
			name: "trailing bytes after argv",
			raw:  frame(10, u32(1), u32(1), []byte("x"), []byte{0}),
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			_, _, err := DecodeRequest(tcase.raw)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

// TestDecodeRequestTotal feeds random byte prefixes to the decoder: whatever
// the input, it must classify it without panicking or reading past the frame
// end.
func TestDecodeRequestTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		raw := make([]byte, rng.Intn(64))
		rng.Read(raw)
		// Keep the claimed payload length mostly small so the parser is
		// exercised beyond the length check.
		if len(raw) >= 4 && rng.Intn(4) > 0 {
			binary.LittleEndian.PutUint32(raw, uint32(rng.Intn(40)))
		}
		args, n, err := DecodeRequest(raw)
		switch {
		case err == nil:
			if n > len(raw) {
				t.Fatalf("consumed %d of %d input bytes", n, len(raw))
			}
			for _, a := range args {
				_ = a
			}
		case errors.Is(err, ErrIncomplete), errors.Is(err, ErrMalformed):
		default:
			t.Fatalf("unclassified decode error: %v", err)
		}
	}
}

func TestEncodeRequestLimits(t *testing.T) {
	if _, err := EncodeRequest(make([][]byte, MaxArgs+1)); err == nil {
		t.Error("EncodeRequest accepted too many arguments")
	}
	big := make([]byte, MaxMsg)
	if _, err := EncodeRequest([][]byte{big}); err == nil {
		t.Error("EncodeRequest accepted an oversize payload")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	for _, tcase := range []struct {
		name   string
		status Status
		body   []byte
	}{
		{name: "ok with body", status: StatusOK, body: []byte("123")},
		{name: "ok empty", status: StatusOK, body: nil},
		{name: "nx", status: StatusNX, body: nil},
		{name: "err", status: StatusErr, body: []byte("Unknown command")},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			out := buffer.New(64)
			AppendResponse(out, tcase.status, tcase.body)
			wantLen := 4 + 4 + len(tcase.body)
			if out.Len() != wantLen {
				t.Fatalf("frame is %d bytes, want %d", out.Len(), wantLen)
			}
			status, body, n, err := DecodeResponse(out.Readable())
			if err != nil {
				t.Fatalf("DecodeResponse: %v", err)
			}
			if n != wantLen {
				t.Errorf("consumed %d bytes, want %d", n, wantLen)
			}
			if status != tcase.status {
				t.Errorf("status = %v, want %v", status, tcase.status)
			}
			if string(body) != string(tcase.body) {
				t.Errorf("body = %q, want %q", body, tcase.body)
			}
		})
	}
}

func TestDecodeResponseIncomplete(t *testing.T) {
	out := buffer.New(64)
	AppendResponse(out, StatusOK, []byte("123"))
	raw := out.Readable()
	for i := 0; i < len(raw); i++ {
		if _, _, _, err := DecodeResponse(raw[:i]); !errors.Is(err, ErrIncomplete) {
			t.Fatalf("prefix %d: err = %v, want ErrIncomplete", i, err)
		}
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{
		StatusOK:  "OK",
		StatusErr: "ERR",
		StatusNX:  "NX",
		Status(9): "Status(9)",
	} {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", uint32(s), got, want)
		}
	}
}
