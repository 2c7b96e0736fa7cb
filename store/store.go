// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package store implements the string-key to string-value dictionary served
// over the wire protocol. Keys and values are opaque byte strings; the store
// owns copies of both and returns values by Go string, so callers never hold
// references into live entries.
package store

import "github.com/aristanetworks/kvloop/dict"

// Hash is the key hash: a 32-bit FNV-1a-style construction widened to
// 64 bits. It must match across every table an entry may migrate through,
// which is why it is fixed here rather than supplied per call.
func Hash(key string) uint64 {
	h := uint32(0x811C9DC5)
	for i := 0; i < len(key); i++ {
		h = (h + uint32(key[i])) * 0x01000193
	}
	return uint64(h)
}

// Store is an in-memory KV dictionary. Not safe for concurrent use; the
// server confines each Store to its event-loop goroutine.
type Store struct {
	m *dict.Map[string, string]
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		m: dict.New[string, string](Hash, func(a, b string) bool { return a == b }),
	}
}

// Set inserts or replaces the value for key.
func (s *Store) Set(key, value string) {
	s.m.Set(key, value)
}

// Get returns the value for key.
func (s *Store) Get(key string) (string, bool) {
	return s.m.Get(key)
}

// Delete removes key, reporting whether it was present.
func (s *Store) Delete(key string) bool {
	return s.m.Delete(key)
}

// Len returns the number of keys.
func (s *Store) Len() int {
	return s.m.Len()
}
