// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package dict

import (
	"fmt"
	"hash/maphash"
	"math/rand"
	"testing"

	"github.com/aristanetworks/gomap"
)

func strHash(s string) uint64 {
	h := uint64(14695981039346656037)
	for i := 0; i < len(s); i++ {
		h = (h ^ uint64(s[i])) * 1099511628211
	}
	return h
}

func strEqual(a, b string) bool { return a == b }

func newStrMap() *Map[string, int] {
	return New[string, int](strHash, strEqual)
}

func TestSetGetDelete(t *testing.T) {
	m := newStrMap()
	if _, ok := m.Get("missing"); ok {
		t.Fatal("Get on empty map reported a hit")
	}
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3) // replace
	if v, ok := m.Get("a"); !ok || v != 3 {
		t.Errorf(`Get("a") = %v, %t, want 3, true`, v, ok)
	}
	if v, ok := m.Get("b"); !ok || v != 2 {
		t.Errorf(`Get("b") = %v, %t, want 2, true`, v, ok)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
	if !m.Delete("a") {
		t.Error(`Delete("a") = false, want true`)
	}
	if m.Delete("a") {
		t.Error(`second Delete("a") = true, want false`)
	}
	if _, ok := m.Get("a"); ok {
		t.Error(`Get("a") after delete reported a hit`)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

// TestAgainstReference drives a random operation sequence against both Map
// and a reference mapping and requires identical observable results.
func TestAgainstReference(t *testing.T) {
	ref := gomap.New[string, int](
		strEqual,
		func(s maphash.Seed, k string) uint64 { return maphash.String(s, k) },
	)
	m := newStrMap()
	rng := rand.New(rand.NewSource(7))
	key := func() string { return fmt.Sprintf("key-%d", rng.Intn(500)) }
	for i := 0; i < 50000; i++ {
		switch rng.Intn(3) {
		case 0:
			k, v := key(), rng.Int()
			m.Set(k, v)
			ref.Set(k, v)
		case 1:
			k := key()
			got, gotOK := m.Get(k)
			want, wantOK := ref.Get(k)
			if gotOK != wantOK || got != want {
				t.Fatalf("op %d: Get(%q) = %v, %t, want %v, %t", i, k, got, gotOK, want, wantOK)
			}
		case 2:
			k := key()
			_, wantOK := ref.Get(k)
			if got := m.Delete(k); got != wantOK {
				t.Fatalf("op %d: Delete(%q) = %t, want %t", i, k, got, wantOK)
			}
			ref.Delete(k)
		}
		if m.Len() != ref.Len() {
			t.Fatalf("op %d: Len = %d, reference has %d", i, m.Len(), ref.Len())
		}
	}
}

// TestRehashTransparency crosses the growth threshold many times and checks
// that a key written is immediately and durably readable regardless of how
// far migration has progressed.
func TestRehashTransparency(t *testing.T) {
	m := newStrMap()
	const n = 100000
	for i := 0; i < n; i++ {
		k := fmt.Sprintf("key-%d", i)
		m.Set(k, i)
		if v, ok := m.Get(k); !ok || v != i {
			t.Fatalf("Get(%q) right after Set = %v, %t", k, v, ok)
		}
	}
	if m.Len() != n {
		t.Fatalf("Len = %d, want %d", m.Len(), n)
	}
	// Everything written must still be there after the last resize settles.
	for i := 0; i < n; i++ {
		k := fmt.Sprintf("key-%d", i)
		if v, ok := m.Get(k); !ok || v != i {
			t.Fatalf("Get(%q) = %v, %t, want %d, true", k, v, ok, i)
		}
	}
}

// TestMigrationBound verifies that once a resize is in flight, no single
// operation moves more than migrationWork entries out of the demoted table.
func TestMigrationBound(t *testing.T) {
	m := newStrMap()
	// Grow until a resize demotes a table holding more than one batch of
	// entries.
	i := 0
	for m.older.count <= migrationWork {
		m.Set(fmt.Sprintf("key-%d", i), i)
		i++
		if i > 1<<20 {
			t.Fatal("never entered a migration larger than one batch")
		}
	}
	for m.older.slots != nil {
		before := m.older.count
		m.Get("whatever")
		moved := before - m.older.count
		if moved > migrationWork {
			t.Fatalf("one operation moved %d entries, bound is %d", moved, migrationWork)
		}
		if moved == 0 && m.older.slots != nil {
			t.Fatal("operation during migration made no progress")
		}
	}
}

// TestGrowthDeferredDuringMigration checks that only one table is ever
// mid-rehash: while the demoted table still holds entries, the live table
// must not be demoted again.
func TestGrowthDeferredDuringMigration(t *testing.T) {
	m := newStrMap()
	for i := 0; i < 200000; i++ {
		// If a migration with more than one batch left is in flight, the
		// next operation cannot finish it, so the live table must keep its
		// slot count across that operation.
		inFlight := m.older.count > migrationWork
		mask := m.newer.mask
		m.Set(fmt.Sprintf("key-%d", i), i)
		if inFlight && m.newer.mask != mask {
			t.Fatal("live table resized while a migration was in flight")
		}
	}
}

func TestCollidingHashes(t *testing.T) {
	// All keys land in one chain; equality must disambiguate.
	m := New[string, int](func(string) uint64 { return 99 }, strEqual)
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}
	for i := 0; i < 100; i++ {
		k := fmt.Sprintf("key-%d", i)
		if v, ok := m.Get(k); !ok || v != i {
			t.Fatalf("Get(%q) = %v, %t, want %d, true", k, v, ok, i)
		}
	}
	if !m.Delete("key-50") {
		t.Fatal("Delete of present colliding key failed")
	}
	if _, ok := m.Get("key-50"); ok {
		t.Fatal("deleted key still present")
	}
	if v, ok := m.Get("key-51"); !ok || v != 51 {
		t.Fatalf("chain neighbor lost after delete: %v, %t", v, ok)
	}
}
