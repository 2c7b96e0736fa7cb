// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package dict implements a chained hash map that grows by progressive
// rehashing: when the load factor is exceeded the live table is demoted and a
// table of twice the slot count installed in its place, and every subsequent
// operation migrates a bounded batch of entries from the old table to the new
// one. Growth therefore never causes a stop-the-world pause; each operation
// stays amortised O(1).
//
// The map is parameterised over key and value types. Hashing and equality are
// supplied by the caller, and each entry stores its hash code so lookups and
// migration skip keys whose hashes differ without calling equal.
package dict

const (
	// migrationWork bounds how many entries a single operation may move from
	// the demoted table.
	migrationWork = 128
	// maxLoadFactor is the count-per-slot threshold that triggers growth.
	maxLoadFactor = 8
	// initialSlots is the slot count of the first allocated table.
	initialSlots = 4
)

type entry[K, V any] struct {
	hash  uint64
	key   K
	value V
	next  *entry[K, V]
}

// table is one power-of-two-sized array of chain heads.
type table[K, V any] struct {
	slots []*entry[K, V]
	mask  uint64
	count int
}

func newTable[K, V any](n int) table[K, V] {
	return table[K, V]{slots: make([]*entry[K, V], n), mask: uint64(n - 1)}
}

func (t *table[K, V]) insert(e *entry[K, V]) {
	i := e.hash & t.mask
	e.next = t.slots[i]
	t.slots[i] = e
	t.count++
}

// lookup returns the address of the owning link of the matching entry (a slot
// head or a predecessor's next field), or nil. Rewriting that link detaches
// the entry in O(1).
func (t *table[K, V]) lookup(hash uint64, key K, equal func(K, K) bool) **entry[K, V] {
	if t.slots == nil {
		return nil
	}
	link := &t.slots[hash&t.mask]
	for *link != nil {
		if e := *link; e.hash == hash && equal(e.key, key) {
			return link
		}
		link = &(*link).next
	}
	return nil
}

func (t *table[K, V]) detach(link **entry[K, V]) *entry[K, V] {
	e := *link
	*link = e.next
	e.next = nil
	t.count--
	return e
}

// Map is a hash map with progressive rehashing. The zero value is not usable;
// call New. Map is not safe for concurrent use.
type Map[K, V any] struct {
	newer   table[K, V]
	older   table[K, V]
	migrate uint64 // next older slot to migrate from
	hash    func(K) uint64
	equal   func(K, K) bool
}

// New returns an empty Map using hash and equal for key identity.
func New[K, V any](hash func(K) uint64, equal func(K, K) bool) *Map[K, V] {
	return &Map[K, V]{hash: hash, equal: equal}
}

// Len returns the number of entries across both tables.
func (m *Map[K, V]) Len() int {
	return m.newer.count + m.older.count
}

// helpMigration moves at most migrationWork entries from the demoted table
// into the live one, then frees the demoted table once it empties.
func (m *Map[K, V]) helpMigration() {
	moved := 0
	for moved < migrationWork && m.older.count > 0 {
		link := &m.older.slots[m.migrate]
		if *link == nil {
			m.migrate++
			continue
		}
		m.newer.insert(m.older.detach(link))
		moved++
	}
	if m.older.count == 0 && m.older.slots != nil {
		m.older = table[K, V]{}
	}
}

// grow demotes the live table and installs one with twice the slots.
func (m *Map[K, V]) grow() {
	m.older = m.newer
	m.newer = newTable[K, V](int(m.older.mask+1) * 2)
	m.migrate = 0
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.helpMigration()
	hash := m.hash(key)
	link := m.newer.lookup(hash, key, m.equal)
	if link == nil {
		link = m.older.lookup(hash, key, m.equal)
	}
	if link == nil {
		var zero V
		return zero, false
	}
	return (*link).value, true
}

// Set associates key with value, replacing any previous value.
func (m *Map[K, V]) Set(key K, value V) {
	m.helpMigration()
	if m.newer.slots == nil {
		m.newer = newTable[K, V](initialSlots)
	}
	hash := m.hash(key)
	if link := m.newer.lookup(hash, key, m.equal); link != nil {
		(*link).value = value
		return
	}
	if link := m.older.lookup(hash, key, m.equal); link != nil {
		(*link).value = value
		return
	}
	// Growth is only considered while no migration is in flight, so at most
	// one table is mid-rehash at any time.
	if m.older.slots == nil && m.newer.count > int(m.newer.mask+1)*maxLoadFactor {
		m.grow()
	}
	m.newer.insert(&entry[K, V]{hash: hash, key: key, value: value})
}

// Delete removes key and reports whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	m.helpMigration()
	hash := m.hash(key)
	if link := m.newer.lookup(hash, key, m.equal); link != nil {
		m.newer.detach(link)
		return true
	}
	if link := m.older.lookup(hash, key, m.equal); link != nil {
		m.older.detach(link)
		return true
	}
	return false
}
