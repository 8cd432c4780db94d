// Copyright (c) 2014 Utkan Güngördü <utkan@freeconsole.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package dcht

// Table is a fixed-capacity cuckoo hash table. Exactly one goroutine may
// call its writer methods (Insert, InsertInBuckets, Delete,
// DeleteInBuckets, Clean, Walk) at a time; any number of goroutines may
// call Lookup/LookupInBuckets/Prefetch concurrently with that writer.
// Enforcing single-writer discipline is the caller's responsibility —
// Table has no internal lock.
type Table struct {
	buckets []Bucket
	mask    uint32

	maxEntries  uint32
	followDepth int
	onEvent     EventFunc

	// currentEntries is writer-private (SPEC_FULL.md §5): only the
	// writer goroutine reads or writes it. Readers must not rely on
	// it, so it is a plain field rather than an atomic one.
	currentEntries uint32
}

// NewTable allocates a cache-line-aligned buffer sized for maxEntries
// and initializes a Table over it. maxEntries below minEntries is
// clamped up.
func NewTable(maxEntries uint32, opts ...Option) (*Table, error) {
	buf := make([]byte, TableSizeBytes(maxEntries))
	return InitTable(buf, maxEntries, opts...)
}

// InitTable initializes a Table over a caller-supplied buffer, which
// must be at least TableSizeBytes(maxEntries) bytes (InitTable aligns
// within it; the buffer itself need not already be aligned). This is
// the lower-level create/init split SPEC_FULL.md §4.4 keeps available
// alongside NewTable's single-call convenience constructor.
func InitTable(buf []byte, maxEntries uint32, opts ...Option) (*Table, error) {
	need := TableSizeBytes(maxEntries)
	if uintptr(len(buf)) < need {
		return nil, ErrTooSmall
	}

	n := bucketCountFor(maxEntries)
	buckets := alignedBucketSlice(buf, n)
	for i := range buckets {
		buckets[i].initBucket()
	}

	o := defaultTableOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Table{
		buckets:     buckets,
		mask:        n - 1,
		maxEntries:  maxEntries,
		followDepth: o.followDepth,
		onEvent:     o.eventFunc,
	}, nil
}

// Len returns the table's current entry count. Like currentEntries, it
// is only meaningful when called by (or synchronized with) the writer.
func (t *Table) Len() uint32 {
	return t.currentEntries
}

// Clean resets every bucket to empty and zeroes the entry count.
// Writer-only.
func (t *Table) Clean() {
	for i := range t.buckets {
		t.buckets[i].initBucket()
	}
	t.currentEntries = 0
}

// Prefetch resolves key's candidate bucket pair. It issues no actual
// prefetch instruction (Go exposes none portably); it exists so
// pipelined callers can resolve the pair once and reuse it across
// Lookup/Insert/Delete's *InBuckets variants, matching the prefetch-
// then-operate split of SPEC_FULL.md §4.4.
func (t *Table) Prefetch(key uint32) BucketPair {
	i0, i1 := bucketIndices(key, t.mask)
	return BucketPair{
		b0: &t.buckets[i0],
		b1: &t.buckets[i1],
		i0: i0,
		i1: i1,
	}
}

// Lookup returns key's value and true if present, or (0, false).
func (t *Table) Lookup(key uint32) (uint32, bool) {
	return LookupInBuckets(t.Prefetch(key), key)
}

// LookupInBuckets is Lookup against an already-resolved pair (for
// pipelined callers that prefetched earlier).
func LookupInBuckets(pair BucketPair, key uint32) (uint32, bool) {
	_, value, ok := findValueInPairSync(pair, key)
	return value, ok
}

// Insert adds or updates key -> value. If skipUpdate is false and key
// is already present, its value is overwritten in place (the key word
// is untouched, so readers never observe a gap). Otherwise, if key is
// absent, it is placed directly in whichever candidate bucket has more
// free slots, or, if both are full, by cuckoo relocation. Writer-only.
//
// Returns ErrInvalidKey if key is the sentinel, or ErrNoSpace if both
// candidate buckets are full and relocation could not free a slot
// within the table's follow depth.
func (t *Table) Insert(key, value uint32, skipUpdate bool) error {
	return t.InsertInBuckets(t.Prefetch(key), key, value, skipUpdate)
}

// InsertInBuckets is Insert against an already-resolved pair.
func (t *Table) InsertInBuckets(pair BucketPair, key, value uint32, skipUpdate bool) error {
	if key == sentinelKey {
		return ErrInvalidKey
	}

	if !skipUpdate {
		if which, slot, ok := findKeyInBucketPair(pair, key); ok {
			bk := pair.bucketAt(which)
			bk.vals[slot].Store(value)
			t.notify(EventUpdateValue, int(pair.indexAt(which)), slot)
			return nil
		}
	}

	if which, _, _, ok := whichHasMore(pair, sentinelKey); ok {
		bk := pair.bucketAt(which)
		slot, _ := backend.findVacancy(bk)
		bk.storeKeyValue(slot, key, value)
		t.currentEntries++
		return nil
	}

	t.notify(EventBucketFull, int(pair.i0), -1)

	for _, which := range [2]int{0, 1} {
		bk := pair.bucketAt(which)
		if slot, ok := t.relocate(bk, pair.indexAt(which), t.followDepth); ok {
			bk.storeKeyValue(slot, key, value)
			t.currentEntries++
			t.notify(EventCuckooReplaced, int(pair.indexAt(which)), slot)
			return nil
		}
	}

	return ErrNoSpace
}

// Delete removes key if present. Writer-only. Returns false (and leaves
// the table unchanged) if key was not found.
func (t *Table) Delete(key uint32) bool {
	return t.DeleteInBuckets(t.Prefetch(key), key)
}

// DeleteInBuckets is Delete against an already-resolved pair.
func (t *Table) DeleteInBuckets(pair BucketPair, key uint32) bool {
	which, slot, ok := findKeyInBucketPair(pair, key)
	if !ok {
		return false
	}
	pair.bucketAt(which).deleteKey(slot)
	t.currentEntries--
	return true
}

// Walk visits every occupied slot in bucket-index then slot-index order,
// calling visit(key, value) for each. Walk stops early if visit returns
// false. Writer-only: it makes a single-threaded, non-atomic pass over
// the buckets and gives no guarantee about interleaving with concurrent
// writer activity (there is none, by contract) or readers (who only
// ever see well-formed slots regardless).
func (t *Table) Walk(visit func(key, value uint32) bool) {
	for i := range t.buckets {
		bk := &t.buckets[i]
		for slot := 0; slot < bucketSlots; slot++ {
			key := bk.loadKey(slot)
			if key == sentinelKey {
				continue
			}
			value := bk.loadValRelaxed(slot)
			if !visit(key, value) {
				return
			}
		}
	}
}

// Verify walks the whole table and confirms every invariant in
// SPEC_FULL.md §3/§8: each occupied slot's key hashes back to the
// bucket it is stored in (and is not duplicated in the other candidate
// bucket), no key appears in more than one slot table-wide, and the
// total occupied-slot count matches currentEntries. It is a test/debug
// helper, not something production callers should run on a hot path.
func (t *Table) Verify() error {
	seen := make(map[uint32]bool)
	var count uint32

	for i := range t.buckets {
		bk := &t.buckets[i]
		for slot := 0; slot < bucketSlots; slot++ {
			key := bk.loadKey(slot)
			if key == sentinelKey {
				continue
			}
			count++

			if seen[key] {
				return ErrCorrupt
			}
			seen[key] = true

			i0, i1 := bucketIndices(key, t.mask)
			cur := uint32(i)
			if cur != i0 && cur != i1 {
				return ErrCorrupt
			}

			other := i1
			if cur == i1 {
				other = i0
			}
			if _, ok := backend.findKeyInBucket(&t.buckets[other], key); ok {
				return ErrCorrupt
			}
		}
	}

	if count != t.currentEntries {
		return ErrCorrupt
	}
	return nil
}
