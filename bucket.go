// Copyright (c) 2014-2015 Utkan Güngördü <utkan@freeconsole.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package dcht

import "sync/atomic"

// valueRecheckRetries bounds the reader's key-recheck loop in
// findValueInPairSync. Exhausting it means the writer mutated the same
// slot pathologically often during the read; the lookup reports
// NotFound, treating the key as "in flight".
const valueRecheckRetries = 4

// Bucket is a cache-line-sized, fixed-capacity group of slots. Keys and
// values live in separate parallel arrays so a key scan never touches
// the value words. A Bucket must only ever be reached through a Table's
// buckets slice, which guarantees the cache-line alignment this layout
// is built around (see alloc.go).
//
// Memory-ordering protocol (the only correctness contract in this
// package — there is no locking):
//
//   - Writer publishing (key, value): store value first with relaxed
//     ordering, then store key with release ordering. A reader that
//     observes the new key is therefore guaranteed to observe the new
//     value.
//   - Writer deleting: store sentinelKey over the key with release
//     ordering. The value word is left untouched.
//   - Reader: load key with acquire ordering; if it matches, load value
//     with relaxed ordering, then reload key with acquire ordering. If
//     the reloaded key no longer matches, retry (bounded).
//
// This lets a cuckoo move briefly make a key visible in two buckets at
// once without readers ever observing a torn (key, value) pair.
type Bucket struct {
	keys [bucketSlots]atomic.Uint32
	vals [bucketSlots]atomic.Uint32
}

func (b *Bucket) loadKey(slot int) uint32 {
	return b.keys[slot].Load()
}

func (b *Bucket) loadValRelaxed(slot int) uint32 {
	return b.vals[slot].Load()
}

// storeKeyValue publishes (key, value) into slot for the writer. value
// is stored before key, and key's store carries release semantics, so
// any reader that subsequently observes key also observes value.
func (b *Bucket) storeKeyValue(slot int, key, value uint32) {
	b.vals[slot].Store(value)
	b.keys[slot].Store(key)
}

// deleteKey clears slot's key back to the sentinel. The value word is
// left as-is; it becomes garbage that the next storeKeyValue overwrites.
func (b *Bucket) deleteKey(slot int) {
	b.keys[slot].Store(sentinelKey)
}

// initBucket clears every slot to the sentinel. Unlike the C source,
// which needs an explicit __sync_synchronize() here because its loads
// and stores are otherwise plain (non-atomic) memory accesses, Go's
// sync/atomic already gives every Store on these words release-or-
// stronger ordering, so the stores below are themselves sufficient for
// a subsequent reader's acquire-load to observe the cleared state; no
// separate fence call exists to make in Go. Called only before any
// reader can reach the bucket (table construction and Clean).
func (b *Bucket) initBucket() {
	for i := 0; i < bucketSlots; i++ {
		b.keys[i].Store(sentinelKey)
		b.vals[i].Store(0)
	}
}

// UsedCount returns the number of occupied slots in the bucket. This is
// a debug/verification helper (bucket_used_count in SPEC_FULL.md §6),
// not a hot-path operation, so it always uses the straightforward scan
// regardless of which arch back end is active.
func (b *Bucket) UsedCount() uint32 {
	var n uint32
	for i := 0; i < bucketSlots; i++ {
		if b.loadKey(i) != sentinelKey {
			n++
		}
	}
	return n
}

// findValueInPairSync is the reader-facing, synchronized lookup across a
// bucket pair (the "sync" row of SPEC_FULL.md §4.2's primitive table).
// It returns the bucket index (0 or 1) the key was found in, or -1.
func findValueInPairSync(pair BucketPair, key uint32) (which int, value uint32, found bool) {
	buckets := [2]*Bucket{pair.b0, pair.b1}
	// b0 is scanned a second time after b1: a cuckoo move from b1 to b0
	// stores into b0 before clearing b1, so a reader that missed the key
	// in b0 and then found it already cleared from b1 sees it in b0 now.
	for _, which := range [3]int{0, 1, 0} {
		bk := buckets[which]
		for retry := 0; retry < valueRecheckRetries; retry++ {
			slot, ok := backend.findKeyInBucket(bk, key)
			if !ok {
				break
			}
			v := bk.loadValRelaxed(slot)
			if bk.loadKey(slot) == key {
				return which, v, true
			}
			// key changed under us between the scan and the value
			// load; retry the scan for this bucket.
		}
	}
	return -1, 0, false
}
