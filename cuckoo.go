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

// relocatingSlot records, for one occupied slot of the bucket currently
// being evicted from, the key it holds and the alternate bucket that
// key could move to.
type relocatingSlot struct {
	slot int
	key  uint32
	alt  uint32
}

// relocate tries to make a vacancy in bk (at table-relative index
// bkIndex) by displacing one of its occupants to that occupant's
// alternate bucket, recursively up to depth. It implements
// SPEC_FULL.md §4.3 exactly: slots are scanned ascending (slot 0
// first), and the direct pass (can bk's occupant move one hop?) is
// always tried, in full, before any recursive pass (can it move two
// hops?) is attempted — so a one-hop relocation always wins over a
// two-hop one, never the reverse.
//
// A move is: store (key, value) into the destination slot, then clear
// the source slot's key. Between those two stores the key is visible in
// both buckets; that overlap is intentional (SPEC_FULL.md §4.3/§5) and
// is what keeps concurrent readers' lookups live during relocation.
func (t *Table) relocate(bk *Bucket, bkIndex uint32, depth int) (freedSlot int, ok bool) {
	var occupied []relocatingSlot
	for i := 0; i < bucketSlots; i++ {
		key := bk.loadKey(i)
		if key == sentinelKey {
			continue
		}
		occupied = append(occupied, relocatingSlot{
			slot: i,
			key:  key,
			alt:  alternateBucket(key, t.mask, bkIndex),
		})
	}

	// direct pass: does any occupant's alternate bucket already have a
	// vacancy?
	for _, o := range occupied {
		altBk := &t.buckets[o.alt]
		if dst, vacant := backend.findVacancy(altBk); vacant {
			t.moveSlot(bk, o.slot, altBk, dst, o.key)
			t.notify(EventMovedEntry, int(o.alt), dst)
			return o.slot, true
		}
	}

	if depth <= 0 {
		return 0, false
	}

	// recursive pass: can we free a slot in some occupant's alternate
	// bucket by relocating one level further?
	for _, o := range occupied {
		altBk := &t.buckets[o.alt]
		if dst, freed := t.relocate(altBk, o.alt, depth-1); freed {
			t.moveSlot(bk, o.slot, altBk, dst, o.key)
			t.notify(EventMovedEntry, int(o.alt), dst)
			return o.slot, true
		}
	}

	return 0, false
}

// moveSlot relocates the occupant at src[srcSlot] (whose key is already
// known to be key) to dst[dstSlot], then clears the source.
func (t *Table) moveSlot(src *Bucket, srcSlot int, dst *Bucket, dstSlot int, key uint32) {
	value := src.loadValRelaxed(srcSlot)
	dst.storeKeyValue(dstSlot, key, value)
	src.deleteKey(srcSlot)
}
