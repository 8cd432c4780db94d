package dcht

import "testing"

// fillBucket occupies every slot of bk with synthetic keys that all hash
// back to table-relative index bkIndex as one of their two candidates
// (achieved here simply by writing the keys directly, bypassing Insert,
// since relocate doesn't care how a slot got occupied).
func fillBucket(t *testing.T, tbl *Table, bkIndex uint32, startKey uint32) []uint32 {
	t.Helper()
	bk := &tbl.buckets[bkIndex]
	keys := make([]uint32, 0, bucketSlots)
	key := startKey
	for i := 0; i < bucketSlots; i++ {
		for {
			i0, i1 := bucketIndices(key, tbl.mask)
			if i0 == bkIndex || i1 == bkIndex {
				break
			}
			key++
		}
		bk.storeKeyValue(i, key, key*1000)
		keys = append(keys, key)
		key++
	}
	return keys
}

func TestRelocateFreesASlotWhenAlternateHasVacancy(t *testing.T) {
	tbl, err := NewTable(512)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	var target uint32 = 1
	for target == 0 {
		target = 5
	}
	fillBucket(t, tbl, target, 1000)
	tbl.currentEntries = bucketSlots

	slot, ok := tbl.relocate(&tbl.buckets[target], target, tbl.followDepth)
	if !ok {
		t.Fatal("relocate: expected a freed slot, got none")
	}
	if tbl.buckets[target].loadKey(slot) != sentinelKey {
		t.Fatalf("relocate reported slot %d freed, but it still holds a key", slot)
	}
	if err := tbl.Verify(); err != nil {
		t.Fatalf("Verify after relocate: %v", err)
	}
}

// TestCuckooObservableDuringRelocation exercises the scenario SPEC_FULL.md
// §8 calls out explicitly: fill both of a key's candidate buckets so an
// Insert is forced through relocate, then confirm the table is left in a
// consistent, fully-findable state afterward (the intentional transient
// double-visibility during the move is not observable once Insert
// returns).
func TestCuckooObservableDuringRelocation(t *testing.T) {
	tbl, err := NewTable(512, WithFollowDepth(4))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	const probe = 777777
	pair := tbl.Prefetch(probe)
	fillBucket(t, tbl, pair.i0, 2000)
	fillBucket(t, tbl, pair.i1, 3000)
	tbl.currentEntries = 2 * bucketSlots

	if err := tbl.Insert(probe, 999, false); err != nil {
		t.Fatalf("Insert into two full buckets: %v", err)
	}

	v, ok := tbl.Lookup(probe)
	if !ok || v != 999 {
		t.Fatalf("Lookup(probe) after forced relocation: got (%d, %v)", v, ok)
	}
	if err := tbl.Verify(); err != nil {
		t.Fatalf("Verify after forced relocation: %v", err)
	}
}

func TestInsertAtZeroDepthNeitherLoopsNorPanics(t *testing.T) {
	tbl, err := NewTable(512, WithFollowDepth(0))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	const probe = 888888
	pair := tbl.Prefetch(probe)
	fillBucket(t, tbl, pair.i0, 4000)
	fillBucket(t, tbl, pair.i1, 5000)

	// With depth 0 only the direct pass runs; if none of the occupants of
	// either full bucket has a vacant alternate, Insert must report
	// ErrNoSpace rather than loop or panic.
	err = tbl.Insert(probe, 1, false)
	if err != nil && err != ErrNoSpace {
		t.Fatalf("Insert with depth 0: unexpected error %v", err)
	}
}
