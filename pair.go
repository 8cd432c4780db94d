package dcht

// findKeyInBucketPair is the async find-key-in-bucket-pair primitive of
// SPEC_FULL.md §4.2: it returns which of the pair's two buckets holds
// key, and the slot, or ok=false if neither does. Unlike
// findValueInPairSync, it performs no acquire/retry dance — callers
// that need a value back out of a slot that may be concurrently
// mutated must use findValueInPairSync instead.
func findKeyInBucketPair(pair BucketPair, key uint32) (which, slot int, ok bool) {
	if s, found := backend.findKeyInBucket(pair.b0, key); found {
		return 0, s, true
	}
	if s, found := backend.findKeyInBucket(pair.b1, key); found {
		return 1, s, true
	}
	return -1, 0, false
}

// whichHasMore returns the index (0 or 1) of the bucket in pair with
// more matches for key, along with both counts. It returns ok=false if
// neither bucket has any match. Applied with key = sentinelKey, this is
// how Insert picks the bucket with more free slots.
func whichHasMore(pair BucketPair, key uint32) (which int, n0, n1 uint32, ok bool) {
	n0 = backend.countKeyInBucket(pair.b0, key)
	n1 = backend.countKeyInBucket(pair.b1, key)
	if n0 == 0 && n1 == 0 {
		return -1, n0, n1, false
	}
	if n0 >= n1 {
		return 0, n0, n1, true
	}
	return 1, n0, n1, true
}

// bucketAt returns the pair's bucket for index 0 or 1.
func (p BucketPair) bucketAt(which int) *Bucket {
	if which == 0 {
		return p.b0
	}
	return p.b1
}

// indexAt returns the pair's table-relative bucket index for index 0 or
// 1 (the same numbering as bucketAt).
func (p BucketPair) indexAt(which int) uint32 {
	if which == 0 {
		return p.i0
	}
	return p.i1
}
