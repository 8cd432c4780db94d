package dcht

import "math/bits"

// wideBackend evaluates all bucketSlots keys of a bucket unconditionally
// into an 8-bit match mask, then reduces the mask with
// bits.TrailingZeros8 / bits.OnesCount8 — the same
// compare-then-movemask-then-tzcnt shape as the AVX2 back end in the
// original C source (find_key_in_bucket_AVX2 et al.), built from
// branchless loads instead of a vector compare instruction. Building
// the full mask before branching gives the Go compiler more room to
// unroll/pipeline the loads than the scalar back end's early-exit loop,
// which is the only difference between the two: behavior is identical.
type wideBackend struct{}

func matchMask(b *Bucket, key uint32) uint8 {
	var mask uint8
	for i := 0; i < bucketSlots; i++ {
		if b.loadKey(i) == key {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

func (wideBackend) findKeyInBucket(b *Bucket, key uint32) (int, bool) {
	mask := matchMask(b, key)
	if mask == 0 {
		return 0, false
	}
	return bits.TrailingZeros8(mask), true
}

func (wideBackend) findVacancy(b *Bucket) (int, bool) {
	mask := matchMask(b, sentinelKey)
	if mask == 0 {
		return 0, false
	}
	return bits.TrailingZeros8(mask), true
}

func (wideBackend) countKeyInBucket(b *Bucket, key uint32) uint32 {
	return uint32(bits.OnesCount8(matchMask(b, key)))
}
