package dcht

import "golang.org/x/sys/cpu"

// bucketBackend is the architecture-dispatch seam of SPEC_FULL.md §4.6:
// a scalar, always-available implementation and a "wide" implementation
// that evaluates a bucket's 8 slots as a single branchless mask-then-
// reduce pass instead of an early-exit loop, mirroring the AVX2
// compare/movemask/tzcnt shape of the original C source without
// depending on cgo or hand-written assembly. Both back ends are
// behaviorally identical; only throughput differs (SPEC_FULL.md §2,
// component 6).
type bucketBackend interface {
	// findKeyInBucket returns the lowest slot index whose key equals
	// key, or ok=false if none match.
	findKeyInBucket(b *Bucket, key uint32) (slot int, ok bool)

	// findVacancy returns the lowest slot index whose key is the
	// sentinel, or ok=false if the bucket is full.
	findVacancy(b *Bucket) (slot int, ok bool)

	// countKeyInBucket returns how many slots hold key (normally 0 or
	// 1; used against the sentinel to count empty slots).
	countKeyInBucket(b *Bucket, key uint32) uint32
}

// backend is selected once, at package init, and never changes for the
// lifetime of the process — matching the one-time CPU-capability probe
// SPEC_FULL.md §9 describes. It is safe for concurrent use by any
// number of readers and the single writer: both implementations are
// pure functions over a *Bucket's atomically-loaded words.
var backend bucketBackend = scalarBackend{}

func init() {
	// The wide back end's mask construction assumes the host can do a
	// single-instruction population count / trailing-zero count
	// efficiently (POPCNT/BSF on amd64, always present on arm64);
	// without that it is pure software emulation with no advantage
	// over the scalar loop, so there is no reason to switch to it.
	if cpu.X86.HasPOPCNT || cpu.ARM64.HasASIMD {
		backend = wideBackend{}
	}
}

// BucketPair is a pair of prefetched/resolved candidate buckets for a
// key, as returned by Table.Prefetch and consumed by the *InBuckets
// family of operations (SPEC_FULL.md §4.4's prefetch-then-operate
// split).
type BucketPair struct {
	b0, b1 *Bucket
	i0, i1 uint32
}
