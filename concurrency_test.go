package dcht

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestConcurrentReadersDuringWrites is the writer+N-readers safety
// scenario from SPEC_FULL.md §8: one writer goroutine continuously
// inserts, updates, and deletes while several reader goroutines hammer
// Lookup concurrently. The property under test is the memory-ordering
// contract in bucket.go, not throughput: a reader must never observe a
// torn (key, value) pair, i.e. every value it returns for a key must be
// one the writer actually stored for that key at some point.
func TestConcurrentReadersDuringWrites(t *testing.T) {
	const (
		numKeys    = 500
		numReaders = 8
		rounds     = 2000
	)

	tbl, err := NewTable(4096, WithFollowDepth(4))
	require.NoError(t, err)

	// possible values the writer ever stores for key k, so a reader can
	// check its observation is one of them rather than garbage.
	validValues := func(k uint32) (v1, v2 uint32) {
		return k * 10, k*10 + 1
	}

	for k := uint32(1); k <= numKeys; k++ {
		v1, _ := validValues(k)
		require.NoError(t, tbl.Insert(k, v1, false))
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		for r := 0; r < rounds; r++ {
			k := uint32(r%numKeys) + 1
			v1, v2 := validValues(k)
			val := v1
			if r%2 == 1 {
				val = v2
			}
			if r%3 == 2 {
				tbl.Delete(k)
			}
			if err := tbl.Insert(k, val, false); err != nil {
				return err
			}
		}
		return nil
	})

	for i := 0; i < numReaders; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				k := uint32(i%numKeys) + 1
				v1, v2 := validValues(k)
				if v, ok := tbl.Lookup(k); ok && v != v1 && v != v2 {
					return errValueMismatch(k, v)
				}
			}
		})
	}

	require.NoError(t, g.Wait())
	require.NoError(t, tbl.Verify())
}

type mismatchError struct {
	key, value uint32
}

func (e mismatchError) Error() string {
	return "observed value not in the writer's valid set for this key"
}

func errValueMismatch(key, value uint32) error {
	return mismatchError{key: key, value: value}
}

// TestConcurrentReadersDuringRelocation targets the second concurrency
// scenario in SPEC_FULL.md §8: readers looking up keys while the writer
// forces cuckoo relocations by inserting into an adversarially
// constructed key set. A reader must keep finding every key that is
// currently present throughout.
func TestConcurrentReadersDuringRelocation(t *testing.T) {
	const numReaders = 4

	tbl, err := NewTable(512, WithFollowDepth(4))
	require.NoError(t, err)

	keys := make([]uint32, 0, 64)
	for k := uint32(1); len(keys) < 64; k++ {
		keys = append(keys, k)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		for _, k := range keys {
			if err := tbl.Insert(k, k*2, false); err != nil && err != ErrNoSpace {
				return err
			}
		}
		return nil
	})

	for i := 0; i < numReaders; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				for _, k := range keys {
					if v, ok := tbl.Lookup(k); ok && v != k*2 {
						return errValueMismatch(k, v)
					}
				}
			}
		})
	}

	require.NoError(t, g.Wait())
	require.NoError(t, tbl.Verify())
}
