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

import (
	"math/bits"
	"unsafe"
)

const bucketByteSize = uintptr(bucketSlots) * 4 * 2 // keys + vals

// nextPowerOfTwo returns the smallest power of two >= v (v >= 1).
func nextPowerOfTwo(v uint32) uint32 {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len32(v-1)
}

// bucketCountFor returns the number of buckets (a power of two,
// including the reserved bucket 0 — see hash.go) a table needs to hold
// maxEntries at targetLoadFactor.
func bucketCountFor(maxEntries uint32) uint32 {
	if maxEntries < minEntries {
		maxEntries = minEntries
	}
	// usable buckets are bucketCount-1 (bucket 0 is reserved), but for
	// any bucketCount worth allocating that loses at most 1/bucketCount
	// of capacity, which the power-of-two rounding already dwarfs.
	needed := float64(maxEntries) / (float64(bucketSlots) * targetLoadFactor)
	n := nextPowerOfTwo(uint32(needed + 0.999999))
	if n < 2 {
		n = 2
	}
	return n
}

// TableSizeBytes returns the number of bytes NewTable (or a caller using
// InitTable directly) needs to back a table sized for maxEntries,
// including slack for cache-line alignment.
func TableSizeBytes(maxEntries uint32) uintptr {
	n := uintptr(bucketCountFor(maxEntries))
	return n*bucketByteSize + cacheLineSize
}

// alignedBucketSlice carves a cache-line-aligned []Bucket view of
// length n out of buf. buf must be at least n*bucketByteSize+
// cacheLineSize-1 bytes. This is the Go-native equivalent of the
// teacher's byteToBucketSlice/allocBuckets pair in slice.go: instead of
// reflect.SliceHeader field surgery, it uses unsafe.Slice over a
// manually-aligned pointer, which is the supported way to do this since
// Go 1.17.
func alignedBucketSlice(buf []byte, n uint32) []Bucket {
	base := uintptr(unsafe.Pointer(&buf[0]))
	aligned := (base + cacheLineSize - 1) &^ (cacheLineSize - 1)
	offset := aligned - base
	ptr := unsafe.Pointer(&buf[offset])
	return unsafe.Slice((*Bucket)(ptr), n)
}
