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

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
)

// maxHashRetry bounds the number of times bucketIndices re-mixes a
// colliding or reserved index before giving up. Exceeding it means the
// two mixers are not independent enough for the current key stream — a
// broken hash family, not a recoverable condition.
const maxHashRetry = 10

// castagnoli is the hardware-accelerated CRC32C table: on amd64 and
// arm64 hash/crc32 dispatches to the CPU's CRC32 instruction for this
// polynomial automatically, which is the Go-native equivalent of the
// original C source's compile-time x86_64-vs-generic split around
// _mm_crc32_u32 (see SPEC_FULL.md §4.1). There is deliberately no
// hand-rolled software CRC here.
var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// mixA is the table's first 32-bit mixer: CRC32C of (seed, key).
func mixA(seed, key uint32) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], seed)
	binary.LittleEndian.PutUint32(buf[4:8], key)
	return crc32.Checksum(buf[:], castagnoli)
}

// mixB is the table's second 32-bit mixer, deliberately a different
// hash family from mixA (xxhash rather than CRC) so that the two
// candidate-bucket derivations are statistically independent. Folding
// the 64-bit digest down to 32 bits by XOR keeps its avalanche.
func mixB(seed, key uint32) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], seed)
	binary.LittleEndian.PutUint32(buf[4:8], key)
	h := xxhash.Sum64(buf[:])
	return uint32(h) ^ uint32(h>>32)
}

const mixSeedA uint32 = 0xdeadbeef
const mixSeedB uint32 = 0x9e3779b9

// bucketIndices returns the two candidate bucket indices for key under
// the given mask (mask = nbuckets-1). Index 0 is reserved and never
// returned (see SPEC_FULL.md §3 "index-0 bucket reservation"), so of
// the mask+1 buckets a table allocates, bucket 0 never holds user data.
//
// The two returned indices are always distinct. bucketIndices panics if
// either mixer fails to produce a fresh, non-reserved, non-colliding
// index within maxHashRetry attempts: that indicates the hash family
// itself is broken, not a condition a caller can recover from.
func bucketIndices(key, mask uint32) (i0, i1 uint32) {
	x := mixA(mixSeedA, key)
	pos0 := x & mask
	for retry := 0; pos0 == 0; retry++ {
		if retry >= maxHashRetry {
			panic("dcht: hash family broken: mixA could not produce a non-reserved index")
		}
		x = mixA(x, key)
		pos0 = x & mask
	}

	y := mixB(mixSeedB^x, key)
	pos1 := y & mask
	for retry := 0; pos0 == pos1 || pos1 == 0; retry++ {
		if retry >= maxHashRetry {
			panic("dcht: hash family broken: mixB could not produce a distinct, non-reserved index")
		}
		y = mixB(y, ^key)
		pos1 = y & mask
	}

	return pos0, pos1
}

// alternateBucket returns the other of key's two candidate buckets,
// given one of them. The caller must already know current is one of
// key's two candidates (this is not re-validated).
func alternateBucket(key, mask, current uint32) uint32 {
	i0, i1 := bucketIndices(key, mask)
	if i0 == current {
		return i1
	}
	return i0
}
