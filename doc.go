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

// Package dcht implements a bucketized cuckoo hash table mapping 32-bit
// keys to 32-bit values, built for exactly one writer goroutine and any
// number of concurrent reader goroutines with no locking on the read
// path.
//
// Every key hashes to two candidate buckets. An entry for a key lives in
// one of its two buckets, or is absent. Insertion that finds both
// candidate buckets full relocates an existing entry to its own
// alternate bucket (cuckoo displacement), recursively, up to a bounded
// depth.
//
// Readers observe a consistent key/value association through a strict
// store-value-then-release-key / acquire-key-then-load-value protocol;
// see the package-level comment in bucket.go for the exact ordering
// contract. There is no internal locking anywhere in the package:
// callers are responsible for ensuring at most one goroutine ever calls
// a writer method (Insert, Delete, Clean, Walk) on a given Table at a
// time.
//
// The table has a fixed capacity fixed at construction; it never
// resizes. Capacity planning, rehashing into a bigger table, and crash
// recovery are the caller's responsibility.
package dcht
