package dcht

import "errors"

// Error kinds returned by Table operations. All of them except the
// panics documented on bucketIndices are ordinary returned errors —
// none of these represent process-fatal conditions.
var (
	// ErrInvalidKey is returned by Insert/InsertInBuckets when the
	// caller attempts to store the sentinel key as a user key.
	ErrInvalidKey = errors.New("dcht: sentinel key cannot be used as a user key")

	// ErrNotFound identifies the not-found condition in this package's
	// error taxonomy. Lookup and Delete report it via a plain bool
	// rather than returning it directly (the common Go map idiom), but
	// it is exported so callers building their own error-returning
	// wrappers around Table have a canonical sentinel to use instead of
	// minting their own.
	ErrNotFound = errors.New("dcht: key not found")

	// ErrNoSpace is returned by Insert/InsertInBuckets when both
	// candidate buckets are full and cuckoo relocation could not free
	// a slot within the configured follow depth. The table is
	// unchanged; the caller's remedy is a bigger table.
	ErrNoSpace = errors.New("dcht: no space for key after exhausting cuckoo relocation")

	// ErrInvalidAlignment names the misaligned-buffer condition in this
	// package's error taxonomy. InitTable does not return it: it aligns
	// the bucket array inside the supplied buffer itself, using the
	// cache-line slack that TableSizeBytes includes.
	ErrInvalidAlignment = errors.New("dcht: buffer is not cache-line aligned")

	// ErrTooSmall is returned by InitTable when the supplied buffer is
	// smaller than TableSizeBytes(maxEntries) requires.
	ErrTooSmall = errors.New("dcht: buffer too small for requested capacity")

	// ErrCorrupt is returned by Verify when a consistency check fails.
	// It is intended for tests, not production error handling.
	ErrCorrupt = errors.New("dcht: table failed consistency check")
)
