// Package hashing is the shared bucket contract between the table builder
// and the table readers.
//
// Both sides of the storage format must agree on how an entry name maps to
// a bucket and on how many buckets a table of a given size carries. The
// format itself cannot detect a disagreement: the bytes stay individually
// well-formed and lookups just silently miss. Any change here is a format
// version bump.
package hashing

import (
	"fmt"

	"github.com/dgryski/go-farm"
)

// tableSizePrimes holds the candidate bucket counts. Prime bucket counts
// keep chains short for the modulo distribution below.
var tableSizePrimes = []uint32{
	7, 17, 29, 53, 97, 193, 389, 769, 1543, 3079, 6151, 12289, 24593,
	49157, 98317, 196613, 393241, 786433, 1572869, 3145739, 6291469,
	12582917, 25165843, 50331653, 100663319, 201326611, 402653189,
	805306457, 1610612741,
}

// BucketIndex maps an entry name to a bucket. farm.Fingerprint64 is
// seedless and stable across processes and library versions, which is what
// makes the build-time and read-time sides agree.
func BucketIndex(name string, numBuckets uint32) uint32 {
	return uint32(farm.Fingerprint64([]byte(name)) % uint64(numBuckets))
}

// TableSize returns the bucket count for a table holding numEntries
// entries: the smallest prime at or above twice the entry count, giving a
// load factor of at most 0.5.
func TableSize(numEntries uint32) (uint32, error) {
	if numEntries > tableSizePrimes[len(tableSizePrimes)-1]/2 {
		return 0, fmt.Errorf("table size for %d entries exceeds maximum supported", numEntries)
	}
	want := numEntries * 2
	for _, p := range tableSizePrimes {
		if p >= want {
			return p, nil
		}
	}
	// Unreachable given the guard above.
	return 0, fmt.Errorf("table size for %d entries exceeds maximum supported", numEntries)
}
