// Package codec implements the binary table formats backing flagstore.
//
// Three read-optimized tables are produced at build time and consumed by
// the runtime read library. All integers are little-endian; strings are
// length-prefixed with a 4-byte count of raw bytes, no terminator.
//
// # Package Table (package.map)
//
// Maps a package name to its numeric id and to the offset of its first
// boolean flag in the flag value list:
//
//	Header:  version(4) | len(4)+container | file_size(4) | num_packages(4) | bucket_offset(4) | node_offset(4)
//	Buckets: num_buckets × offset(4)        // 0 marks an empty bucket
//	Nodes:   num_packages × [ len(4)+name | package_id(4) | boolean_offset(4) | next_offset(4) ]
//
// # Flag Table (flag.map)
//
// Maps (package id, flag name) to the flag's index within its package:
//
//	Header:  version(4) | len(4)+container | file_size(4) | num_flags(4) | bucket_offset(4) | node_offset(4)
//	Buckets: num_buckets × offset(4)
//	Nodes:   num_flags × [ package_id(4) | len(4)+name | flag_type(2) | flag_index(2) | next_offset(4) ]
//
// # Flag Value List (flag.val)
//
// The boolean values themselves, one byte per flag:
//
//	Header:  version(4) | len(4)+container | file_size(4) | num_flags(4) | boolean_offset(4)
//	Values:  num_flags × bool(1)
//
// # Collision chains and the zero sentinel
//
// The bucket arrays hold byte offsets, relative to the start of the table,
// of each bucket's first node. Nodes sharing a bucket are chained through
// their next_offset field. The value 0 doubles as "empty bucket" and "chain
// tail": it can never collide with a real node offset because the node
// array begins strictly after the header and the bucket array, both of
// non-zero size. Encode enforces this as a precondition rather than
// trusting layout order.
//
// Node records are variable-length, so every decode reports the exact
// number of bytes it consumed and callers advance by that count, never by
// a fixed stride.
//
// The version field is the first 4 bytes of every table, so a consumer can
// peek at format compatibility before attempting a full decode.
//
// # Error Handling
//
// All decodes either fully succeed or return a *ParseError describing the
// structure and field that failed. No decode ever reads past the end of
// the input buffer or returns a partially filled structure.
//
// # Thread Safety
//
// Tables are built once and never mutated. Encoded buffers and decoded
// structures are immutable and safe to share between any number of
// goroutines or processes.
package codec
