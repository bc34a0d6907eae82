//go:build fuzz
// +build fuzz

package codec

import "testing"

// FuzzDecodePackageTable checks that arbitrary input never panics or
// escapes the buffer: decode either succeeds or returns a parse failure.
func FuzzDecodePackageTable(f *testing.F) {
	table := &PackageTable{
		Header: PackageTableHeader{
			Version:      FormatVersion,
			Container:    "system",
			NumPackages:  1,
			BucketOffset: 30,
			NodeOffset:   58,
		},
		Buckets: make([]uint32, 7),
		Nodes:   []PackageTableNode{{PackageName: "pkg", PackageID: 0}},
	}
	if seed, err := table.Encode(); err == nil {
		f.Add(seed)
	}
	f.Add([]byte{})
	f.Add([]byte{0x01, 0x00, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		decoded, err := DecodePackageTable(data)
		if err == nil && decoded == nil {
			t.Error("nil table without error")
		}
	})
}

// FuzzPackageTableNode_RoundTrip checks the node codec against arbitrary
// field values.
func FuzzPackageTableNode_RoundTrip(f *testing.F) {
	f.Add("com.android.adbd", uint32(1), uint32(0), uint32(0))
	f.Add("", uint32(0), uint32(7), uint32(211))

	f.Fuzz(func(t *testing.T, name string, id, boolOffset, next uint32) {
		node := PackageTableNode{PackageName: name, PackageID: id, BooleanOffset: boolOffset, NextOffset: next}
		decoded, consumed, err := DecodePackageTableNode(node.Encode())
		if err != nil {
			t.Fatalf("decode of freshly encoded node failed: %v", err)
		}
		if consumed != node.EncodedSize() {
			t.Errorf("consumed %d, want %d", consumed, node.EncodedSize())
		}
		if *decoded != node {
			t.Errorf("round trip mismatch: got %+v, want %+v", *decoded, node)
		}
	})
}
