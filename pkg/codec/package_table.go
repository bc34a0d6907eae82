package codec

import (
	"fmt"

	"github.com/fagerli/flagstore/pkg/cursor"
	"github.com/fagerli/flagstore/pkg/hashing"
)

// PackageTableHeader is the fixed metadata at the front of a package table.
type PackageTableHeader struct {
	Version      uint32
	Container    string
	FileSize     uint32
	NumPackages  uint32
	BucketOffset uint32
	NodeOffset   uint32
}

// EncodedSize returns the number of bytes Encode produces.
func (h *PackageTableHeader) EncodedSize() int {
	return 20 + cursor.StringSize(h.Container)
}

// Encode serializes the header.
func (h *PackageTableHeader) Encode() []byte {
	w := cursor.NewWriter()
	w.Uint32(h.Version)
	w.String(h.Container)
	w.Uint32(h.FileSize)
	w.Uint32(h.NumPackages)
	w.Uint32(h.BucketOffset)
	w.Uint32(h.NodeOffset)
	return w.Bytes()
}

// DecodePackageTableHeader deserializes a header from the front of buf and
// returns the exact number of bytes consumed, so the caller's cursor points
// past the header afterward.
func DecodePackageTableHeader(buf []byte) (*PackageTableHeader, int, error) {
	r := cursor.NewReader(buf)
	h := &PackageTableHeader{}
	var err error
	if h.Version, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "package table header: version")
	}
	if h.Container, err = r.String(); err != nil {
		return nil, 0, parseFail(err, "package table header: container")
	}
	if h.FileSize, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "package table header: file size")
	}
	if h.NumPackages, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "package table header: package count")
	}
	if h.BucketOffset, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "package table header: bucket offset")
	}
	if h.NodeOffset, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "package table header: node offset")
	}
	return h, r.Offset(), nil
}

// PackageTableNode is the per-package record: the package's name, its dense
// numeric id, and the index of its first boolean flag in the flag value
// list. Nodes sharing a bucket form a singly linked chain through
// NextOffset.
type PackageTableNode struct {
	PackageName   string
	PackageID     uint32
	BooleanOffset uint32
	// NextOffset is the byte offset of the next node in this bucket's
	// chain, or NoNextNode when this node is the chain tail.
	NextOffset uint32
}

// Next returns the chain link and whether one exists.
func (n *PackageTableNode) Next() (uint32, bool) {
	return n.NextOffset, n.NextOffset != NoNextNode
}

// EncodedSize returns the number of bytes Encode produces. Nodes are
// variable-length records: the size depends on the package name.
func (n *PackageTableNode) EncodedSize() int {
	return cursor.StringSize(n.PackageName) + 12
}

// Encode serializes the node. A chain tail is written as the literal 0.
func (n *PackageTableNode) Encode() []byte {
	w := cursor.NewWriter()
	w.String(n.PackageName)
	w.Uint32(n.PackageID)
	w.Uint32(n.BooleanOffset)
	w.Uint32(n.NextOffset)
	return w.Bytes()
}

// DecodePackageTableNode deserializes a node from the front of buf and
// returns the bytes consumed. Callers walking the node array must advance
// by the returned count, never by a fixed stride.
func DecodePackageTableNode(buf []byte) (*PackageTableNode, int, error) {
	r := cursor.NewReader(buf)
	n := &PackageTableNode{}
	var err error
	if n.PackageName, err = r.String(); err != nil {
		return nil, 0, parseFail(err, "package table node: package name")
	}
	if n.PackageID, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "package table node %q: package id", n.PackageName)
	}
	if n.BooleanOffset, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "package table node %q: boolean offset", n.PackageName)
	}
	if n.NextOffset, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "package table node %q: next offset", n.PackageName)
	}
	return n, r.Offset(), nil
}

// PackageTable is the full in-memory form of a package table: header,
// bucket array, and node list. The table exclusively owns all three; there
// is no sharing between tables.
type PackageTable struct {
	Header  PackageTableHeader
	Buckets []uint32 // NoNextNode marks an empty slot
	Nodes   []PackageTableNode
}

// Encode serializes the table: header, then each bucket slot, then each
// node in list order. It refuses to encode a table whose section offsets
// would let a real node land at byte 0, since that would collide with the
// chain-tail sentinel.
func (t *PackageTable) Encode() ([]byte, error) {
	if t.Header.BucketOffset == 0 || t.Header.NodeOffset <= t.Header.BucketOffset {
		return nil, fmt.Errorf(
			"package table: invalid section offsets (bucket %d, node %d): node array must start after a non-empty header and bucket array",
			t.Header.BucketOffset, t.Header.NodeOffset)
	}
	w := cursor.NewWriter()
	w.Raw(t.Header.Encode())
	for _, b := range t.Buckets {
		w.Uint32(b)
	}
	for i := range t.Nodes {
		w.Raw(t.Nodes[i].Encode())
	}
	return w.Bytes(), nil
}

// DecodePackageTable deserializes a full table. The bucket count is not
// stored in the file; it is recomputed from the package count through the
// shared sizing contract, so build and read sides always agree.
func DecodePackageTable(buf []byte) (*PackageTable, error) {
	header, consumed, err := DecodePackageTableHeader(buf)
	if err != nil {
		return nil, err
	}
	if header.BucketOffset == 0 || header.NodeOffset <= header.BucketOffset {
		return nil, parseFail(nil, "package table: invalid section offsets (bucket %d, node %d)",
			header.BucketOffset, header.NodeOffset)
	}
	numBuckets, err := hashing.TableSize(header.NumPackages)
	if err != nil {
		return nil, parseFail(err, "package table: bucket count for %d packages", header.NumPackages)
	}
	r := cursor.NewReaderAt(buf, consumed)
	// Bound the header's claimed counts against the bytes actually present
	// before allocating for them.
	if int64(numBuckets)*4 > int64(r.Remaining()) {
		return nil, parseFail(nil, "package table: %d buckets need %d bytes but %d remain",
			numBuckets, int64(numBuckets)*4, r.Remaining())
	}
	buckets := make([]uint32, numBuckets)
	for i := range buckets {
		if buckets[i], err = r.Uint32(); err != nil {
			return nil, parseFail(err, "package table: bucket %d of %d", i, numBuckets)
		}
	}
	if int64(header.NumPackages) > int64(r.Remaining()) {
		return nil, parseFail(nil, "package table: %d nodes cannot fit in %d remaining bytes",
			header.NumPackages, r.Remaining())
	}
	nodes := make([]PackageTableNode, 0, header.NumPackages)
	off := r.Offset()
	for i := uint32(0); i < header.NumPackages; i++ {
		node, n, err := DecodePackageTableNode(buf[off:])
		if err != nil {
			return nil, parseFail(err, "package table: node %d of %d", i, header.NumPackages)
		}
		off += n
		nodes = append(nodes, *node)
	}
	return &PackageTable{Header: *header, Buckets: buckets, Nodes: nodes}, nil
}
