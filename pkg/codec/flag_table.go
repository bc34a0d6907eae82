package codec

import (
	"fmt"

	"github.com/fagerli/flagstore/pkg/cursor"
	"github.com/fagerli/flagstore/pkg/hashing"
)

// FlagType distinguishes how a boolean flag may be updated after build.
type FlagType uint16

const (
	// ReadWriteBoolean flags may be overridden at runtime by tooling.
	ReadWriteBoolean FlagType = iota
	// ReadOnlyBoolean flags are fixed at build time.
	ReadOnlyBoolean
)

func (t FlagType) String() string {
	switch t {
	case ReadWriteBoolean:
		return "read-write boolean"
	case ReadOnlyBoolean:
		return "read-only boolean"
	default:
		return fmt.Sprintf("unknown flag type %d", uint16(t))
	}
}

// FlagBucketKey is the string hashed to place a flag table node in a
// bucket. Flag names are only unique within a package, so the owning
// package id is folded into the key.
func FlagBucketKey(packageID uint32, flagName string) string {
	return fmt.Sprintf("%d/%s", packageID, flagName)
}

// FlagTableHeader is the fixed metadata at the front of a flag table.
type FlagTableHeader struct {
	Version      uint32
	Container    string
	FileSize     uint32
	NumFlags     uint32
	BucketOffset uint32
	NodeOffset   uint32
}

// EncodedSize returns the number of bytes Encode produces.
func (h *FlagTableHeader) EncodedSize() int {
	return 20 + cursor.StringSize(h.Container)
}

// Encode serializes the header.
func (h *FlagTableHeader) Encode() []byte {
	w := cursor.NewWriter()
	w.Uint32(h.Version)
	w.String(h.Container)
	w.Uint32(h.FileSize)
	w.Uint32(h.NumFlags)
	w.Uint32(h.BucketOffset)
	w.Uint32(h.NodeOffset)
	return w.Bytes()
}

// DecodeFlagTableHeader deserializes a header from the front of buf and
// returns the bytes consumed.
func DecodeFlagTableHeader(buf []byte) (*FlagTableHeader, int, error) {
	r := cursor.NewReader(buf)
	h := &FlagTableHeader{}
	var err error
	if h.Version, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag table header: version")
	}
	if h.Container, err = r.String(); err != nil {
		return nil, 0, parseFail(err, "flag table header: container")
	}
	if h.FileSize, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag table header: file size")
	}
	if h.NumFlags, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag table header: flag count")
	}
	if h.BucketOffset, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag table header: bucket offset")
	}
	if h.NodeOffset, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag table header: node offset")
	}
	return h, r.Offset(), nil
}

// FlagTableNode is the per-flag record: the owning package id, the flag
// name, its type, and its index within the package's slice of the flag
// value list.
type FlagTableNode struct {
	PackageID uint32
	FlagName  string
	FlagType  FlagType
	FlagIndex uint16
	// NextOffset links to the next node in this bucket's chain, or
	// NoNextNode at the chain tail.
	NextOffset uint32
}

// Next returns the chain link and whether one exists.
func (n *FlagTableNode) Next() (uint32, bool) {
	return n.NextOffset, n.NextOffset != NoNextNode
}

// EncodedSize returns the number of bytes Encode produces.
func (n *FlagTableNode) EncodedSize() int {
	return cursor.StringSize(n.FlagName) + 12
}

// Encode serializes the node.
func (n *FlagTableNode) Encode() []byte {
	w := cursor.NewWriter()
	w.Uint32(n.PackageID)
	w.String(n.FlagName)
	w.Uint16(uint16(n.FlagType))
	w.Uint16(n.FlagIndex)
	w.Uint32(n.NextOffset)
	return w.Bytes()
}

// DecodeFlagTableNode deserializes a node from the front of buf and
// returns the bytes consumed.
func DecodeFlagTableNode(buf []byte) (*FlagTableNode, int, error) {
	r := cursor.NewReader(buf)
	n := &FlagTableNode{}
	var err error
	if n.PackageID, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag table node: package id")
	}
	if n.FlagName, err = r.String(); err != nil {
		return nil, 0, parseFail(err, "flag table node: flag name")
	}
	var ft uint16
	if ft, err = r.Uint16(); err != nil {
		return nil, 0, parseFail(err, "flag table node %q: flag type", n.FlagName)
	}
	n.FlagType = FlagType(ft)
	if n.FlagIndex, err = r.Uint16(); err != nil {
		return nil, 0, parseFail(err, "flag table node %q: flag index", n.FlagName)
	}
	if n.NextOffset, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag table node %q: next offset", n.FlagName)
	}
	return n, r.Offset(), nil
}

// FlagTable is the full in-memory form of a flag table.
type FlagTable struct {
	Header  FlagTableHeader
	Buckets []uint32 // NoNextNode marks an empty slot
	Nodes   []FlagTableNode
}

// Encode serializes the table with the same layout and sentinel rules as
// the package table.
func (t *FlagTable) Encode() ([]byte, error) {
	if t.Header.BucketOffset == 0 || t.Header.NodeOffset <= t.Header.BucketOffset {
		return nil, fmt.Errorf(
			"flag table: invalid section offsets (bucket %d, node %d): node array must start after a non-empty header and bucket array",
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

// DecodeFlagTable deserializes a full flag table.
func DecodeFlagTable(buf []byte) (*FlagTable, error) {
	header, consumed, err := DecodeFlagTableHeader(buf)
	if err != nil {
		return nil, err
	}
	if header.BucketOffset == 0 || header.NodeOffset <= header.BucketOffset {
		return nil, parseFail(nil, "flag table: invalid section offsets (bucket %d, node %d)",
			header.BucketOffset, header.NodeOffset)
	}
	numBuckets, err := hashing.TableSize(header.NumFlags)
	if err != nil {
		return nil, parseFail(err, "flag table: bucket count for %d flags", header.NumFlags)
	}
	r := cursor.NewReaderAt(buf, consumed)
	// Bound the header's claimed counts against the bytes actually present
	// before allocating for them.
	if int64(numBuckets)*4 > int64(r.Remaining()) {
		return nil, parseFail(nil, "flag table: %d buckets need %d bytes but %d remain",
			numBuckets, int64(numBuckets)*4, r.Remaining())
	}
	buckets := make([]uint32, numBuckets)
	for i := range buckets {
		if buckets[i], err = r.Uint32(); err != nil {
			return nil, parseFail(err, "flag table: bucket %d of %d", i, numBuckets)
		}
	}
	if int64(header.NumFlags) > int64(r.Remaining()) {
		return nil, parseFail(nil, "flag table: %d nodes cannot fit in %d remaining bytes",
			header.NumFlags, r.Remaining())
	}
	nodes := make([]FlagTableNode, 0, header.NumFlags)
	off := r.Offset()
	for i := uint32(0); i < header.NumFlags; i++ {
		node, n, err := DecodeFlagTableNode(buf[off:])
		if err != nil {
			return nil, parseFail(err, "flag table: node %d of %d", i, header.NumFlags)
		}
		off += n
		nodes = append(nodes, *node)
	}
	return &FlagTable{Header: *header, Buckets: buckets, Nodes: nodes}, nil
}
