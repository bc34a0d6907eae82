// Package store is the runtime read path over the binary storage tables.
//
// Views operate directly on the raw encoded buffer: a lookup peeks the
// bucket slot, then walks the collision chain decoding only the nodes it
// visits. Nothing is deserialized up front, so opening a store is cheap
// regardless of table size. Buffers are never mutated after load, which is
// the only thing needed for unlimited concurrent readers.
package store

import (
	"encoding/binary"
	"fmt"

	"github.com/fagerli/flagstore/pkg/codec"
	"github.com/fagerli/flagstore/pkg/hashing"
)

// PackageView is a read-only lookup handle over an encoded package table.
type PackageView struct {
	buf        []byte
	header     *codec.PackageTableHeader
	numBuckets uint32
}

// NewPackageView validates the buffer's version and bounds and returns a
// lookup handle. The buffer must stay unmodified for the view's lifetime;
// the view does not copy it.
func NewPackageView(buf []byte) (*PackageView, error) {
	version, err := codec.PeekVersion(buf)
	if err != nil {
		return nil, err
	}
	if version > codec.MaxSupportedVersion {
		return nil, fmt.Errorf("package table version %d is newer than supported version %d", version, codec.MaxSupportedVersion)
	}

	header, _, err := codec.DecodePackageTableHeader(buf)
	if err != nil {
		return nil, err
	}
	if uint32(len(buf)) != header.FileSize {
		return nil, fmt.Errorf("package table: buffer holds %d bytes but header declares %d", len(buf), header.FileSize)
	}
	if header.BucketOffset == 0 || header.NodeOffset <= header.BucketOffset {
		return nil, fmt.Errorf("package table: invalid section offsets (bucket %d, node %d)", header.BucketOffset, header.NodeOffset)
	}

	numBuckets, err := hashing.TableSize(header.NumPackages)
	if err != nil {
		return nil, fmt.Errorf("package table: %w", err)
	}
	if header.NodeOffset != header.BucketOffset+numBuckets*4 {
		return nil, fmt.Errorf("package table: node offset %d does not follow %d buckets at offset %d; table was built with a different sizing policy",
			header.NodeOffset, numBuckets, header.BucketOffset)
	}
	if header.NodeOffset > header.FileSize {
		return nil, fmt.Errorf("package table: bucket section [%d, %d) extends past %d-byte file",
			header.BucketOffset, header.NodeOffset, header.FileSize)
	}

	return &PackageView{buf: buf, header: header, numBuckets: numBuckets}, nil
}

// Container returns the container this table describes.
func (v *PackageView) Container() string {
	return v.header.Container
}

// NumPackages returns the number of packages in the table.
func (v *PackageView) NumPackages() uint32 {
	return v.header.NumPackages
}

// Lookup resolves a package name to its node by bucket arithmetic over the
// raw bytes. Returns ErrPackageNotFound when no chain node matches.
func (v *PackageView) Lookup(name string) (*codec.PackageTableNode, error) {
	bucket := hashing.BucketIndex(name, v.numBuckets)
	offset := binary.LittleEndian.Uint32(v.buf[v.header.BucketOffset+bucket*4:])

	// A chain longer than the node count means a corrupt link cycle.
	for steps := uint32(0); offset != codec.NoNextNode; steps++ {
		if steps >= v.header.NumPackages {
			return nil, fmt.Errorf("package table: bucket %d chain exceeds %d nodes, link cycle suspected", bucket, v.header.NumPackages)
		}
		if offset < v.header.NodeOffset || offset >= v.header.FileSize {
			return nil, fmt.Errorf("package table: chain offset %d outside node section [%d, %d)", offset, v.header.NodeOffset, v.header.FileSize)
		}
		node, _, err := codec.DecodePackageTableNode(v.buf[offset:])
		if err != nil {
			return nil, err
		}
		if node.PackageName == name {
			return node, nil
		}
		offset = node.NextOffset
	}
	return nil, ErrPackageNotFound
}

// FlagView is a read-only lookup handle over an encoded flag table.
type FlagView struct {
	buf        []byte
	header     *codec.FlagTableHeader
	numBuckets uint32
}

// NewFlagView validates the buffer's version and bounds and returns a
// lookup handle.
func NewFlagView(buf []byte) (*FlagView, error) {
	version, err := codec.PeekVersion(buf)
	if err != nil {
		return nil, err
	}
	if version > codec.MaxSupportedVersion {
		return nil, fmt.Errorf("flag table version %d is newer than supported version %d", version, codec.MaxSupportedVersion)
	}

	header, _, err := codec.DecodeFlagTableHeader(buf)
	if err != nil {
		return nil, err
	}
	if uint32(len(buf)) != header.FileSize {
		return nil, fmt.Errorf("flag table: buffer holds %d bytes but header declares %d", len(buf), header.FileSize)
	}
	if header.BucketOffset == 0 || header.NodeOffset <= header.BucketOffset {
		return nil, fmt.Errorf("flag table: invalid section offsets (bucket %d, node %d)", header.BucketOffset, header.NodeOffset)
	}

	numBuckets, err := hashing.TableSize(header.NumFlags)
	if err != nil {
		return nil, fmt.Errorf("flag table: %w", err)
	}
	if header.NodeOffset != header.BucketOffset+numBuckets*4 {
		return nil, fmt.Errorf("flag table: node offset %d does not follow %d buckets at offset %d; table was built with a different sizing policy",
			header.NodeOffset, numBuckets, header.BucketOffset)
	}
	if header.NodeOffset > header.FileSize {
		return nil, fmt.Errorf("flag table: bucket section [%d, %d) extends past %d-byte file",
			header.BucketOffset, header.NodeOffset, header.FileSize)
	}

	return &FlagView{buf: buf, header: header, numBuckets: numBuckets}, nil
}

// NumFlags returns the number of flags in the table.
func (v *FlagView) NumFlags() uint32 {
	return v.header.NumFlags
}

// Lookup resolves (package id, flag name) to its node. Returns
// ErrFlagNotFound when no chain node matches.
func (v *FlagView) Lookup(packageID uint32, flagName string) (*codec.FlagTableNode, error) {
	bucket := hashing.BucketIndex(codec.FlagBucketKey(packageID, flagName), v.numBuckets)
	offset := binary.LittleEndian.Uint32(v.buf[v.header.BucketOffset+bucket*4:])

	for steps := uint32(0); offset != codec.NoNextNode; steps++ {
		if steps >= v.header.NumFlags {
			return nil, fmt.Errorf("flag table: bucket %d chain exceeds %d nodes, link cycle suspected", bucket, v.header.NumFlags)
		}
		if offset < v.header.NodeOffset || offset >= v.header.FileSize {
			return nil, fmt.Errorf("flag table: chain offset %d outside node section [%d, %d)", offset, v.header.NodeOffset, v.header.FileSize)
		}
		node, _, err := codec.DecodeFlagTableNode(v.buf[offset:])
		if err != nil {
			return nil, err
		}
		if node.PackageID == packageID && node.FlagName == flagName {
			return node, nil
		}
		offset = node.NextOffset
	}
	return nil, ErrFlagNotFound
}

// ValueView is a read-only handle over an encoded flag value list.
type ValueView struct {
	buf    []byte
	header *codec.FlagValueListHeader
}

// NewValueView validates the buffer's version and bounds and returns a
// value handle.
func NewValueView(buf []byte) (*ValueView, error) {
	version, err := codec.PeekVersion(buf)
	if err != nil {
		return nil, err
	}
	if version > codec.MaxSupportedVersion {
		return nil, fmt.Errorf("flag value list version %d is newer than supported version %d", version, codec.MaxSupportedVersion)
	}

	header, _, err := codec.DecodeFlagValueListHeader(buf)
	if err != nil {
		return nil, err
	}
	if uint32(len(buf)) != header.FileSize {
		return nil, fmt.Errorf("flag value list: buffer holds %d bytes but header declares %d", len(buf), header.FileSize)
	}
	if uint64(header.BooleanOffset)+uint64(header.NumFlags) > uint64(len(buf)) {
		return nil, fmt.Errorf("flag value list: %d values at offset %d exceed %d bytes", header.NumFlags, header.BooleanOffset, len(buf))
	}

	return &ValueView{buf: buf, header: header}, nil
}

// NumFlags returns the number of values in the list.
func (v *ValueView) NumFlags() uint32 {
	return v.header.NumFlags
}

// GetBool returns the boolean at the given global flag index.
func (v *ValueView) GetBool(index uint32) (bool, error) {
	if index >= v.header.NumFlags {
		return false, fmt.Errorf("flag value index %d out of range (%d flags)", index, v.header.NumFlags)
	}
	return v.buf[v.header.BooleanOffset+index] != 0, nil
}
