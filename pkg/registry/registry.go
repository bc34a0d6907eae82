// Package registry archives built storage files. Every successful build
// can be recorded as an immutable snapshot, so a broken rollout can fall
// back to the previous tables for a container.
package registry

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"

	"github.com/fagerli/flagstore/pkg/builder"
	"github.com/fagerli/flagstore/pkg/codec"
	"github.com/fagerli/flagstore/pkg/cursor"
)

// Snapshot identifies one archived build. KSUIDs sort by creation time,
// so the lexically greatest id under a container is the newest snapshot.
type Snapshot struct {
	ID        ksuid.KSUID
	Container string
}

// Registry is a pebble-backed snapshot archive.
type Registry struct {
	db  *pebble.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens (or creates) a registry at path.
func Open(path string) (*Registry, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}
	return &Registry{db: db, enc: enc, dec: dec}, nil
}

// Close releases the registry.
func (r *Registry) Close() error {
	r.enc.Close()
	r.dec.Close()
	return r.db.Close()
}

func snapshotKey(container string, id ksuid.KSUID) []byte {
	return []byte(fmt.Sprintf("snapshot/%s/%s", container, id.String()))
}

func snapshotPrefix(container string) []byte {
	return []byte(fmt.Sprintf("snapshot/%s/", container))
}

// Put archives a build and returns its snapshot id.
func (r *Registry) Put(files *builder.StorageFiles) (ksuid.KSUID, error) {
	pkgBytes, err := files.PackageTable.Encode()
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to encode package table: %w", err)
	}
	flagBytes, err := files.FlagTable.Encode()
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to encode flag table: %w", err)
	}

	// Frame: container, then the three tables, each length-prefixed.
	w := cursor.NewWriter()
	w.String(files.Container)
	for _, table := range [][]byte{pkgBytes, flagBytes, files.FlagValues.Encode()} {
		w.Uint32(uint32(len(table)))
		w.Raw(table)
	}
	compressed := r.enc.EncodeAll(w.Bytes(), nil)

	id := ksuid.New()
	if err := r.db.Set(snapshotKey(files.Container, id), compressed, pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return id, nil
}

// Get retrieves one snapshot's tables.
func (r *Registry) Get(container string, id ksuid.KSUID) (*builder.StorageFiles, error) {
	compressed, closer, err := r.db.Get(snapshotKey(container, id))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s/%s: %w", container, id, err)
	}
	defer closer.Close()

	return r.decodeSnapshot(compressed)
}

// Latest retrieves the newest snapshot for a container.
func (r *Registry) Latest(container string) (ksuid.KSUID, *builder.StorageFiles, error) {
	prefix := snapshotPrefix(container)
	iter, err := r.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: append(append([]byte{}, prefix...), 0xFF),
	})
	if err != nil {
		return ksuid.Nil, nil, fmt.Errorf("failed to scan snapshots: %w", err)
	}
	defer iter.Close()

	if !iter.Last() {
		return ksuid.Nil, nil, fmt.Errorf("no snapshots for container %q", container)
	}
	id, err := ksuid.Parse(string(iter.Key()[len(prefix):]))
	if err != nil {
		return ksuid.Nil, nil, fmt.Errorf("malformed snapshot key %q: %w", iter.Key(), err)
	}
	value, err := iter.ValueAndErr()
	if err != nil {
		return ksuid.Nil, nil, err
	}
	files, err := r.decodeSnapshot(value)
	if err != nil {
		return ksuid.Nil, nil, err
	}
	return id, files, nil
}

// List returns all snapshots for a container, oldest first.
func (r *Registry) List(container string) ([]Snapshot, error) {
	prefix := snapshotPrefix(container)
	iter, err := r.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: append(append([]byte{}, prefix...), 0xFF),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshots: %w", err)
	}
	defer iter.Close()

	var snapshots []Snapshot
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.Parse(string(iter.Key()[len(prefix):]))
		if err != nil {
			return nil, fmt.Errorf("malformed snapshot key %q: %w", iter.Key(), err)
		}
		snapshots = append(snapshots, Snapshot{ID: id, Container: container})
	}
	return snapshots, nil
}

func (r *Registry) decodeSnapshot(compressed []byte) (*builder.StorageFiles, error) {
	frame, err := r.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	rd := cursor.NewReader(frame)
	container, err := rd.String()
	if err != nil {
		return nil, fmt.Errorf("snapshot frame: container: %w", err)
	}
	tables := make([][]byte, 3)
	for i := range tables {
		n, err := rd.Uint32()
		if err != nil {
			return nil, fmt.Errorf("snapshot frame: table %d length: %w", i, err)
		}
		if int(n) > rd.Remaining() {
			return nil, fmt.Errorf("snapshot frame: table %d length %d exceeds remaining %d", i, n, rd.Remaining())
		}
		tables[i] = frame[rd.Offset() : rd.Offset()+int(n)]
		if err := rd.Skip(int(n)); err != nil {
			return nil, fmt.Errorf("snapshot frame: table %d: %w", i, err)
		}
	}

	pkgTable, err := codec.DecodePackageTable(tables[0])
	if err != nil {
		return nil, err
	}
	flagTable, err := codec.DecodeFlagTable(tables[1])
	if err != nil {
		return nil, err
	}
	values, err := codec.DecodeFlagValueList(tables[2])
	if err != nil {
		return nil, err
	}

	return &builder.StorageFiles{
		Container:    container,
		PackageTable: pkgTable,
		FlagTable:    flagTable,
		FlagValues:   values,
	}, nil
}
