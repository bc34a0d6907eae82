// Package builder turns container flag definitions into the binary storage
// tables. Building is deterministic: the same definition always produces
// byte-identical files, so rebuilds are reproducible and diffable.
package builder

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/fagerli/flagstore/pkg/codec"
	"github.com/fagerli/flagstore/pkg/hashing"
)

// FlagDef declares one boolean flag inside a package definition.
type FlagDef struct {
	Name     string `yaml:"name"`
	ReadOnly bool   `yaml:"read_only"`
	Default  bool   `yaml:"default"`
}

// PackageDef declares one flag-owning package.
type PackageDef struct {
	Name  string    `yaml:"package"`
	Flags []FlagDef `yaml:"flags"`
}

// ContainerDef is the top-level build input: all packages of one container.
type ContainerDef struct {
	Container string       `yaml:"container"`
	Packages  []PackageDef `yaml:"packages"`
}

// ParseContainerDef parses a YAML container definition.
func ParseContainerDef(data []byte) (*ContainerDef, error) {
	var def ContainerDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse container definition: %w", err)
	}
	return &def, nil
}

// LoadContainerDef reads and parses a YAML container definition file.
func LoadContainerDef(path string) (*ContainerDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read container definition: %w", err)
	}
	def, err := ParseContainerDef(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// StorageFiles holds one container's built tables.
type StorageFiles struct {
	Container    string
	PackageTable *codec.PackageTable
	FlagTable    *codec.FlagTable
	FlagValues   *codec.FlagValueList
}

// WriteDir encodes the three tables into dir under their standard names.
func (f *StorageFiles) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pkgBytes, err := f.PackageTable.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode package table: %w", err)
	}
	flagBytes, err := f.FlagTable.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode flag table: %w", err)
	}

	files := map[string][]byte{
		codec.PackageMapFile: pkgBytes,
		codec.FlagMapFile:    flagBytes,
		codec.FlagValFile:    f.FlagValues.Encode(),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// Build assembles the package table, flag table, and flag value list for a
// container definition. Packages get dense ids in sorted-name order; each
// package's flags get indexes in sorted-name order; boolean offsets are the
// running total of flags across preceding packages.
func Build(def *ContainerDef) (*StorageFiles, error) {
	if def.Container == "" {
		return nil, fmt.Errorf("container definition has no container name")
	}

	pkgs := make([]PackageDef, len(def.Packages))
	copy(pkgs, def.Packages)
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })

	seen := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		if p.Name == "" {
			return nil, fmt.Errorf("container %s: package with empty name", def.Container)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("container %s: duplicate package %q", def.Container, p.Name)
		}
		seen[p.Name] = true
		if len(p.Flags) > math.MaxUint16 {
			return nil, fmt.Errorf("package %q: %d flags exceeds the per-package limit", p.Name, len(p.Flags))
		}
	}

	pkgTable, err := buildPackageTable(def.Container, pkgs)
	if err != nil {
		return nil, err
	}
	flagTable, values, err := buildFlagTables(def.Container, pkgs)
	if err != nil {
		return nil, err
	}

	return &StorageFiles{
		Container:    def.Container,
		PackageTable: pkgTable,
		FlagTable:    flagTable,
		FlagValues:   values,
	}, nil
}

// buildPackageTable lays out the package nodes. Chains are kept as list
// indexes while grouping; byte offsets only exist once the layout is final.
func buildPackageTable(container string, pkgs []PackageDef) (*codec.PackageTable, error) {
	numBuckets, err := hashing.TableSize(uint32(len(pkgs)))
	if err != nil {
		return nil, fmt.Errorf("container %s: %w", container, err)
	}

	header := codec.PackageTableHeader{
		Version:     codec.FormatVersion,
		Container:   container,
		NumPackages: uint32(len(pkgs)),
	}
	header.BucketOffset = uint32(header.EncodedSize())
	header.NodeOffset = header.BucketOffset + numBuckets*4

	chains := make([][]int, numBuckets)
	booleanOffset := uint32(0)
	nodes := make([]codec.PackageTableNode, len(pkgs))
	for i, p := range pkgs {
		nodes[i] = codec.PackageTableNode{
			PackageName:   p.Name,
			PackageID:     uint32(i),
			BooleanOffset: booleanOffset,
		}
		booleanOffset += uint32(len(p.Flags))
		b := hashing.BucketIndex(p.Name, numBuckets)
		chains[b] = append(chains[b], i)
	}

	buckets := make([]uint32, numBuckets)
	ordered := make([]codec.PackageTableNode, 0, len(nodes))
	offset := header.NodeOffset
	for b, chain := range chains {
		for pos, idx := range chain {
			node := nodes[idx]
			if pos == 0 {
				buckets[b] = offset
			}
			end := offset + uint32(node.EncodedSize())
			if pos < len(chain)-1 {
				node.NextOffset = end
			}
			ordered = append(ordered, node)
			offset = end
		}
	}
	header.FileSize = offset

	return &codec.PackageTable{Header: header, Buckets: buckets, Nodes: ordered}, nil
}

// buildFlagTables lays out the flag nodes and the boolean value list. The
// value list index of a flag is its owning package's boolean offset plus
// the flag's index within the package.
func buildFlagTables(container string, pkgs []PackageDef) (*codec.FlagTable, *codec.FlagValueList, error) {
	type flagEntry struct {
		node  codec.FlagTableNode
		value bool
	}

	var entries []flagEntry
	for pkgID, p := range pkgs {
		flags := make([]FlagDef, len(p.Flags))
		copy(flags, p.Flags)
		sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })

		seen := make(map[string]bool, len(flags))
		for idx, f := range flags {
			if f.Name == "" {
				return nil, nil, fmt.Errorf("package %q: flag with empty name", p.Name)
			}
			if seen[f.Name] {
				return nil, nil, fmt.Errorf("package %q: duplicate flag %q", p.Name, f.Name)
			}
			seen[f.Name] = true

			flagType := codec.ReadWriteBoolean
			if f.ReadOnly {
				flagType = codec.ReadOnlyBoolean
			}
			entries = append(entries, flagEntry{
				node: codec.FlagTableNode{
					PackageID: uint32(pkgID),
					FlagName:  f.Name,
					FlagType:  flagType,
					FlagIndex: uint16(idx),
				},
				value: f.Default,
			})
		}
	}

	numFlags := uint32(len(entries))
	numBuckets, err := hashing.TableSize(numFlags)
	if err != nil {
		return nil, nil, fmt.Errorf("container %s: %w", container, err)
	}

	header := codec.FlagTableHeader{
		Version:   codec.FormatVersion,
		Container: container,
		NumFlags:  numFlags,
	}
	header.BucketOffset = uint32(header.EncodedSize())
	header.NodeOffset = header.BucketOffset + numBuckets*4

	chains := make([][]int, numBuckets)
	booleans := make([]bool, 0, numFlags)
	for i := range entries {
		key := codec.FlagBucketKey(entries[i].node.PackageID, entries[i].node.FlagName)
		b := hashing.BucketIndex(key, numBuckets)
		chains[b] = append(chains[b], i)
		booleans = append(booleans, entries[i].value)
	}

	buckets := make([]uint32, numBuckets)
	ordered := make([]codec.FlagTableNode, 0, len(entries))
	offset := header.NodeOffset
	for b, chain := range chains {
		for pos, idx := range chain {
			node := entries[idx].node
			if pos == 0 {
				buckets[b] = offset
			}
			end := offset + uint32(node.EncodedSize())
			if pos < len(chain)-1 {
				node.NextOffset = end
			}
			ordered = append(ordered, node)
			offset = end
		}
	}
	header.FileSize = offset

	valueHeader := codec.FlagValueListHeader{
		Version:   codec.FormatVersion,
		Container: container,
		NumFlags:  numFlags,
	}
	valueHeader.BooleanOffset = uint32(valueHeader.EncodedSize())
	valueHeader.FileSize = valueHeader.BooleanOffset + numFlags

	flagTable := &codec.FlagTable{Header: header, Buckets: buckets, Nodes: ordered}
	valueList := &codec.FlagValueList{Header: valueHeader, Booleans: booleans}
	return flagTable, valueList, nil
}
