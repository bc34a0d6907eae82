package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fagerli/flagstore/pkg/codec"
)

// FlagStore resolves flag reads against one container's storage files.
// It is immutable after Open and safe for concurrent use without locking.
type FlagStore struct {
	packages *PackageView
	flags    *FlagView
	values   *ValueView
}

// Open loads a container's storage files from dir. Corrupt, truncated, or
// version-incompatible files fail here, never at lookup time.
func Open(dir string) (*FlagStore, error) {
	pkgBuf, err := os.ReadFile(filepath.Join(dir, codec.PackageMapFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read package table: %w", err)
	}
	packages, err := NewPackageView(pkgBuf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", codec.PackageMapFile, err)
	}

	flagBuf, err := os.ReadFile(filepath.Join(dir, codec.FlagMapFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read flag table: %w", err)
	}
	flags, err := NewFlagView(flagBuf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", codec.FlagMapFile, err)
	}

	valBuf, err := os.ReadFile(filepath.Join(dir, codec.FlagValFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read flag value list: %w", err)
	}
	values, err := NewValueView(valBuf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", codec.FlagValFile, err)
	}

	return &FlagStore{packages: packages, flags: flags, values: values}, nil
}

// Container returns the container these tables describe.
func (s *FlagStore) Container() string {
	return s.packages.Container()
}

// GetPackage resolves a package name to its id and boolean offset.
func (s *FlagStore) GetPackage(name string) (*PackageInfo, error) {
	node, err := s.packages.Lookup(name)
	if err != nil {
		return nil, err
	}
	return &PackageInfo{
		Name:          node.PackageName,
		PackageID:     node.PackageID,
		BooleanOffset: node.BooleanOffset,
	}, nil
}

// GetFlag resolves a flag to its metadata and current boolean value.
func (s *FlagStore) GetFlag(pkg, flag string) (*FlagInfo, error) {
	pkgNode, err := s.packages.Lookup(pkg)
	if err != nil {
		return nil, err
	}
	flagNode, err := s.flags.Lookup(pkgNode.PackageID, flag)
	if err != nil {
		return nil, err
	}
	value, err := s.values.GetBool(pkgNode.BooleanOffset + uint32(flagNode.FlagIndex))
	if err != nil {
		return nil, err
	}
	return &FlagInfo{
		Package:   pkg,
		Name:      flagNode.FlagName,
		Type:      flagNode.FlagType.String(),
		FlagIndex: flagNode.FlagIndex,
		Value:     value,
	}, nil
}

// GetBool resolves a flag to just its boolean value.
func (s *FlagStore) GetBool(pkg, flag string) (bool, error) {
	info, err := s.GetFlag(pkg, flag)
	if err != nil {
		return false, err
	}
	return info.Value, nil
}

// Stats summarizes the loaded tables.
func (s *FlagStore) Stats() Stats {
	return Stats{
		Container:   s.packages.Container(),
		NumPackages: s.packages.NumPackages(),
		NumFlags:    s.flags.NumFlags(),
	}
}
