package store

import (
	"errors"
	"testing"

	"github.com/fagerli/flagstore/pkg/builder"
	"github.com/fagerli/flagstore/pkg/codec"
)

func buildTestFiles(t *testing.T) *builder.StorageFiles {
	t.Helper()
	files, err := builder.Build(&builder.ContainerDef{
		Container: "system",
		Packages: []builder.PackageDef{
			{
				Name: "com.android.media",
				Flags: []builder.FlagDef{
					{Name: "enable_codec_v2", Default: true},
					{Name: "use_hw_decode", ReadOnly: true, Default: false},
				},
			},
			{
				Name: "com.android.adbd",
				Flags: []builder.FlagDef{
					{Name: "enable_pairing", Default: true},
				},
			},
			{
				Name: "com.android.netd",
				Flags: []builder.FlagDef{
					{Name: "use_new_stack", Default: false},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return files
}

func encodePackageTable(t *testing.T, files *builder.StorageFiles) []byte {
	t.Helper()
	buf, err := files.PackageTable.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return buf
}

func TestPackageView_Lookup(t *testing.T) {
	files := buildTestFiles(t)
	view, err := NewPackageView(encodePackageTable(t, files))
	if err != nil {
		t.Fatalf("NewPackageView failed: %v", err)
	}

	if view.Container() != "system" {
		t.Errorf("container = %q, want system", view.Container())
	}
	if view.NumPackages() != 3 {
		t.Errorf("num packages = %d, want 3", view.NumPackages())
	}

	// Every built package must be reachable by name.
	for _, want := range files.PackageTable.Nodes {
		node, err := view.Lookup(want.PackageName)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", want.PackageName, err)
		}
		if node.PackageID != want.PackageID || node.BooleanOffset != want.BooleanOffset {
			t.Errorf("Lookup(%q) = %+v, want id %d offset %d",
				want.PackageName, node, want.PackageID, want.BooleanOffset)
		}
	}

	if _, err := view.Lookup("com.android.missing"); !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestPackageView_RejectsNewerVersion(t *testing.T) {
	files := buildTestFiles(t)
	buf := encodePackageTable(t, files)
	buf[0] = byte(codec.MaxSupportedVersion + 1)

	if _, err := NewPackageView(buf); err == nil {
		t.Error("expected a newer format version to be rejected")
	}
}

func TestPackageView_RejectsSizeMismatch(t *testing.T) {
	files := buildTestFiles(t)
	buf := encodePackageTable(t, files)

	if _, err := NewPackageView(buf[:len(buf)-1]); err == nil {
		t.Error("expected truncated buffer to be rejected")
	}
	if _, err := NewPackageView(append(buf, 0)); err == nil {
		t.Error("expected oversized buffer to be rejected")
	}
}

func TestFlagView_Lookup(t *testing.T) {
	files := buildTestFiles(t)
	buf, err := files.FlagTable.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	view, err := NewFlagView(buf)
	if err != nil {
		t.Fatalf("NewFlagView failed: %v", err)
	}

	if view.NumFlags() != 4 {
		t.Errorf("num flags = %d, want 4", view.NumFlags())
	}

	for _, want := range files.FlagTable.Nodes {
		node, err := view.Lookup(want.PackageID, want.FlagName)
		if err != nil {
			t.Fatalf("Lookup(%d, %q) failed: %v", want.PackageID, want.FlagName, err)
		}
		if node.FlagIndex != want.FlagIndex || node.FlagType != want.FlagType {
			t.Errorf("Lookup(%d, %q) = %+v, want %+v", want.PackageID, want.FlagName, node, want)
		}
	}

	if _, err := view.Lookup(0, "no_such_flag"); !errors.Is(err, ErrFlagNotFound) {
		t.Errorf("expected ErrFlagNotFound, got %v", err)
	}
	// A real flag name under the wrong package must also miss.
	if _, err := view.Lookup(999, "enable_pairing"); !errors.Is(err, ErrFlagNotFound) {
		t.Errorf("expected ErrFlagNotFound for wrong package, got %v", err)
	}
}

func TestValueView_Bounds(t *testing.T) {
	files := buildTestFiles(t)
	view, err := NewValueView(files.FlagValues.Encode())
	if err != nil {
		t.Fatalf("NewValueView failed: %v", err)
	}

	for i := uint32(0); i < view.NumFlags(); i++ {
		if _, err := view.GetBool(i); err != nil {
			t.Errorf("GetBool(%d) failed: %v", i, err)
		}
	}
	if _, err := view.GetBool(view.NumFlags()); err == nil {
		t.Error("expected out-of-range index to fail")
	}
}

func TestPackageView_RejectsBucketSectionPastEnd(t *testing.T) {
	// A header-only buffer whose offsets point far past the end. The
	// sizing cross-check holds (0 packages -> 7 buckets, 1000+28=1028),
	// so only a bounds check can catch it before a lookup indexes past
	// the buffer.
	header := codec.PackageTableHeader{
		Version:      codec.FormatVersion,
		Container:    "system",
		NumPackages:  0,
		BucketOffset: 1000,
		NodeOffset:   1028,
	}
	header.FileSize = uint32(header.EncodedSize())

	view, err := NewPackageView(header.Encode())
	if err == nil {
		t.Fatal("expected a bucket section past the buffer end to be rejected")
	}
	if view != nil {
		t.Error("expected no view for a rejected buffer")
	}
}

func TestFlagView_RejectsBucketSectionPastEnd(t *testing.T) {
	header := codec.FlagTableHeader{
		Version:      codec.FormatVersion,
		Container:    "system",
		NumFlags:     0,
		BucketOffset: 1000,
		NodeOffset:   1028,
	}
	header.FileSize = uint32(header.EncodedSize())

	if _, err := NewFlagView(header.Encode()); err == nil {
		t.Fatal("expected a bucket section past the buffer end to be rejected")
	}
}
