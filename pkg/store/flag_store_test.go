package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fagerli/flagstore/pkg/codec"
)

func openTestStore(t *testing.T) *FlagStore {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "flagstore_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	files := buildTestFiles(t)
	if err := files.WriteDir(tmpDir); err != nil {
		t.Fatalf("WriteDir failed: %v", err)
	}

	store, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return store
}

func TestFlagStore_GetBool(t *testing.T) {
	store := openTestStore(t)

	testCases := []struct {
		pkg  string
		flag string
		want bool
	}{
		{"com.android.media", "enable_codec_v2", true},
		{"com.android.media", "use_hw_decode", false},
		{"com.android.adbd", "enable_pairing", true},
		{"com.android.netd", "use_new_stack", false},
	}

	for _, tc := range testCases {
		got, err := store.GetBool(tc.pkg, tc.flag)
		if err != nil {
			t.Fatalf("GetBool(%q, %q) failed: %v", tc.pkg, tc.flag, err)
		}
		if got != tc.want {
			t.Errorf("GetBool(%q, %q) = %v, want %v", tc.pkg, tc.flag, got, tc.want)
		}
	}
}

func TestFlagStore_GetFlag(t *testing.T) {
	store := openTestStore(t)

	info, err := store.GetFlag("com.android.media", "use_hw_decode")
	if err != nil {
		t.Fatalf("GetFlag failed: %v", err)
	}
	if info.Package != "com.android.media" || info.Name != "use_hw_decode" {
		t.Errorf("unexpected identity: %+v", info)
	}
	if info.Type != codec.ReadOnlyBoolean.String() {
		t.Errorf("type = %q, want %q", info.Type, codec.ReadOnlyBoolean)
	}
	if info.Value {
		t.Error("use_hw_decode should default to false")
	}
}

func TestFlagStore_Misses(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.GetPackage("com.android.missing"); !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("expected ErrPackageNotFound, got %v", err)
	}
	if _, err := store.GetBool("com.android.media", "no_such_flag"); !errors.Is(err, ErrFlagNotFound) {
		t.Errorf("expected ErrFlagNotFound, got %v", err)
	}
	// A flag that exists in another package must not leak across.
	if _, err := store.GetBool("com.android.netd", "enable_pairing"); !errors.Is(err, ErrFlagNotFound) {
		t.Errorf("expected ErrFlagNotFound, got %v", err)
	}
}

func TestFlagStore_Stats(t *testing.T) {
	store := openTestStore(t)

	stats := store.Stats()
	if stats.Container != "system" {
		t.Errorf("container = %q", stats.Container)
	}
	if stats.NumPackages != 3 {
		t.Errorf("num packages = %d, want 3", stats.NumPackages)
	}
	if stats.NumFlags != 4 {
		t.Errorf("num flags = %d, want 4", stats.NumFlags)
	}
}

func TestFlagStore_ConcurrentReaders(t *testing.T) {
	store := openTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v, err := store.GetBool("com.android.adbd", "enable_pairing")
				if err != nil || !v {
					t.Errorf("concurrent GetBool = (%v, %v)", v, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestOpen_MissingFiles(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "flagstore_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if _, err := Open(tmpDir); err == nil {
		t.Error("expected Open of empty directory to fail")
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "flagstore_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	files := buildTestFiles(t)
	if err := files.WriteDir(tmpDir); err != nil {
		t.Fatalf("WriteDir failed: %v", err)
	}

	// Truncate the package table; the damage must surface at open time.
	path := filepath.Join(tmpDir, codec.PackageMapFile)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)/2], 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(tmpDir); err == nil {
		t.Error("expected Open of corrupt store to fail")
	}
}
