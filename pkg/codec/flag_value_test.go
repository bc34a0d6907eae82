package codec

import (
	"math"
	"testing"
)

func createTestFlagValueList() *FlagValueList {
	booleans := []bool{true, false, true, true, false, false, true, false}
	header := FlagValueListHeader{
		Version:   FormatVersion,
		Container: "mockup",
		NumFlags:  uint32(len(booleans)),
	}
	header.BooleanOffset = uint32(header.EncodedSize())
	header.FileSize = header.BooleanOffset + header.NumFlags
	return &FlagValueList{Header: header, Booleans: booleans}
}

func TestFlagValueList_RoundTrip(t *testing.T) {
	list := createTestFlagValueList()

	encoded := list.Encode()
	if uint32(len(encoded)) != list.Header.FileSize {
		t.Errorf("encoded length %d != header file size %d", len(encoded), list.Header.FileSize)
	}

	decoded, err := DecodeFlagValueList(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Header != list.Header {
		t.Errorf("header mismatch: got %+v, want %+v", decoded.Header, list.Header)
	}
	if len(decoded.Booleans) != len(list.Booleans) {
		t.Fatalf("value count mismatch: got %d, want %d", len(decoded.Booleans), len(list.Booleans))
	}
	for i := range list.Booleans {
		if decoded.Booleans[i] != list.Booleans[i] {
			t.Errorf("value %d mismatch: got %v, want %v", i, decoded.Booleans[i], list.Booleans[i])
		}
	}
}

func TestFlagValueList_TruncationSafety(t *testing.T) {
	encoded := createTestFlagValueList().Encode()
	for cut := 0; cut < len(encoded); cut++ {
		if _, err := DecodeFlagValueList(encoded[:cut]); err == nil {
			t.Fatalf("decode of %d-byte prefix (of %d) succeeded, want parse failure", cut, len(encoded))
		}
	}
}

func TestFlagValueList_RejectsNonBooleanBytes(t *testing.T) {
	encoded := createTestFlagValueList().Encode()
	encoded[len(encoded)-1] = 0x7F
	if _, err := DecodeFlagValueList(encoded); err == nil {
		t.Error("expected decode to reject a value byte that is not 0 or 1")
	}
}

func TestFlagValueList_DecodeBoundsClaimedCount(t *testing.T) {
	// A header-only buffer claiming four billion values must fail on the
	// count bound, not allocate for them.
	header := FlagValueListHeader{
		Version:   FormatVersion,
		Container: "system",
		NumFlags:  math.MaxUint32,
	}
	header.BooleanOffset = uint32(header.EncodedSize())
	header.FileSize = header.BooleanOffset

	if _, err := DecodeFlagValueList(header.Encode()); err == nil {
		t.Fatal("expected a value count exceeding the buffer to be rejected")
	}
}
