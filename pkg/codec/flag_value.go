package codec

import (
	"github.com/fagerli/flagstore/pkg/cursor"
)

// FlagValueListHeader is the fixed metadata at the front of a flag value
// list. BooleanOffset is where the boolean array begins, relative to the
// start of the file.
type FlagValueListHeader struct {
	Version       uint32
	Container     string
	FileSize      uint32
	NumFlags      uint32
	BooleanOffset uint32
}

// EncodedSize returns the number of bytes Encode produces.
func (h *FlagValueListHeader) EncodedSize() int {
	return 16 + cursor.StringSize(h.Container)
}

// Encode serializes the header.
func (h *FlagValueListHeader) Encode() []byte {
	w := cursor.NewWriter()
	w.Uint32(h.Version)
	w.String(h.Container)
	w.Uint32(h.FileSize)
	w.Uint32(h.NumFlags)
	w.Uint32(h.BooleanOffset)
	return w.Bytes()
}

// DecodeFlagValueListHeader deserializes a header from the front of buf
// and returns the bytes consumed.
func DecodeFlagValueListHeader(buf []byte) (*FlagValueListHeader, int, error) {
	r := cursor.NewReader(buf)
	h := &FlagValueListHeader{}
	var err error
	if h.Version, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag value list header: version")
	}
	if h.Container, err = r.String(); err != nil {
		return nil, 0, parseFail(err, "flag value list header: container")
	}
	if h.FileSize, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag value list header: file size")
	}
	if h.NumFlags, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag value list header: flag count")
	}
	if h.BooleanOffset, err = r.Uint32(); err != nil {
		return nil, 0, parseFail(err, "flag value list header: boolean offset")
	}
	return h, r.Offset(), nil
}

// FlagValueList is the boolean value store the package table's
// BooleanOffset fields index into: one byte per flag, in flag index order.
type FlagValueList struct {
	Header   FlagValueListHeader
	Booleans []bool
}

// Encode serializes the list: header, then one byte per boolean.
func (l *FlagValueList) Encode() []byte {
	w := cursor.NewWriter()
	w.Raw(l.Header.Encode())
	for _, v := range l.Booleans {
		if v {
			w.Uint8(1)
		} else {
			w.Uint8(0)
		}
	}
	return w.Bytes()
}

// DecodeFlagValueList deserializes a full value list. Value bytes other
// than 0 and 1 are treated as corruption, not silently coerced.
func DecodeFlagValueList(buf []byte) (*FlagValueList, error) {
	header, consumed, err := DecodeFlagValueListHeader(buf)
	if err != nil {
		return nil, err
	}
	r := cursor.NewReaderAt(buf, consumed)
	if int64(header.NumFlags) > int64(r.Remaining()) {
		return nil, parseFail(nil, "flag value list: %d values cannot fit in %d remaining bytes",
			header.NumFlags, r.Remaining())
	}
	booleans := make([]bool, 0, header.NumFlags)
	for i := uint32(0); i < header.NumFlags; i++ {
		b, err := r.Uint8()
		if err != nil {
			return nil, parseFail(err, "flag value list: value %d of %d", i, header.NumFlags)
		}
		if b > 1 {
			return nil, parseFail(nil, "flag value list: value %d of %d: byte %#x is not a boolean", i, header.NumFlags, b)
		}
		booleans = append(booleans, b == 1)
	}
	return &FlagValueList{Header: *header, Booleans: booleans}, nil
}
