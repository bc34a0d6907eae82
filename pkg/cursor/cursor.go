// Package cursor provides the primitive little-endian readers and writers
// shared by every flagstore table codec.
//
// A Reader walks a byte buffer with a forward-only offset; every read is
// bounds-checked and advances the offset by exactly the bytes it consumed,
// so a caller's cursor always points at the next unread byte. A Writer
// appends the symmetric encodings to a growing buffer. Strings are
// length-prefixed with a 4-byte count of raw bytes, no terminator.
package cursor

import (
	"encoding/binary"
	"fmt"
)

// Reader reads little-endian primitives from a byte buffer.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// NewReaderAt returns a Reader positioned at off within buf.
func NewReaderAt(buf []byte, off int) *Reader {
	return &Reader{buf: buf, off: off}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, fmt.Errorf("read uint8 at offset %d: buffer exhausted (len %d)", r.off, len(r.buf))
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// Uint16 reads a little-endian 16-bit unsigned integer.
func (r *Reader) Uint16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, fmt.Errorf("read uint16 at offset %d: buffer exhausted (len %d)", r.off, len(r.buf))
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// Uint32 reads a little-endian 32-bit unsigned integer.
func (r *Reader) Uint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, fmt.Errorf("read uint32 at offset %d: buffer exhausted (len %d)", r.off, len(r.buf))
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// String reads a 4-byte length prefix followed by that many raw bytes.
func (r *Reader) String() (string, error) {
	n, err := r.Uint32()
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	if uint64(n) > uint64(r.Remaining()) {
		return "", fmt.Errorf("read string at offset %d: declared length %d exceeds remaining %d", r.off, n, r.Remaining())
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

// Skip advances the cursor by n bytes without reading them.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Remaining() {
		return fmt.Errorf("skip %d bytes at offset %d: buffer exhausted (len %d)", n, r.off, len(r.buf))
	}
	r.off += n
	return nil
}

// Writer appends little-endian primitives to a byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Uint8 appends a single byte.
func (w *Writer) Uint8(v uint8) {
	w.buf = append(w.buf, v)
}

// Uint16 appends a little-endian 16-bit unsigned integer.
func (w *Writer) Uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// Uint32 appends a little-endian 32-bit unsigned integer.
func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// String appends a 4-byte length prefix followed by the raw bytes of s.
func (w *Writer) String(s string) {
	w.Uint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer. The Writer retains ownership;
// callers must not write to the Writer after taking its bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// StringSize returns the encoded size of s: 4 bytes of length prefix plus
// the raw bytes.
func StringSize(s string) int {
	return 4 + len(s)
}
