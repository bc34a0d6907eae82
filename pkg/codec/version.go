package codec

// FormatVersion is the table format version written by this library.
const FormatVersion uint32 = 1

// MaxSupportedVersion is the newest format version this library can read.
const MaxSupportedVersion uint32 = 1

// NoNextNode is the chain-tail sentinel for a node's next offset, and the
// empty marker for a bucket slot. Zero can never be a real node offset:
// the node array begins strictly after the header and the bucket array,
// both of non-zero size.
const NoNextNode uint32 = 0

// PeekVersion reads the format version from the first 4 bytes of any
// encoded table without decoding the rest.
func PeekVersion(buf []byte) (uint32, error) {
	if len(buf) < 4 {
		return 0, parseFail(nil, "version: buffer holds %d bytes, need 4", len(buf))
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}
