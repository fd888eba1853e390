// Package zipfmt decodes the three ZIP record types needed to locate an
// entry's raw payload: the end-of-central-directory trailer, the central
// directory entries and the local file headers.
package zipfmt

import "encoding/binary"

// Record signatures, little endian.
const (
	trailerSignature   = 0x06054b50 // "PK\x05\x06"
	directorySignature = 0x02014b50 // "PK\x01\x02"
	localSignature     = 0x04034b50 // "PK\x03\x04"
)

// Fixed record lengths.
const (
	TrailerLen   = 22
	DirectoryLen = 46
	LocalLen     = 30

	maxCommentLen = 0xffff
)

// Uint16 decodes a little-endian uint16 from the first two bytes of b.
func Uint16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// Uint32 decodes a little-endian uint32 from the first four bytes of b.
func Uint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// readBuf walks a fixed-layout record front to back.
type readBuf []byte

func (b *readBuf) uint16() uint16 {
	v := Uint16(*b)
	*b = (*b)[2:]
	return v
}

func (b *readBuf) uint32() uint32 {
	v := Uint32(*b)
	*b = (*b)[4:]
	return v
}

func (b *readBuf) skip(n int) {
	*b = (*b)[n:]
}

func (b *readBuf) sub(n int) readBuf {
	b2 := (*b)[:n]
	*b = (*b)[n:]
	return b2
}
