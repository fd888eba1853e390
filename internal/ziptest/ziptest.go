// Package ziptest builds ZIP archives byte by byte for tests, with full
// control over flags, versions and extra fields that archive/zip hides.
package ziptest

import (
	"bytes"
	"encoding/binary"
)

// Entry describes one archive member. CompressedSize is len(Payload).
type Entry struct {
	Name             string
	VersionMadeBy    uint16
	VersionNeeded    uint16
	Flags            uint16
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	UncompressedSize uint32
	Payload          []byte

	// Extra is written to both headers unless LocalExtra is set.
	Extra      []byte
	LocalExtra []byte
	Comment    string
}

// Archive is an ordered set of entries plus an optional trailer comment.
type Archive struct {
	Entries []Entry
	Comment string
}

// Layout records where Build placed each record.
type Layout struct {
	LocalOffsets    []int64
	DirectoryOffset int64
	DirectorySize   int64
	TrailerOffset   int64
}

// Build serialises a. When an entry has flag bit 3 set, the local header
// carries zero CRC and sizes, as streaming writers produce.
func Build(a Archive) ([]byte, Layout) {
	var buf bytes.Buffer
	var lay Layout

	for _, e := range a.Entries {
		lay.LocalOffsets = append(lay.LocalOffsets, int64(buf.Len()))
		extra := e.Extra
		if e.LocalExtra != nil {
			extra = e.LocalExtra
		}
		crc, csize, usize := e.CRC32, uint32(len(e.Payload)), e.UncompressedSize
		if e.Flags&0x0008 != 0 {
			crc, csize, usize = 0, 0, 0
		}
		put32(&buf, 0x04034b50)
		put16(&buf, e.VersionNeeded, e.Flags, e.Method, e.ModTime, e.ModDate)
		put32(&buf, crc, csize, usize)
		put16(&buf, uint16(len(e.Name)), uint16(len(extra)))
		buf.WriteString(e.Name)
		buf.Write(extra)
		buf.Write(e.Payload)
	}

	lay.DirectoryOffset = int64(buf.Len())
	for i, e := range a.Entries {
		put32(&buf, 0x02014b50)
		put16(&buf, e.VersionMadeBy, e.VersionNeeded, e.Flags, e.Method, e.ModTime, e.ModDate)
		put32(&buf, e.CRC32, uint32(len(e.Payload)), e.UncompressedSize)
		put16(&buf, uint16(len(e.Name)), uint16(len(e.Extra)), uint16(len(e.Comment)), 0, 0)
		put32(&buf, 0, uint32(lay.LocalOffsets[i]))
		buf.WriteString(e.Name)
		buf.Write(e.Extra)
		buf.WriteString(e.Comment)
	}
	lay.DirectorySize = int64(buf.Len()) - lay.DirectoryOffset

	lay.TrailerOffset = int64(buf.Len())
	n := uint16(len(a.Entries))
	put32(&buf, 0x06054b50)
	put16(&buf, 0, 0, n, n)
	put32(&buf, uint32(lay.DirectorySize), uint32(lay.DirectoryOffset))
	put16(&buf, uint16(len(a.Comment)))
	buf.WriteString(a.Comment)

	return buf.Bytes(), lay
}

// Bytes is Build without the layout.
func Bytes(a Archive) []byte {
	b, _ := Build(a)
	return b
}

// ExtraRecord encodes one extra-field sub-record.
func ExtraRecord(id uint16, data []byte) []byte {
	var buf bytes.Buffer
	put16(&buf, id, uint16(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func put16(buf *bytes.Buffer, vs ...uint16) {
	for _, v := range vs {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
}

func put32(buf *bytes.Buffer, vs ...uint32) {
	for _, v := range vs {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
}
