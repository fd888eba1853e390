package zipfmt

import (
	"io"
	"strings"
)

// DirectoryEntry is one central directory record.
type DirectoryEntry struct {
	VersionMadeBy uint16
	// VersionNeeded keeps only the low byte; the high byte names the host OS.
	VersionNeeded    uint16
	Flags            uint16
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	NameLength       uint16
	ExtraLength      uint16
	CommentLength    uint16

	// LocalHeaderOffset is the absolute offset of the entry's local header.
	LocalHeaderOffset uint32

	Name  string
	Extra []byte

	// Offset is the absolute position of this record.
	Offset int64
}

// NameOffset is the position of the file name relative to the record start.
func (e DirectoryEntry) NameOffset() int { return DirectoryLen }

// RecordLen is the number of directory bytes this record occupies.
func (e DirectoryEntry) RecordLen() int {
	return DirectoryLen + int(e.NameLength) + int(e.ExtraLength) + int(e.CommentLength)
}

// IsDir reports whether the entry names a directory.
func (e DirectoryEntry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// ReadDirectory decodes every record of the central directory described by t.
// The declared directory span must be consumed exactly by TotalEntries records.
func ReadDirectory(r io.ReadSeeker, t *Trailer) ([]DirectoryEntry, error) {
	base := int64(t.DirectoryOffset)
	if _, err := r.Seek(base, io.SeekStart); err != nil {
		return nil, ioFailure(StageDirectory, base, "central directory", err)
	}
	buf := make([]byte, t.DirectorySize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, ioFailure(StageDirectory, base, "central directory", err)
	}

	entries := make([]DirectoryEntry, 0, t.TotalEntries)
	pos := 0
	for i := 0; i < int(t.TotalEntries); i++ {
		e, err := decodeDirectoryEntry(buf[pos:], base+int64(pos))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		pos += e.RecordLen()
	}
	if pos != len(buf) {
		return nil, malformed(StageDirectory, base+int64(pos),
			"%d records used %d of %d declared directory bytes", t.TotalEntries, pos, len(buf))
	}
	return entries, nil
}

// decodeDirectoryEntry decodes the record at the start of buf; off is its
// absolute position.
func decodeDirectoryEntry(buf []byte, off int64) (DirectoryEntry, error) {
	if len(buf) < DirectoryLen {
		return DirectoryEntry{}, malformed(StageDirectory, off,
			"record needs %d fixed bytes, %d left in directory", DirectoryLen, len(buf))
	}
	b := readBuf(buf)
	if sig := b.uint32(); sig != directorySignature {
		return DirectoryEntry{}, malformed(StageDirectory, off, "signature %08x, want %08x", sig, directorySignature)
	}
	e := DirectoryEntry{Offset: off}
	e.VersionMadeBy = b.uint16()
	e.VersionNeeded = b.uint16() & 0xff
	e.Flags = b.uint16()
	e.Method = b.uint16()
	e.ModTime = b.uint16()
	e.ModDate = b.uint16()
	e.CRC32 = b.uint32()
	e.CompressedSize = b.uint32()
	e.UncompressedSize = b.uint32()
	e.NameLength = b.uint16()
	e.ExtraLength = b.uint16()
	e.CommentLength = b.uint16()
	b.skip(2 + 2 + 4) // disk number start, internal attrs, external attrs
	e.LocalHeaderOffset = b.uint32()

	if need := e.RecordLen(); need > len(buf) {
		return DirectoryEntry{}, malformed(StageDirectory, off,
			"record declares %d bytes, %d left in directory", need, len(buf))
	}
	e.Name = string(b.sub(int(e.NameLength)))
	e.Extra = append([]byte(nil), b.sub(int(e.ExtraLength))...)
	return e, nil
}
