package zipfmt

import (
	"bytes"
	"io"
)

// LocalHeader is an entry's local file header together with the raw
// payload that follows it.
type LocalHeader struct {
	// VersionNeeded keeps only the low byte, matching DirectoryEntry.
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

	Name  string
	Extra []byte

	// Offset is the absolute position of the header.
	Offset int64

	// Payload holds exactly the directory entry's compressed size in bytes.
	Payload []byte
}

// PayloadOffset is the payload start relative to the header start.
func (h *LocalHeader) PayloadOffset() int {
	return LocalLen + int(h.NameLength) + int(h.ExtraLength)
}

// Streamed reports whether flag bit 3 is set, meaning CRC and sizes in the
// local header are placeholders for a trailing data descriptor.
func (h *LocalHeader) Streamed() bool {
	return h.Flags&FlagDataDescriptor != 0
}

// General purpose flag bits.
const (
	FlagEncrypted        = 0x0001
	FlagDataDescriptor   = 0x0008
	FlagStrongEncryption = 0x0040
)

// ReadLocal reads the local header of e and the compressed payload after it.
// It consumes exactly 30+n+m+e.CompressedSize bytes, where n and m are the
// local header's own name and extra lengths.
func ReadLocal(r io.ReadSeeker, e DirectoryEntry) (*LocalHeader, error) {
	h, err := ReadLocalHeader(r, e)
	if err != nil {
		return nil, err
	}
	if err := h.ReadPayload(r, e); err != nil {
		return nil, err
	}
	return h, nil
}

// ReadLocalHeader reads the local header of e, its name and its extra field,
// leaving Payload nil.
func ReadLocalHeader(r io.ReadSeeker, e DirectoryEntry) (*LocalHeader, error) {
	off := int64(e.LocalHeaderOffset)
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return nil, ioFailure(StageLocal, off, "local header", err)
	}

	fixed := make([]byte, LocalLen)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, ioFailure(StageLocal, off, "local header", err)
	}
	b := readBuf(fixed)
	if sig := b.uint32(); sig != localSignature {
		return nil, malformed(StageLocal, off, "signature %08x, want %08x", sig, localSignature)
	}
	h := &LocalHeader{Offset: off}
	h.VersionNeeded = b.uint16() & 0xff
	h.Flags = b.uint16()
	h.Method = b.uint16()
	h.ModTime = b.uint16()
	h.ModDate = b.uint16()
	h.CRC32 = b.uint32()
	h.CompressedSize = b.uint32()
	h.UncompressedSize = b.uint32()
	h.NameLength = b.uint16()
	h.ExtraLength = b.uint16()

	n, m := int(h.NameLength), int(h.ExtraLength)
	vars := make([]byte, n+m)
	if _, err := io.ReadFull(r, vars); err != nil {
		return nil, ioFailure(StageLocal, off, "local name and extra field", err)
	}
	h.Name = string(vars[:n])
	h.Extra = vars[n:]
	return h, nil
}

// ReadPayload reads e.CompressedSize bytes starting right after the header.
func (h *LocalHeader) ReadPayload(r io.ReadSeeker, e DirectoryEntry) error {
	start := h.Offset + int64(h.PayloadOffset())
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return ioFailure(StageLocal, h.Offset, "payload", err)
	}

	// The buffer grows with the bytes actually read, not the declared size.
	var payload bytes.Buffer
	if _, err := io.CopyN(&payload, r, int64(e.CompressedSize)); err != nil {
		return ioFailure(StageLocal, h.Offset, "payload", err)
	}
	h.Payload = payload.Bytes()
	return nil
}
