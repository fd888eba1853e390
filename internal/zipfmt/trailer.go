package zipfmt

import (
	"fmt"
	"io"
)

// CommentPolicy selects how the trailer is located.
type CommentPolicy string

const (
	// CommentStrict expects the trailer in the last 22 bytes and rejects
	// archives that carry a trailing comment.
	CommentStrict CommentPolicy = "strict"
	// CommentScan searches backward for a trailer whose comment ends
	// exactly at end of stream.
	CommentScan CommentPolicy = "scan"
)

// ParseCommentPolicy maps a config value to a CommentPolicy. The empty
// string selects CommentStrict.
func ParseCommentPolicy(s string) (CommentPolicy, error) {
	switch CommentPolicy(s) {
	case "", CommentStrict:
		return CommentStrict, nil
	case CommentScan:
		return CommentScan, nil
	}
	return "", fmt.Errorf("unknown comment policy %q (want %q or %q)", s, CommentStrict, CommentScan)
}

// Trailer is the end-of-central-directory record.
type Trailer struct {
	DiskNumber      uint16
	DirectoryDisk   uint16
	EntriesOnDisk   uint16
	TotalEntries    uint16
	DirectorySize   uint32
	DirectoryOffset uint32
	CommentLength   uint16

	// Offset is the absolute position of the record's signature.
	Offset int64
}

// ReadTrailer locates and decodes the trailer of an archive of the given size.
func ReadTrailer(r io.ReadSeeker, size int64, policy CommentPolicy) (*Trailer, error) {
	if size < TrailerLen {
		return nil, &ParseError{
			Stage: StageTrailer,
			Err:   fmt.Errorf("%w: %d bytes is shorter than a trailer record", ErrTruncatedArchive, size),
		}
	}

	var (
		buf []byte
		off int64
		err error
	)
	switch policy {
	case CommentScan:
		buf, off, err = scanTrailer(r, size)
	default:
		buf, off, err = fixedTrailer(r, size)
	}
	if err != nil {
		return nil, err
	}

	b := readBuf(buf[4:])
	t := &Trailer{
		DiskNumber:      b.uint16(),
		DirectoryDisk:   b.uint16(),
		EntriesOnDisk:   b.uint16(),
		TotalEntries:    b.uint16(),
		DirectorySize:   b.uint32(),
		DirectoryOffset: b.uint32(),
		CommentLength:   b.uint16(),
		Offset:          off,
	}

	if policy != CommentScan && t.CommentLength != 0 {
		return nil, malformed(StageTrailer, off, "declares %d comment bytes past end of archive", t.CommentLength)
	}
	if t.TotalEntries == 0xffff || t.DirectorySize == 0xffffffff || t.DirectoryOffset == 0xffffffff {
		return nil, malformed(StageTrailer, off, "zip64 archives are not supported")
	}
	if t.DiskNumber != 0 || t.DirectoryDisk != 0 || t.EntriesOnDisk != t.TotalEntries {
		return nil, malformed(StageTrailer, off, "multi-disk archives are not supported")
	}
	if end := int64(t.DirectoryOffset) + int64(t.DirectorySize); end > off {
		return nil, malformed(StageTrailer, off,
			"directory [%#x, %#x) overlaps the trailer", t.DirectoryOffset, end)
	}
	return t, nil
}

func fixedTrailer(r io.ReadSeeker, size int64) ([]byte, int64, error) {
	off := size - TrailerLen
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return nil, 0, ioFailure(StageTrailer, off, "trailer", err)
	}
	buf := make([]byte, TrailerLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, 0, ioFailure(StageTrailer, off, "trailer", err)
	}
	if sig := Uint32(buf); sig != trailerSignature {
		return nil, 0, malformed(StageTrailer, off, "signature %08x, want %08x", sig, trailerSignature)
	}
	return buf, off, nil
}

func scanTrailer(r io.ReadSeeker, size int64) ([]byte, int64, error) {
	n := int64(TrailerLen + maxCommentLen)
	if n > size {
		n = size
	}
	start := size - n
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, 0, ioFailure(StageTrailer, start, "trailer search window", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, 0, ioFailure(StageTrailer, start, "trailer search window", err)
	}
	p := findTrailer(buf)
	if p < 0 {
		return nil, 0, malformed(StageTrailer, start, "trailer signature not found")
	}
	return buf[p : p+TrailerLen], start + int64(p), nil
}

// findTrailer returns the index of the last trailer signature in b whose
// comment ends at the end of b, or -1.
func findTrailer(b []byte) int {
	for i := len(b) - TrailerLen; i >= 0; i-- {
		if b[i] == 'P' && b[i+1] == 'K' && b[i+2] == 0x05 && b[i+3] == 0x06 {
			n := int(Uint16(b[i+TrailerLen-2:]))
			if i+TrailerLen+n == len(b) {
				return i
			}
		}
	}
	return -1
}
