// Package hashline renders legacy-encrypted ZIP entries in the $pkzip2$
// format read by offline password-recovery tools.
package hashline

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mcdonaldj/zip2hash/internal/legacy"
)

const (
	prefix = "$pkzip2$"
	suffix = "$/pkzip$"

	// algorithm is the classification tag of the first (and only) field group.
	algorithm = 1
	// protocol is the sub-version written after the check-byte count.
	protocol = 2
	// magic is reserved and always zero.
	magic = 0
)

// Record holds every value a hash line carries.
type Record struct {
	Archive string
	Entry   string

	CompressedSize   uint32
	UncompressedSize uint32
	CRC32            uint32
	// PayloadOffset is the payload start relative to the local header.
	PayloadOffset int
	Method        uint16
	Check         [2]byte
	Payload       []byte
}

// FromCandidate builds a Record. Sizes and CRC come from the central
// directory entry, which stays authoritative when the local header holds
// streamed placeholders.
func FromCandidate(archive string, c *legacy.Candidate) Record {
	return Record{
		Archive:          archive,
		Entry:            c.Header.Name,
		CompressedSize:   c.Entry.CompressedSize,
		UncompressedSize: c.Entry.UncompressedSize,
		CRC32:            c.Entry.CRC32,
		PayloadOffset:    c.Header.PayloadOffset(),
		Method:           c.Header.Method,
		Check:            c.Verification,
		Payload:          c.Header.Payload,
	}
}

// Format renders r as a single line without a trailing newline.
func Format(r Record) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(suffix) + 2*len(r.Payload) + 3*len(r.Archive) + 2*len(r.Entry) + 96)

	b.WriteString(r.Archive)
	b.WriteByte('/')
	b.WriteString(r.Entry)
	b.WriteByte(':')
	b.WriteString(prefix)

	fields := []string{
		hexInt(algorithm),
		hexInt(legacy.CheckBytes),
		hexInt(protocol),
		hexInt(magic),
		hexInt(uint64(r.CompressedSize)),
		hexInt(uint64(r.UncompressedSize)),
		fmt.Sprintf("%08x", r.CRC32),
		hexInt(0),
		hexInt(uint64(r.PayloadOffset)),
		hexInt(uint64(r.Method)),
		hexInt(uint64(r.CompressedSize)),
		fmt.Sprintf("%02x%02x", r.Check[0], r.Check[1]),
		hex.EncodeToString(r.Payload),
	}
	b.WriteString(strings.Join(fields, "*"))

	b.WriteString(suffix)
	fmt.Fprintf(&b, ":%s:%s::%s", r.Entry, r.Archive, r.Archive)
	return b.String()
}

// Write writes r as one newline-terminated line.
func Write(w io.Writer, r Record) error {
	_, err := io.WriteString(w, Format(r)+"\n")
	return err
}

func hexInt(v uint64) string {
	return strconv.FormatUint(v, 16)
}
