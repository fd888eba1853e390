// Package legacy decides which ZIP entries use the traditional PKWARE
// stream cipher and derives the values a password-recovery tool needs to
// reject wrong guesses cheaply.
package legacy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcdonaldj/zip2hash/internal/zipfmt"
)

// ErrUnsupportedEntry marks an entry that is not a traditional-cipher
// candidate. It is an outcome, not a failure: callers skip the entry.
var ErrUnsupportedEntry = errors.New("not a legacy-encrypted entry")

// MethodAES is the compression method WinZip AES writers store; the real
// method lives in the 0x9901 extra field.
const MethodAES = 99

// CheckBytes is the number of verification bytes carried in a hash line.
const CheckBytes = 2

// legacyVersions are the version-needed values, in tenths, that writers use
// for traditionally encrypted entries.
var legacyVersions = map[uint16]bool{10: true, 20: true, 45: true}

// Candidate is a classified legacy-encrypted entry.
type Candidate struct {
	Entry  zipfmt.DirectoryEntry
	Header *zipfmt.LocalHeader

	// Verification holds the two check bytes, high byte first.
	Verification [2]byte
	// TimeCheck is set when Verification came from the modification time.
	TimeCheck bool

	ExtraIDs []uint16
	// Strong is set when flag bit 6 (strong encryption) is also present.
	Strong bool
}

// IsCandidate reports whether flags and version identify the traditional
// cipher: bit 0 set and version 1.0, 2.0 or 4.5.
func IsCandidate(flags, versionNeeded uint16) bool {
	return flags&zipfmt.FlagEncrypted != 0 && legacyVersions[versionNeeded&0xff]
}

// VerificationBytes derives the check bytes: the modification time when flag
// bit 3 is set, otherwise the two high bytes of the CRC.
func VerificationBytes(flags, modTime uint16, crc uint32) [2]byte {
	if flags&zipfmt.FlagDataDescriptor != 0 {
		return [2]byte{byte(modTime >> 8), byte(modTime)}
	}
	return [2]byte{byte(crc >> 24), byte(crc >> 16)}
}

// Classify checks h against the traditional-cipher rules. Entries that do
// not qualify return an error wrapping ErrUnsupportedEntry; a bad extra field
// returns one wrapping ErrMalformedExtraField.
func Classify(e zipfmt.DirectoryEntry, h *zipfmt.LocalHeader) (*Candidate, error) {
	if h.Flags&zipfmt.FlagEncrypted == 0 {
		return nil, fmt.Errorf("%w: not encrypted", ErrUnsupportedEntry)
	}
	if !IsCandidate(h.Flags, h.VersionNeeded) {
		return nil, fmt.Errorf("%w: version needed %s", ErrUnsupportedEntry, Version(h.VersionNeeded))
	}
	if h.Method == MethodAES {
		return nil, fmt.Errorf("%w: winzip aes", ErrUnsupportedEntry)
	}

	ids, err := WalkExtra(h.Extra)
	if err != nil {
		return nil, err
	}

	return &Candidate{
		Entry:        e,
		Header:       h,
		Verification: VerificationBytes(h.Flags, h.ModTime, h.CRC32),
		TimeCheck:    h.Streamed(),
		ExtraIDs:     ids,
		Strong:       h.Flags&zipfmt.FlagStrongEncryption != 0,
	}, nil
}

// Version formats a version-needed value as major.minor.
func Version(v uint16) string {
	return fmt.Sprintf("%d.%d", v/10, v%10)
}

// CheckString renders the verification bytes as four lowercase hex digits.
func (c *Candidate) CheckString() string {
	return fmt.Sprintf("%02x%02x", c.Verification[0], c.Verification[1])
}

// Trace describes the candidate for diagnostics.
func (c *Candidate) Trace(archive string) string {
	var b strings.Builder
	h := c.Header
	fmt.Fprintf(&b, "ver %s ", Version(h.VersionNeeded))
	for _, id := range c.ExtraIDs {
		fmt.Fprintf(&b, "efh %x ", id)
	}
	ts := ""
	if c.TimeCheck {
		ts = "TS_chk, "
	}
	fmt.Fprintf(&b, "%s/%s PKZIP Encr: %db chk, %scmplen=%d, decmplen=%d, crc=%08x, ts=%04x, cs=%s, type=%d",
		archive, h.Name, CheckBytes, ts,
		c.Entry.CompressedSize, c.Entry.UncompressedSize, c.Entry.CRC32,
		h.ModTime, c.CheckString(), h.Method)
	if c.Strong {
		b.WriteString(", strong")
	}
	return b.String()
}
