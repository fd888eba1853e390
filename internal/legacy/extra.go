package legacy

import (
	"errors"
	"fmt"

	"github.com/mcdonaldj/zip2hash/internal/zipfmt"
)

// ErrMalformedExtraField reports an extra-field sub-record that runs past
// the end of the field.
var ErrMalformedExtraField = errors.New("malformed extra field")

// Extra-field header IDs worth naming in diagnostics.
const (
	ExtraZip64     = 0x0001
	ExtraNTFS      = 0x000a
	ExtraTimestamp = 0x5455
	ExtraUnixUID   = 0x7875
	ExtraAES       = 0x9901
)

var extraNames = map[uint16]string{
	ExtraZip64:     "zip64",
	ExtraNTFS:      "ntfs",
	ExtraTimestamp: "extended timestamp",
	ExtraUnixUID:   "unix uid/gid",
	ExtraAES:       "winzip aes",
}

// ExtraName returns a short description of a header ID, or "" if unknown.
func ExtraName(id uint16) string {
	return extraNames[id]
}

// WalkExtra returns the header IDs of every sub-record in extra. Each
// sub-record is a 2-byte ID, a 2-byte data length and that many data bytes.
func WalkExtra(extra []byte) ([]uint16, error) {
	var ids []uint16
	for off := 0; off < len(extra); {
		if off+4 > len(extra) {
			return ids, fmt.Errorf("%w: %d-byte sub-record header at offset %d", ErrMalformedExtraField, len(extra)-off, off)
		}
		id := zipfmt.Uint16(extra[off:])
		size := int(zipfmt.Uint16(extra[off+2:]))
		ids = append(ids, id)
		off += 4 + size
		if off > len(extra) {
			return ids, fmt.Errorf("%w: sub-record %#04x ends at %d, field is %d bytes", ErrMalformedExtraField, id, off, len(extra))
		}
	}
	return ids, nil
}
