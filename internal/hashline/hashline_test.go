package hashline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mcdonaldj/zip2hash/internal/legacy"
	"github.com/mcdonaldj/zip2hash/internal/zipfmt"
)

func TestFormat(t *testing.T) {
	r := Record{
		Archive:          "archive.zip",
		Entry:            "secret.txt",
		CompressedSize:   0x40,
		UncompressedSize: 0x100,
		CRC32:            0xdeadbeef,
		PayloadOffset:    0x28,
		Method:           8,
		Check:            [2]byte{0xde, 0xad},
		Payload:          []byte{0x00, 0x0f, 0xa0, 0xff},
	}
	want := "archive.zip/secret.txt:$pkzip2$1*2*2*0*40*100*deadbeef*0*28*8*40*dead*000fa0ff$/pkzip$:secret.txt:archive.zip::archive.zip"
	if got := Format(r); got != want {
		t.Errorf("Format =\n  %s\nexpected\n  %s", got, want)
	}
}

func TestFormatPadding(t *testing.T) {
	r := Record{
		Archive: "a.zip",
		Entry:   "b",
		CRC32:   0x0000ab01,
		Check:   [2]byte{0x00, 0x0a},
	}
	got := Format(r)
	if !strings.Contains(got, "*0000ab01*") {
		t.Errorf("CRC not padded to 8 digits: %s", got)
	}
	if !strings.Contains(got, "*000a*$/pkzip$") {
		t.Errorf("check bytes or empty payload wrong: %s", got)
	}
	if !strings.HasPrefix(got, "a.zip/b:$pkzip2$1*2*2*0*0*0*") {
		t.Errorf("zero sizes not rendered as 0: %s", got)
	}
}

func TestFormatLowercase(t *testing.T) {
	r := Record{Archive: "A.ZIP", Entry: "X", CompressedSize: 0xABCDEF, CRC32: 0xABCDEF01, Payload: []byte{0xAB}}
	got := Format(r)
	body := got[strings.Index(got, "$pkzip2$"):strings.Index(got, "$/pkzip$")]
	if body != strings.ToLower(body) {
		t.Errorf("hex fields not lowercase: %s", body)
	}
}

func TestFromCandidate(t *testing.T) {
	h := &zipfmt.LocalHeader{
		Name:        "secret.txt",
		NameLength:  10,
		ExtraLength: 9,
		Method:      8,
		Flags:       0x0009,
		Payload:     []byte{1, 2, 3},
	}
	c := &legacy.Candidate{
		Entry:        zipfmt.DirectoryEntry{CRC32: 0xcafef00d, CompressedSize: 3, UncompressedSize: 7},
		Header:       h,
		Verification: [2]byte{0x5a, 0x3c},
	}
	r := FromCandidate("x.zip", c)
	if r.CRC32 != 0xcafef00d || r.CompressedSize != 3 || r.UncompressedSize != 7 {
		t.Errorf("sizes/crc not taken from directory: %+v", r)
	}
	if r.PayloadOffset != 30+10+9 {
		t.Errorf("PayloadOffset = %d, expected 49", r.PayloadOffset)
	}
	want := "x.zip/secret.txt:$pkzip2$1*2*2*0*3*7*cafef00d*0*31*8*3*5a3c*010203$/pkzip$:secret.txt:x.zip::x.zip"
	if got := Format(r); got != want {
		t.Errorf("Format =\n  %s\nexpected\n  %s", got, want)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	r := Record{Archive: "a.zip", Entry: "b"}
	if err := Write(&buf, r); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.String() != Format(r)+"\n" {
		t.Errorf("Write = %q", buf.String())
	}
}
