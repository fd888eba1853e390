// Package extract walks a ZIP archive and produces one hash line per
// legacy-encrypted entry, recording why every other entry was left out.
package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/mcdonaldj/zip2hash/internal/hashline"
	"github.com/mcdonaldj/zip2hash/internal/legacy"
	"github.com/mcdonaldj/zip2hash/internal/ports"
	"github.com/mcdonaldj/zip2hash/internal/zipfmt"
)

// Options tune which entries are examined.
type Options struct {
	CommentPolicy zipfmt.CommentPolicy
	// Exclude holds glob patterns matched against entry names. A pattern
	// ending in "/*" also matches everything below that directory.
	Exclude []string
	// MaxPayload skips candidates with a larger compressed size; 0 means no limit.
	MaxPayload uint32
	// Digest computes the archive's SHA-256 after processing.
	Digest bool
}

// Status is the outcome for one entry.
type Status int

const (
	StatusHash Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusHash:
		return "hash"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// EntryResult is the outcome of processing one directory entry. Exactly one
// of Line, Reason or Err is meaningful, as reported by Status.
type EntryResult struct {
	Entry     zipfmt.DirectoryEntry
	Local     *zipfmt.LocalHeader
	Candidate *legacy.Candidate
	Line      string
	Skipped   bool
	Reason    string
	Err       error
}

// Status reports which outcome r holds.
func (r EntryResult) Status() Status {
	switch {
	case r.Err != nil:
		return StatusFailed
	case r.Skipped:
		return StatusSkipped
	default:
		return StatusHash
	}
}

// Archive owns everything decoded from one archive.
type Archive struct {
	Name    string
	Size    int64
	SHA256  string
	Trailer *zipfmt.Trailer
	Entries []zipfmt.DirectoryEntry
	Results []EntryResult

	// CheckBytes is the verification-byte count written into every line.
	CheckBytes int
}

// Lines returns the hash lines in directory order.
func (a *Archive) Lines() []string {
	var lines []string
	for _, r := range a.Results {
		if r.Status() == StatusHash {
			lines = append(lines, r.Line)
		}
	}
	return lines
}

// Count returns how many results have status s.
func (a *Archive) Count(s Status) int {
	n := 0
	for _, r := range a.Results {
		if r.Status() == s {
			n++
		}
	}
	return n
}

// Process decodes the archive read from r. Trailer and directory failures
// abort and return an error; failures within an entry are recorded on that
// entry's result and the remaining entries are still processed.
func Process(name string, r io.ReadSeeker, size int64, opts Options) (*Archive, error) {
	trailer, err := zipfmt.ReadTrailer(r, size, opts.CommentPolicy)
	if err != nil {
		return nil, err
	}
	entries, err := zipfmt.ReadDirectory(r, trailer)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		Name:       name,
		Size:       size,
		Trailer:    trailer,
		Entries:    entries,
		Results:    make([]EntryResult, 0, len(entries)),
		CheckBytes: legacy.CheckBytes,
	}
	for _, e := range entries {
		a.Results = append(a.Results, processEntry(name, r, e, opts))
	}

	if opts.Digest {
		sum, err := digest(r)
		if err != nil {
			return nil, fmt.Errorf("hashing archive: %w", err)
		}
		a.SHA256 = sum
	}
	return a, nil
}

// Open opens path through fsys and processes it.
func Open(fsys ports.FileSystem, name string, opts Options) (*Archive, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Process(name, f, info.Size(), opts)
}

func processEntry(archive string, r io.ReadSeeker, e zipfmt.DirectoryEntry, opts Options) EntryResult {
	res := EntryResult{Entry: e}

	if pattern, ok := excluded(e.Name, opts.Exclude); ok {
		res.Skipped = true
		res.Reason = fmt.Sprintf("excluded by %q", pattern)
		return res
	}
	h, err := zipfmt.ReadLocalHeader(r, e)
	if err != nil {
		res.Err = err
		return res
	}
	res.Local = h

	// The local header decides; the directory copy of the flags is not consulted.
	c, err := legacy.Classify(e, h)
	if err != nil {
		if errors.Is(err, legacy.ErrUnsupportedEntry) {
			res.Skipped = true
			res.Reason = strings.TrimPrefix(err.Error(), legacy.ErrUnsupportedEntry.Error()+": ")
			return res
		}
		res.Err = err
		return res
	}
	if opts.MaxPayload > 0 && e.CompressedSize > opts.MaxPayload {
		res.Skipped = true
		res.Reason = fmt.Sprintf("payload of %d bytes exceeds limit of %d", e.CompressedSize, opts.MaxPayload)
		return res
	}
	if err := h.ReadPayload(r, e); err != nil {
		res.Err = err
		return res
	}
	res.Candidate = c
	res.Line = hashline.Format(hashline.FromCandidate(archive, c))
	return res
}

// excluded returns the first pattern matching name.
func excluded(name string, patterns []string) (string, bool) {
	base := path.Base(name)
	for _, pattern := range patterns {
		if name == pattern || base == pattern {
			return pattern, true
		}
		if matched, _ := path.Match(pattern, name); matched {
			return pattern, true
		}
		if matched, _ := path.Match(pattern, base); matched {
			return pattern, true
		}
		if dir := strings.TrimSuffix(pattern, "*"); strings.HasSuffix(dir, "/") && strings.HasPrefix(name, dir) {
			return pattern, true
		}
	}
	return "", false
}

func digest(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
