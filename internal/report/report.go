// Package report records the outcome of a run as JSON: every archive
// processed, its digest, and the status of each entry.
package report

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/mcdonaldj/zip2hash/internal/extract"
	"github.com/mcdonaldj/zip2hash/internal/ports"
)

type EntryRecord struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
	Line   string `json:"line,omitempty"`
}

type ArchiveRecord struct {
	Path      string        `json:"path"`
	SHA256    string        `json:"sha256,omitempty"`
	SizeBytes int64         `json:"size_bytes"`
	Entries   []EntryRecord `json:"entries"`
	// Error is set when the archive could not be processed at all.
	Error string `json:"error,omitempty"`
}

type Report struct {
	Version   string          `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Archives  []ArchiveRecord `json:"archives"`
}

func New(version string, now time.Time) *Report {
	return &Report{
		Version:   version,
		CreatedAt: now.UTC(),
		Archives:  []ArchiveRecord{},
	}
}

// AddArchive records every entry result of a.
func (r *Report) AddArchive(a *extract.Archive) {
	rec := ArchiveRecord{
		Path:      a.Name,
		SHA256:    a.SHA256,
		SizeBytes: a.Size,
		Entries:   make([]EntryRecord, 0, len(a.Results)),
	}
	for _, res := range a.Results {
		e := EntryRecord{
			Name:   res.Entry.Name,
			Status: res.Status().String(),
			Reason: res.Reason,
			Line:   res.Line,
		}
		if res.Err != nil {
			e.Error = res.Err.Error()
		}
		rec.Entries = append(rec.Entries, e)
	}
	r.Archives = append(r.Archives, rec)
}

// AddFailure records an archive that failed before any entry was read.
func (r *Report) AddFailure(path string, err error) {
	r.Archives = append(r.Archives, ArchiveRecord{
		Path:    path,
		Entries: []EntryRecord{},
		Error:   err.Error(),
	})
}

// Counts totals entries by status across all archives.
func (r *Report) Counts() map[string]int {
	counts := make(map[string]int)
	for _, a := range r.Archives {
		for _, e := range a.Entries {
			counts[e.Status]++
		}
	}
	return counts
}

// Failed reports whether any archive failed outright.
func (r *Report) Failed() bool {
	for _, a := range r.Archives {
		if a.Error != "" {
			return true
		}
	}
	return false
}

func (r *Report) Save(fsys ports.FileSystem, path string) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	return fsys.WriteFile(path, append(data, '\n'), 0644)
}

func Load(fsys ports.FileSystem, path string) (*Report, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
