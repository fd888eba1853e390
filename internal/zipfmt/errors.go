package zipfmt

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrMalformedArchive reports a signature mismatch or a length field that
	// is inconsistent with the archive bounds.
	ErrMalformedArchive = errors.New("malformed archive")

	// ErrTruncatedArchive reports a stream that ended before a declared
	// field was fully read.
	ErrTruncatedArchive = errors.New("truncated archive")
)

// Stage names the record being decoded when a ParseError occurred.
type Stage string

const (
	StageTrailer   Stage = "trailer"
	StageDirectory Stage = "directory"
	StageLocal     Stage = "local header"
)

// ParseError carries the stage and absolute offset of a decoding failure.
type ParseError struct {
	Stage  Stage
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %#x: %v", e.Stage, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func malformed(stage Stage, off int64, format string, args ...interface{}) error {
	return &ParseError{
		Stage:  stage,
		Offset: off,
		Err:    fmt.Errorf("%w: %s", ErrMalformedArchive, fmt.Sprintf(format, args...)),
	}
}

// ioFailure classifies a read error; short reads become ErrTruncatedArchive.
func ioFailure(stage Stage, off int64, what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = fmt.Errorf("%w: reading %s", ErrTruncatedArchive, what)
	} else {
		err = fmt.Errorf("reading %s: %w", what, err)
	}
	return &ParseError{Stage: stage, Offset: off, Err: err}
}
