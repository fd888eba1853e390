// Package ports defines interfaces (contracts) for external dependencies.
// These enable dependency injection and testability via mock implementations.
package ports

import (
	"io"
	"os"
)

// File is an open archive: seekable, closable and able to report its size.
type File interface {
	io.ReadSeeker
	io.Closer

	// Stat returns file info; Size() is the archive length.
	Stat() (os.FileInfo, error)
}

// FileSystem abstracts filesystem operations for testability.
// Production code uses OSFileSystem adapter; tests use MockFileSystem.
type FileSystem interface {
	// Open opens the named file for reading.
	Open(name string) (File, error)

	// ReadFile reads the named file and returns the contents.
	ReadFile(name string) ([]byte, error)

	// WriteFile writes data to the named file, creating it if necessary.
	WriteFile(name string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory along with any necessary parents.
	MkdirAll(path string, perm os.FileMode) error
}
