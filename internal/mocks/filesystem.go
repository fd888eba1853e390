// Package mocks provides mock implementations for testing.
package mocks

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/mcdonaldj/zip2hash/internal/ports"
)

// MockFileSystem implements ports.FileSystem for testing.
type MockFileSystem struct {
	// Files maps paths to file contents for Open/ReadFile/WriteFile
	Files map[string][]byte
	// Dirs records paths passed to MkdirAll
	Dirs map[string]bool
	// Errors maps paths to errors (for simulating failures)
	Errors map[string]error
	// OpenCalls records every path passed to Open
	OpenCalls []string
}

// NewMockFileSystem creates a new mock filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:  make(map[string][]byte),
		Dirs:   make(map[string]bool),
		Errors: make(map[string]error),
	}
}

// Open opens the named file for reading.
func (m *MockFileSystem) Open(name string) (ports.File, error) {
	m.OpenCalls = append(m.OpenCalls, name)
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	content, ok := m.Files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return &mockFile{Reader: bytes.NewReader(content), name: name, size: int64(len(content))}, nil
}

// ReadFile reads the named file and returns the contents.
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	if content, ok := m.Files[name]; ok {
		return content, nil
	}
	return nil, os.ErrNotExist
}

// WriteFile writes data to the named file, creating it if necessary.
func (m *MockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if err, ok := m.Errors[name]; ok {
		return err
	}
	m.Files[name] = data
	return nil
}

// MkdirAll creates a directory along with any necessary parents.
func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	if err, ok := m.Errors[path]; ok {
		return err
	}
	m.Dirs[path] = true
	return nil
}

// mockFileInfo implements os.FileInfo for testing.
type mockFileInfo struct {
	name string
	size int64
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return 0644 }
func (fi *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (fi *mockFileInfo) IsDir() bool        { return false }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

// mockFile implements ports.File over an in-memory reader.
type mockFile struct {
	*bytes.Reader
	name   string
	size   int64
	closed bool
}

func (f *mockFile) Stat() (os.FileInfo, error) {
	return &mockFileInfo{name: filepath.Base(f.name), size: f.size}, nil
}

func (f *mockFile) Close() error {
	f.closed = true
	return nil
}

// Compile-time check that MockFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*MockFileSystem)(nil)
