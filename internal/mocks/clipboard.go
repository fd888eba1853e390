package mocks

import "github.com/mcdonaldj/zip2hash/internal/ports"

// MockClipboard implements ports.Clipboard for testing.
type MockClipboard struct {
	// Writes records every text passed to WriteAll
	Writes []string
	// Err is returned from WriteAll when set
	Err error
}

// NewMockClipboard creates a new mock clipboard.
func NewMockClipboard() *MockClipboard {
	return &MockClipboard{}
}

// WriteAll records text, or fails with Err.
func (m *MockClipboard) WriteAll(text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Writes = append(m.Writes, text)
	return nil
}

// Last returns the most recent text written, or "".
func (m *MockClipboard) Last() string {
	if len(m.Writes) == 0 {
		return ""
	}
	return m.Writes[len(m.Writes)-1]
}

// Compile-time check that MockClipboard implements ports.Clipboard.
var _ ports.Clipboard = (*MockClipboard)(nil)
