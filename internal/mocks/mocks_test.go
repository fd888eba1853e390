package mocks

import (
	"errors"
	"io"
	"os"
	"testing"
)

func TestMockFileSystem(t *testing.T) {
	mockFS := NewMockFileSystem()

	// Test WriteFile and ReadFile
	if err := mockFS.WriteFile("/test/file.zip", []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	content, err := mockFS.ReadFile("/test/file.zip")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("content = %q, expected %q", string(content), "hello")
	}

	// Test ReadFile for non-existent file
	if _, err := mockFS.ReadFile("/nonexistent"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile err = %v, expected os.ErrNotExist", err)
	}

	// Test error injection
	mockFS.Errors["/error/path"] = errors.New("injected error")
	_, err = mockFS.ReadFile("/error/path")
	if err == nil || err.Error() != "injected error" {
		t.Errorf("Expected injected error, got: %v", err)
	}

	if err := mockFS.MkdirAll("/a/b", 0755); err != nil || !mockFS.Dirs["/a/b"] {
		t.Errorf("MkdirAll did not record directory: %v", err)
	}
}

func TestMockFileSystemOpen(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.Files["/archive.zip"] = []byte("0123456789")

	f, err := mockFS.Open("/archive.zip")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 10 || info.Name() != "archive.zip" {
		t.Errorf("Stat = %s/%d, expected archive.zip/10", info.Name(), info.Size())
	}

	if _, err := f.Seek(6, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	rest, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(rest) != "6789" {
		t.Errorf("read %q after seek, expected %q", rest, "6789")
	}

	if err := f.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if !f.(*mockFile).closed {
		t.Error("Close did not mark the file closed")
	}

	if _, err := mockFS.Open("/missing.zip"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open err = %v, expected os.ErrNotExist", err)
	}
	if len(mockFS.OpenCalls) != 2 {
		t.Errorf("OpenCalls = %v, expected 2 calls", mockFS.OpenCalls)
	}
}

func TestMockClipboard(t *testing.T) {
	clip := NewMockClipboard()
	if clip.Last() != "" {
		t.Errorf("Last() = %q on empty clipboard", clip.Last())
	}
	_ = clip.WriteAll("one")
	_ = clip.WriteAll("two")
	if clip.Last() != "two" || len(clip.Writes) != 2 {
		t.Errorf("Writes = %v", clip.Writes)
	}

	clip.Err = errors.New("no clipboard")
	if err := clip.WriteAll("three"); err == nil {
		t.Error("expected injected error")
	}
	if len(clip.Writes) != 2 {
		t.Errorf("failed write was recorded: %v", clip.Writes)
	}
}
