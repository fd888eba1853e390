package ports

// Clipboard abstracts the system clipboard.
// Production code uses the sysclip adapter; tests use MockClipboard.
type Clipboard interface {
	// WriteAll replaces the clipboard contents with text.
	WriteAll(text string) error
}
