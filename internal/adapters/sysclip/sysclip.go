// Package sysclip provides a clipboard adapter backed by github.com/atotto/clipboard.
package sysclip

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/mcdonaldj/zip2hash/internal/ports"
)

var errUnsupported = errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")

// Clipboard implements ports.Clipboard using the system clipboard.
type Clipboard struct{}

// New creates a new Clipboard adapter.
func New() *Clipboard {
	return &Clipboard{}
}

// WriteAll replaces the clipboard contents with text.
func (c *Clipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errUnsupported
	}
	return clipboard.WriteAll(text)
}

// Compile-time check that Clipboard implements ports.Clipboard.
var _ ports.Clipboard = (*Clipboard)(nil)
