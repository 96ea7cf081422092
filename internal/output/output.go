// Package output delivers transcribed text to the user, either through
// the system clipboard or by injecting it into the active application.
package output

import (
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/go-vgo/robotgo"
)

// Writer delivers text using a configured method.
type Writer struct {
	method string // "clipboard", "type" or "paste"
}

// NewWriter creates a Writer. Unknown methods fall back to "clipboard".
func NewWriter(method string) *Writer {
	switch method {
	case "type", "paste":
	default:
		method = "clipboard"
	}
	return &Writer{method: method}
}

// Method returns the configured delivery method.
func (w *Writer) Method() string {
	return w.method
}

// Deliver sends text to the user via the configured method. Empty text
// is a no-op.
func (w *Writer) Deliver(text string) error {
	if text == "" {
		return nil
	}

	switch w.method {
	case "type":
		return w.typeText(text)
	case "paste":
		return w.paste(text)
	default:
		return w.copy(text)
	}
}

// copy places text on the system clipboard.
func (w *Writer) copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("output: write to clipboard: %w", err)
	}
	return nil
}

// typeText simulates individual keystrokes. Preserves clipboard
// contents but is slower for long text.
func (w *Writer) typeText(text string) error {
	robotgo.Type(text)
	return nil
}

// paste copies text to the clipboard and sends the platform paste
// shortcut, restoring the previous clipboard contents afterwards.
func (w *Writer) paste(text string) error {
	prev, _ := clipboard.ReadAll()

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("output: write to clipboard: %w", err)
	}

	if err := robotgo.KeyTap("v", pasteModifier()); err != nil {
		return fmt.Errorf("output: key tap paste: %w", err)
	}

	// Restore previous clipboard (best effort)
	_ = clipboard.WriteAll(prev)

	return nil
}

// pasteModifier returns the paste shortcut modifier for the platform.
func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
