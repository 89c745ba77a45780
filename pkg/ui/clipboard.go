package ui

import (
	"errors"
	"os"

	"github.com/atotto/clipboard"
)

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter func(text string) error

// errClipboardDisabled is returned by the system clipboard while tests run.
var errClipboardDisabled = errors.New("clipboard disabled in test mode")

func systemClipboard(text string) error {
	if os.Getenv("DEVSETUP_TEST_MODE") != "" {
		return errClipboardDisabled
	}
	return clipboard.WriteAll(text)
}
