// Package clip wraps the OS clipboard primitive.
//
// It is a thin layer over golang.design/x/clipboard that turns the
// library's package-level API into a value the monitor and server can
// hold (and tests can fake). On platforms where the clipboard is
// unavailable (headless Linux without X, missing cgo), Init fails once
// and every operation reports that error instead of panicking.
package clip

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrUnavailable is returned when the OS clipboard could not be initialized.
var ErrUnavailable = errors.New("clip: system clipboard unavailable")

var (
	initOnce sync.Once
	initErr  error
)

// System is the real OS clipboard.
type System struct{}

// Init initializes the OS clipboard. Safe to call more than once;
// the underlying library is initialized at most one time.
func Init() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	})
	return initErr
}

// ReadText returns the current clipboard text, or "" when the clipboard
// holds no text.
func (System) ReadText() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// ReadImage returns the current clipboard image as PNG bytes, or nil
// when the clipboard holds no image.
func (System) ReadImage() ([]byte, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return clipboard.Read(clipboard.FmtImage), nil
}

// WriteText replaces the clipboard contents with text.
func (System) WriteText(text string) error {
	if err := Init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
