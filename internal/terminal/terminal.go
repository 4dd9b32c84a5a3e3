// Package terminal implements C12: the raw-mode/alternate-screen lifecycle
// and key-byte decoding the event loop and the (out-of-scope) rendering
// widgets depend on. It does not render anything itself.
package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const (
	enterAltScreen = "\x1b[?1049h"
	exitAltScreen  = "\x1b[?1049l"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
)

// Terminal owns the raw-mode state and the alternate-screen buffer for the
// process's stdin/stdout. Acquire and Release form a scoped pair; a
// process-wide panic hook (InstallPanicHook) guarantees Release runs even
// when the event loop panics, so a crash never leaves the user's shell in
// raw mode.
type Terminal struct {
	fd       int
	oldState *term.State
	out      io.Writer

	mu       sync.Mutex
	released bool
}

// Acquire puts stdin into raw mode and switches stdout to the alternate
// screen buffer with the cursor hidden. Returns an error if stdin is not a
// terminal (e.g. when piped in tests or CI) — callers should treat that as
// a fatal startup error per §6.
func Acquire() (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("terminal: stdin is not a tty")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("terminal: MakeRaw: %w", err)
	}

	t := &Terminal{fd: fd, oldState: oldState, out: os.Stdout}
	fmt.Fprint(t.out, enterAltScreen+hideCursor)
	return t, nil
}

// Writer returns the writer the (external) rendering widgets write into.
func (t *Terminal) Writer() io.Writer {
	return t.out
}

// Release restores the cursor, leaves the alternate screen, and restores
// the terminal's original mode. Idempotent: a second call is a no-op, so it
// is safe to call both from normal shutdown and from a deferred panic
// recovery path.
func (t *Terminal) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return
	}
	t.released = true

	fmt.Fprint(t.out, showCursor+exitAltScreen)
	_ = term.Restore(t.fd, t.oldState)
}

// InstallPanicHook returns a deferred-call function that releases t before
// re-panicking, so a panic anywhere in the event loop restores the user's
// shell instead of leaving it in raw mode with a garbled alternate screen.
// Callers install it with `defer terminal.InstallPanicHook(t)()` at the top
// of main.
func InstallPanicHook(t *Terminal) func() {
	return func() {
		if r := recover(); r != nil {
			t.Release()
			panic(r)
		}
	}
}

// Size returns the current terminal dimensions (columns, rows).
func (t *Terminal) Size() (cols, rows int, err error) {
	return term.GetSize(t.fd)
}
