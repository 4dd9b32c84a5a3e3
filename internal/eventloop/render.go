package eventloop

import "feedtui/internal/uistate"

// Renderer draws the current App state to the terminal. It is pure: it
// reads a borrowed App reference and writes to the terminal buffer, never
// mutating logical state. The concrete widget implementation is an external
// collaborator (§1) and lives outside this module; this interface is the
// seam the event loop depends on.
type Renderer interface {
	Render(app *uistate.App)
}

// NopRenderer discards every render call. Useful for tests and for running
// the loop headless.
type NopRenderer struct{}

func (NopRenderer) Render(*uistate.App) {}
