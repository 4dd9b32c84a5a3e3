package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode_PrintableKey(t *testing.T) {
	key, n := Decode([]byte("j"))
	assert.Equal(t, "j", key)
	assert.Equal(t, 1, n)
}

func TestDecode_Enter(t *testing.T) {
	key, n := Decode([]byte("\r"))
	assert.Equal(t, string(KeyEnter), key)
	assert.Equal(t, 1, n)
}

func TestDecode_ArrowUp(t *testing.T) {
	key, n := Decode([]byte("\x1b[A"))
	assert.Equal(t, string(KeyUp), key)
	assert.Equal(t, 3, n)
}

func TestDecode_ArrowApplicationMode(t *testing.T) {
	key, n := Decode([]byte("\x1bOB"))
	assert.Equal(t, string(KeyDown), key)
	assert.Equal(t, 3, n)
}

func TestDecode_BareEscape(t *testing.T) {
	key, n := Decode([]byte("\x1b"))
	assert.Equal(t, string(KeyEsc), key)
	assert.Equal(t, 1, n)
}

func TestDecode_UnknownEscapeSequenceFallsBackToEsc(t *testing.T) {
	key, n := Decode([]byte("\x1b[Z"))
	assert.Equal(t, string(KeyEsc), key)
	assert.Equal(t, 1, n)
}

func TestDecode_Empty(t *testing.T) {
	key, n := Decode(nil)
	assert.Equal(t, "", key)
	assert.Equal(t, 0, n)
}

func TestDecode_Tab(t *testing.T) {
	key, n := Decode([]byte("\t"))
	assert.Equal(t, string(KeyTab), key)
	assert.Equal(t, 1, n)
}
