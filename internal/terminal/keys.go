package terminal

// Key is the logical key identity the keybinding registry resolves against:
// either a single printable rune ("j", "?", "*") or a named key ("enter",
// "esc", "tab", "up", "down", "backspace"). Decode normalizes the several
// byte sequences a terminal can send for the same logical key (e.g. both
// "\x1b[A" and "\x1bOA" for the up arrow) into one of these names.
type Key string

const (
	KeyEnter     Key = "enter"
	KeyEsc       Key = "esc"
	KeyTab       Key = "tab"
	KeyBackspace Key = "backspace"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
)

// namedByte maps single control bytes to their logical key name.
var namedByte = map[byte]Key{
	'\r':   KeyEnter,
	'\n':   KeyEnter,
	'\t':   KeyTab,
	0x7f:   KeyBackspace,
	0x08:   KeyBackspace,
	0x1b:   KeyEsc, // only reached when Decode's escape-sequence check below doesn't match
}

// escapeSequences maps the bytes following ESC '[' or ESC 'O' to arrow keys,
// the two prefixes a terminal may use depending on application-cursor-keys
// mode.
var escapeSequences = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
}

// Decode consumes one logical key from buf and returns its string form
// (matching the keybinding registry's key strings) plus the number of
// bytes consumed. A bare ESC not followed by '[' or 'O' within buf decodes
// as KeyEsc consuming one byte, so a lone Escape press is never mistaken
// for the start of a sequence that never arrives.
func Decode(buf []byte) (key string, consumed int) {
	if len(buf) == 0 {
		return "", 0
	}

	b := buf[0]

	if b == 0x1b && len(buf) >= 3 && (buf[1] == '[' || buf[1] == 'O') {
		if k, ok := escapeSequences[buf[2]]; ok {
			return string(k), 3
		}
	}

	if named, ok := namedByte[b]; ok {
		return string(named), 1
	}

	if b < 0x20 || b == 0x7f {
		// Unrecognized control byte; consume it so decoding makes progress.
		return "", 1
	}

	// A printable ASCII byte is its own key name ("j", "?", "*", "A").
	// Multi-byte UTF-8 runes beyond ASCII are not bound by any default
	// keybinding and are decoded as their first byte's string form, which
	// simply never matches a registry entry.
	return string(b), 1
}
