package entity

// Preference is a dotted-namespace key/value pair (theme.*, keybind.*,
// session.*), upserted on write.
type Preference struct {
	Key   string
	Value string
}

// Keybinding maps a (focus context, key) pair to an action name. Contexts are
// Feeds, Articles, WhatsNew, Categories, Reader, Search, Help. Overridable from
// the config file (stored keybind.* preferences are not applied); resolution
// is a single map lookup and an absent entry is a no-op, never a panic.
type Keybinding struct {
	Context string
	Key     string
	Action  string
}
