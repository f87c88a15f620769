// Package entry persists configuration entries for the roborock-cfg tool.
//
// An entry is one linked account: the credential data captured by the login
// flow (username, regional base URL, session token payload) plus the nested
// options map managed by the options flow. Entries live in a YAML registry
// in the platform config directory and are written atomically.
//
// # Store File Location
//
// The entry store is kept in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/roborock-cfg/entries.yaml or $HOME/.config/roborock-cfg/entries.yaml
//   - macOS: $HOME/.config/roborock-cfg/entries.yaml
//   - Windows: %LOCALAPPDATA%\roborock-cfg\entries.yaml
//
// # Options
//
// Options are stored in nested form. Form layers address individual values
// with dotted paths (e.g. "map_transform.trim.left") via GetPath/SetPath,
// and Expand converts a flat dotted-key submission into the nested shape
// before it is persisted.
//
// # Thread Safety
//
// A Store serializes file operations through an internal mutex and the
// process-wide DefaultStore is created through sync.Once. Registry and
// Entry values themselves are not safe for concurrent mutation.
package entry
