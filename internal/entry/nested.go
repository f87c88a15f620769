package entry

import "strings"

// PathSeparator separates segments in dotted option keys
// (e.g. "map_transform.trim.left").
const PathSeparator = "."

// SetPath writes value into the nested map at the dotted path, creating
// intermediate maps as needed. An existing non-map value on the path is
// replaced by a map.
func SetPath(m map[string]any, path string, value any) {
	segments := strings.Split(path, PathSeparator)

	current := m
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// GetPath reads the value at the dotted path from the nested map.
// The second return value reports whether the full path was present.
func GetPath(m map[string]any, path string) (any, bool) {
	segments := strings.Split(path, PathSeparator)

	current := m
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}

	value, ok := current[segments[len(segments)-1]]
	return value, ok
}

// Expand converts a flat dotted-key map into its nested form.
// This is what the options flow persists after a form submission.
func Expand(flat map[string]any) map[string]any {
	nested := make(map[string]any, len(flat))
	for key, value := range flat {
		SetPath(nested, key, value)
	}
	return nested
}
