package entry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetPath(t *testing.T) {
	m := make(map[string]any)

	SetPath(m, "map_transform.scale", 1.5)
	SetPath(m, "map_transform.rotate", 90)
	SetPath(m, "map_transform.trim.left", 2.0)
	SetPath(m, "map_transform.trim.right", 3.0)

	want := map[string]any{
		"map_transform": map[string]any{
			"scale":  1.5,
			"rotate": 90,
			"trim": map[string]any{
				"left":  2.0,
				"right": 3.0,
			},
		},
	}

	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("SetPath() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetPathReplacesScalarWithMap(t *testing.T) {
	m := map[string]any{"map_transform": 1.0}

	SetPath(m, "map_transform.scale", 2.0)

	want := map[string]any{
		"map_transform": map[string]any{"scale": 2.0},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("SetPath() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetPath(t *testing.T) {
	m := map[string]any{
		"map_transform": map[string]any{
			"scale": 1.5,
			"trim": map[string]any{
				"left": 2.0,
			},
		},
	}

	tests := []struct {
		name   string
		path   string
		want   any
		wantOK bool
	}{
		{"top level", "map_transform.scale", 1.5, true},
		{"deeply nested", "map_transform.trim.left", 2.0, true},
		{"missing leaf", "map_transform.rotate", nil, false},
		{"missing branch", "other.scale", nil, false},
		{"scalar in the middle", "map_transform.scale.extra", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetPath(m, tt.path)
			if ok != tt.wantOK {
				t.Fatalf("GetPath(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("GetPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	flat := map[string]any{
		"map_transform.scale":       1.0,
		"map_transform.rotate":      0,
		"map_transform.trim.left":   0.0,
		"map_transform.trim.right":  0.0,
		"map_transform.trim.top":    5.0,
		"map_transform.trim.bottom": 0.0,
	}

	want := map[string]any{
		"map_transform": map[string]any{
			"scale":  1.0,
			"rotate": 0,
			"trim": map[string]any{
				"left":   0.0,
				"right":  0.0,
				"top":    5.0,
				"bottom": 0.0,
			},
		},
	}

	if diff := cmp.Diff(want, Expand(flat)); diff != "" {
		t.Errorf("Expand() mismatch (-want +got):\n%s", diff)
	}
}
