package flow

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skovtroldenhugo/roborock/internal/entry"
)

func newOptionsStore(t *testing.T, options map[string]any) *entry.Store {
	t.Helper()
	store := entry.NewStore(filepath.Join(t.TempDir(), "entries.yaml"))
	reg, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, reg.Add("user@example.com", &entry.Entry{
		Title:   "user@example.com",
		Options: options,
	}))
	require.NoError(t, store.Save())
	return store
}

func TestOptionsFlowMissingEntry(t *testing.T) {
	store := entry.NewStore(filepath.Join(t.TempDir(), "entries.yaml"))

	_, err := NewOptionsFlow(store, "nobody@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, entry.ErrNotFound))
}

func TestOptionsFlowPlatformSelection(t *testing.T) {
	store := newOptionsStore(t, nil)
	f, err := NewOptionsFlow(store, "user@example.com")
	require.NoError(t, err)

	// Initial show presents the platform choices
	result := f.StepInit(nil)
	require.Equal(t, ResultShowForm, result.Kind)
	require.Equal(t, StepUser, result.StepID)
	field := result.Form.Field(KeyPlatform)
	require.NotNil(t, field)
	assert.Equal(t, []string{PlatformCamera, PlatformVacuum}, field.Choices)

	// Unknown platform re-shows the selection form
	result = f.StepUser(map[string]any{KeyPlatform: "toaster"})
	require.Equal(t, ResultShowForm, result.Kind)
	assert.Equal(t, StepUser, result.StepID)

	// Camera routes to the camera form
	result = f.StepUser(map[string]any{KeyPlatform: PlatformCamera})
	require.Equal(t, ResultShowForm, result.Kind)
	assert.Equal(t, StepCamera, result.StepID)
}

func TestOptionsFlowCameraDefaults(t *testing.T) {
	store := newOptionsStore(t, nil)
	f, err := NewOptionsFlow(store, "user@example.com")
	require.NoError(t, err)

	result := f.StepCamera(nil)
	require.Equal(t, ResultShowForm, result.Kind)
	require.Len(t, result.Form.Fields, 6)

	// Fresh entry surfaces schema defaults
	assert.Equal(t, 1.0, result.Form.Field(KeyMapScale).Default)
	assert.Equal(t, 0, result.Form.Field(KeyMapRotate).Default)
	assert.Equal(t, 0.0, result.Form.Field(KeyMapTrimLeft).Default)
	assert.Equal(t, 0.0, result.Form.Field(KeyMapTrimBottom).Default)
}

func TestOptionsFlowCameraDefaultsFromStoredOptions(t *testing.T) {
	store := newOptionsStore(t, map[string]any{
		"map_transform": map[string]any{
			"scale":  2.5,
			"rotate": 180,
			"trim": map[string]any{
				"left": 10.0,
			},
		},
	})
	f, err := NewOptionsFlow(store, "user@example.com")
	require.NoError(t, err)

	result := f.StepCamera(nil)
	require.Equal(t, ResultShowForm, result.Kind)

	// Stored values win; unset keys fall back to schema defaults
	assert.Equal(t, 2.5, result.Form.Field(KeyMapScale).Default)
	assert.Equal(t, 180, result.Form.Field(KeyMapRotate).Default)
	assert.Equal(t, 10.0, result.Form.Field(KeyMapTrimLeft).Default)
	assert.Equal(t, 0.0, result.Form.Field(KeyMapTrimRight).Default)
}

func TestOptionsFlowCameraSubmit(t *testing.T) {
	store := newOptionsStore(t, nil)
	f, err := NewOptionsFlow(store, "user@example.com")
	require.NoError(t, err)

	result := f.StepCamera(map[string]any{
		KeyMapScale:      "1.5",
		KeyMapRotate:     "90",
		KeyMapTrimLeft:   "5.5",
		KeyMapTrimRight:  "2.5",
		KeyMapTrimTop:    "0.5",
		KeyMapTrimBottom: "12.5",
	})
	require.Equal(t, ResultDone, result.Kind)
	assert.Equal(t, "user@example.com", result.UniqueID)

	// Options are persisted in nested form, never as flat dotted keys
	reg, err := store.Reload()
	require.NoError(t, err)

	want := map[string]any{
		"map_transform": map[string]any{
			"scale":  1.5,
			"rotate": 90,
			"trim": map[string]any{
				"left":   5.5,
				"right":  2.5,
				"top":    0.5,
				"bottom": 12.5,
			},
		},
	}
	if diff := cmp.Diff(want, reg.Get("user@example.com").Options); diff != "" {
		t.Errorf("persisted options mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsFlowCameraSubmitPartial(t *testing.T) {
	store := newOptionsStore(t, map[string]any{
		"map_transform": map[string]any{"scale": 3.5},
	})
	f, err := NewOptionsFlow(store, "user@example.com")
	require.NoError(t, err)

	// Only rotate submitted; everything else keeps stored/schema defaults
	result := f.StepCamera(map[string]any{KeyMapRotate: "270"})
	require.Equal(t, ResultDone, result.Kind)

	reg, err := store.Reload()
	require.NoError(t, err)
	options := reg.Get("user@example.com").Options

	scale, ok := entry.GetPath(options, KeyMapScale)
	require.True(t, ok)
	assert.Equal(t, 3.5, scale)

	rotate, ok := entry.GetPath(options, KeyMapRotate)
	require.True(t, ok)
	assert.Equal(t, 270, rotate)

	// Whole-valued floats may reload as ints; read them back through the
	// schema coercer the way the form defaults do.
	left, ok := entry.GetPath(options, KeyMapTrimLeft)
	require.True(t, ok)
	leftVal, err := Percent(left)
	require.NoError(t, err)
	assert.Equal(t, 0.0, leftVal)
}

func TestOptionsFlowCameraRejectsInvalidValues(t *testing.T) {
	store := newOptionsStore(t, nil)
	f, err := NewOptionsFlow(store, "user@example.com")
	require.NoError(t, err)

	result := f.StepCamera(map[string]any{
		KeyMapScale:    "-1",
		KeyMapRotate:   "45",
		KeyMapTrimLeft: "150",
	})
	require.Equal(t, ResultShowForm, result.Kind)
	assert.Equal(t, StepCamera, result.StepID)
	assert.Equal(t, ErrInvalid, result.Errors[KeyMapScale])
	assert.Equal(t, ErrInvalid, result.Errors[KeyMapRotate])
	assert.Equal(t, ErrInvalid, result.Errors[KeyMapTrimLeft])

	// Nothing was persisted
	reg, err := store.Reload()
	require.NoError(t, err)
	_, ok := entry.GetPath(reg.Get("user@example.com").Options, KeyMapScale)
	assert.False(t, ok)
}

func TestOptionsFlowVacuumSavesUnchanged(t *testing.T) {
	stored := map[string]any{
		"map_transform": map[string]any{"scale": 2.5},
	}
	store := newOptionsStore(t, stored)
	f, err := NewOptionsFlow(store, "user@example.com")
	require.NoError(t, err)

	result := f.StepUser(map[string]any{KeyPlatform: PlatformVacuum})
	require.Equal(t, ResultDone, result.Kind)

	reg, err := store.Reload()
	require.NoError(t, err)
	if diff := cmp.Diff(stored, reg.Get("user@example.com").Options); diff != "" {
		t.Errorf("vacuum save changed options (-want +got):\n%s", diff)
	}
}
