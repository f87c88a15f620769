package flow

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/skovtroldenhugo/roborock/internal/entry"
	"github.com/skovtroldenhugo/roborock/internal/logging"
)

// OptionsFlow edits the per-entry options of an existing account entry.
// The user step picks a platform; the camera step edits the map transform
// options (scale, rotation, trim margins) addressed by dotted paths, and
// a valid submission replaces the entry's options wholesale. The vacuum
// platform has no editable options yet, so selecting it saves the current
// options unchanged.
type OptionsFlow struct {
	store    *entry.Store
	uniqueID string

	// options is the working copy; the stored entry is only touched
	// when a step finishes the flow.
	options map[string]any
}

// NewOptionsFlow creates an options flow for the entry with the given
// unique ID. Returns entry.ErrNotFound if no such entry exists.
func NewOptionsFlow(store *entry.Store, uniqueID string) (*OptionsFlow, error) {
	reg, err := store.Load()
	if err != nil {
		return nil, err
	}

	e := reg.Get(uniqueID)
	if e == nil {
		return nil, fmt.Errorf("options flow for %q: %w", uniqueID, entry.ErrNotFound)
	}

	return &OptionsFlow{
		store:    store,
		uniqueID: uniqueID,
		options:  e.Options,
	}, nil
}

// UniqueID returns the unique ID of the entry being edited.
func (f *OptionsFlow) UniqueID() string {
	return f.uniqueID
}

// StepInit is the entry point of the options flow.
func (f *OptionsFlow) StepInit(input map[string]any) Result {
	return f.StepUser(input)
}

// StepUser handles platform selection. Called with nil input it shows the
// selection form; a submission routes to the platform's options step.
func (f *OptionsFlow) StepUser(input map[string]any) Result {
	if input != nil {
		switch input[KeyPlatform] {
		case PlatformCamera:
			return f.StepCamera(nil)
		case PlatformVacuum:
			return f.StepVacuum()
		}
	}

	return showForm(StepUser, platformForm(), nil)
}

// StepCamera handles the camera map transform form. Called with nil input
// it shows the form with defaults resurfaced from the stored options; a
// valid submission expands the dotted keys into the nested options shape
// and persists it.
func (f *OptionsFlow) StepCamera(input map[string]any) Result {
	if input == nil {
		return showForm(StepCamera, f.cameraForm(), nil)
	}

	flat := make(map[string]any, len(cameraOptionKeys))
	errs := make(map[string]string)

	for _, key := range cameraOptionKeys {
		value, ok := input[key]
		if !ok || value == "" {
			// Camera fields are optional; missing values keep their default.
			value = f.cameraDefault(key)
		}

		coerced, err := CameraCoercer(key)(value)
		if err != nil {
			logging.Debug("Camera option rejected",
				zap.String("key", key), zap.Error(err))
			errs[key] = ErrInvalid
			continue
		}
		flat[key] = coerced
	}

	if len(errs) > 0 {
		return showForm(StepCamera, f.cameraForm(), errs)
	}

	f.options = entry.Expand(flat)
	return f.saveOptions()
}

// StepVacuum finishes the flow for the vacuum platform, which has no
// editable options. The current options are saved unchanged.
func (f *OptionsFlow) StepVacuum() Result {
	return f.saveOptions()
}

// saveOptions writes the working options back to the entry.
func (f *OptionsFlow) saveOptions() Result {
	reg, err := f.store.Load()
	if err != nil {
		return showForm(StepUser, platformForm(),
			map[string]string{ErrKeyBase: ErrInvalid})
	}

	if err := reg.SetOptions(f.uniqueID, f.options); err != nil {
		logging.Error("Failed to update entry options", zap.Error(err))
		return showForm(StepUser, platformForm(),
			map[string]string{ErrKeyBase: ErrInvalid})
	}
	if err := f.store.Save(); err != nil {
		logging.Error("Failed to persist entry options", zap.Error(err))
		return showForm(StepUser, platformForm(),
			map[string]string{ErrKeyBase: ErrInvalid})
	}

	logging.Info("Entry options updated",
		zap.String("account", logging.MaskAccount(f.uniqueID)))

	return Result{Kind: ResultDone, UniqueID: f.uniqueID}
}

// cameraForm builds the camera options form with per-field defaults from
// the stored options, coerced so the prefill matches the stored type.
func (f *OptionsFlow) cameraForm() *Form {
	fields := make([]Field, 0, len(cameraOptionKeys))
	for _, key := range cameraOptionKeys {
		coercer := CameraCoercer(key)

		def, err := coercer(f.cameraDefault(key))
		if err != nil {
			// Stored value no longer passes the schema; fall back to
			// the schema default rather than surfacing a broken form.
			def, _ = CameraDefault(key)
		}

		fields = append(fields, Field{
			Key:     key,
			Default: def,
			Coerce:  coercer,
		})
	}
	return &Form{Fields: fields}
}

// cameraDefault returns the stored value for a camera option key, falling
// back to the schema default when the entry has none.
func (f *OptionsFlow) cameraDefault(key string) any {
	if v, ok := entry.GetPath(f.options, key); ok {
		return v
	}
	v, _ := CameraDefault(key)
	return v
}
