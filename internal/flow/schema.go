package flow

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Form field keys for the config flow steps.
const (
	KeyUsername = "username"
	KeyCode     = "code"
	KeyPlatform = "platform"
)

// Platforms selectable in the options flow.
const (
	PlatformCamera = "camera"
	PlatformVacuum = "vacuum"
)

// Dotted option paths for the camera map transform.
const (
	KeyMapScale      = "map_transform.scale"
	KeyMapRotate     = "map_transform.rotate"
	KeyMapTrimLeft   = "map_transform.trim.left"
	KeyMapTrimRight  = "map_transform.trim.right"
	KeyMapTrimTop    = "map_transform.trim.top"
	KeyMapTrimBottom = "map_transform.trim.bottom"
)

// Coercer validates a submitted value and converts it to its stored type.
// Raw form input arrives as strings; defaults resurfaced from the store
// arrive already typed, so coercers accept both.
type Coercer func(value any) (any, error)

// toFloat converts form input to float64. Strings are parsed, numeric
// types are widened.
func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", value, value)
	}
}

// PositiveFloat coerces to a float64 >= 0.
func PositiveFloat(value any) (any, error) {
	f, err := toFloat(value)
	if err != nil {
		return nil, err
	}
	if f < 0 {
		return nil, fmt.Errorf("must not be negative: %v", f)
	}
	return f, nil
}

// Percent coerces to a float64 within [0, 100].
func Percent(value any) (any, error) {
	f, err := toFloat(value)
	if err != nil {
		return nil, err
	}
	if f < 0 || f > 100 {
		return nil, fmt.Errorf("must be between 0 and 100: %v", f)
	}
	return f, nil
}

// Rotation coerces to one of the supported map rotations (0, 90, 180, 270
// degrees) as an int. Numeric input is truncated before the check, so
// "90.0" and 90 are both accepted.
func Rotation(value any) (any, error) {
	f, err := toFloat(value)
	if err != nil {
		return nil, err
	}
	r := int(math.Trunc(f))
	switch r {
	case 0, 90, 180, 270:
		return r, nil
	default:
		return nil, fmt.Errorf("must be 0, 90, 180 or 270: %v", value)
	}
}

// NonEmptyString coerces to a trimmed, non-empty string.
func NonEmptyString(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("not a string: %v (%T)", value, value)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("must not be empty")
	}
	return s, nil
}

// cameraOptionKeys fixes the rendering order of the camera options form.
var cameraOptionKeys = []string{
	KeyMapScale,
	KeyMapRotate,
	KeyMapTrimLeft,
	KeyMapTrimRight,
	KeyMapTrimTop,
	KeyMapTrimBottom,
}

// cameraDefaults are the option values used when an entry has no stored
// value for a key yet.
var cameraDefaults = map[string]any{
	KeyMapScale:      1.0,
	KeyMapRotate:     0,
	KeyMapTrimLeft:   0.0,
	KeyMapTrimRight:  0.0,
	KeyMapTrimTop:    0.0,
	KeyMapTrimBottom: 0.0,
}

// cameraCoercers maps each camera option key to its validation coercer.
var cameraCoercers = map[string]Coercer{
	KeyMapScale:      PositiveFloat,
	KeyMapRotate:     Rotation,
	KeyMapTrimLeft:   Percent,
	KeyMapTrimRight:  Percent,
	KeyMapTrimTop:    Percent,
	KeyMapTrimBottom: Percent,
}

// CameraOptionKeys returns the camera option keys in form order.
func CameraOptionKeys() []string {
	keys := make([]string, len(cameraOptionKeys))
	copy(keys, cameraOptionKeys)
	return keys
}

// CameraDefault returns the default value for a camera option key.
func CameraDefault(key string) (any, bool) {
	v, ok := cameraDefaults[key]
	return v, ok
}

// CameraCoercer returns the coercer for a camera option key, or nil
// if the key is not a camera option.
func CameraCoercer(key string) Coercer {
	return cameraCoercers[key]
}

// userForm builds the username step form.
func userForm(defaultUsername string) *Form {
	return &Form{Fields: []Field{{
		Key:      KeyUsername,
		Required: true,
		Default:  defaultUsername,
		Coerce:   NonEmptyString,
	}}}
}

// codeForm builds the verification code step form.
func codeForm(defaultCode string) *Form {
	return &Form{Fields: []Field{{
		Key:      KeyCode,
		Required: true,
		Secret:   true,
		Default:  defaultCode,
		Coerce:   NonEmptyString,
	}}}
}

// platformForm builds the options flow platform selection form.
func platformForm() *Form {
	return &Form{Fields: []Field{{
		Key:      KeyPlatform,
		Required: true,
		Choices:  []string{PlatformCamera, PlatformVacuum},
	}}}
}
