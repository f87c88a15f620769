package flow

import "testing"

func TestPositiveFloat(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    float64
		wantErr bool
	}{
		{"zero", "0", 0, false},
		{"integer string", "2", 2, false},
		{"decimal string", "1.5", 1.5, false},
		{"padded string", " 1.5 ", 1.5, false},
		{"typed float", 1.5, 1.5, false},
		{"typed int", 2, 2, false},
		{"negative", "-0.1", 0, true},
		{"not a number", "abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PositiveFloat(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PositiveFloat(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("PositiveFloat(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    float64
		wantErr bool
	}{
		{"zero", "0", 0, false},
		{"hundred", "100", 100, false},
		{"decimal", "12.5", 12.5, false},
		{"typed float", 50.0, 50, false},
		{"above range", "100.1", 0, true},
		{"below range", "-1", 0, true},
		{"not a number", "half", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percent(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Percent(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Percent(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestRotation(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{"zero", "0", 0, false},
		{"ninety", "90", 90, false},
		{"one eighty", "180", 180, false},
		{"two seventy", "270", 270, false},
		{"float form", "90.0", 90, false},
		{"typed int", 270, 270, false},
		{"typed float", 180.0, 180, false},
		{"unsupported angle", "45", 0, true},
		{"negative", "-90", 0, true},
		{"not a number", "left", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rotation(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Rotation(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Rotation(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestNonEmptyString(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{"plain", "user@example.com", "user@example.com", false},
		{"trimmed", "  code  ", "code", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"not a string", 42, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NonEmptyString(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NonEmptyString(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("NonEmptyString(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCameraSchemaCoverage(t *testing.T) {
	for _, key := range CameraOptionKeys() {
		if CameraCoercer(key) == nil {
			t.Errorf("camera option %q has no coercer", key)
		}
		def, ok := CameraDefault(key)
		if !ok {
			t.Errorf("camera option %q has no default", key)
			continue
		}
		// Every default must pass its own coercer
		if _, err := CameraCoercer(key)(def); err != nil {
			t.Errorf("camera option %q default %v fails coercion: %v", key, def, err)
		}
	}
}

func TestFormFieldLookup(t *testing.T) {
	form := userForm("user@example.com")

	field := form.Field(KeyUsername)
	if field == nil {
		t.Fatal("Field(username) = nil")
	}
	if !field.Required {
		t.Error("username field should be required")
	}
	if field.Default != "user@example.com" {
		t.Errorf("username default = %v, want user@example.com", field.Default)
	}

	if form.Field("missing") != nil {
		t.Error("Field(missing) should be nil")
	}
}
