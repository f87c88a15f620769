package logging

import "testing"

func TestMaskAccount(t *testing.T) {
	tests := []struct {
		name    string
		account string
		want    string
	}{
		{"empty", "", ""},
		{"email", "user@example.com", "us**@example.com"},
		{"long local part", "longername@example.com", "lo********@example.com"},
		{"short local part", "ab@example.com", "ab@example.com"},
		{"no domain", "username", "us******"},
		{"two chars no domain", "ab", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAccount(tt.account); got != tt.want {
				t.Errorf("MaskAccount(%q) = %q, want %q", tt.account, got, tt.want)
			}
		})
	}
}

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	// Must not panic and must swallow output when no level is configured
	Debug("debug message")
	Info("info message")
	Sync()
}

func TestInitializeLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		t.Run(level, func(t *testing.T) {
			if err := Initialize(level); err != nil {
				t.Fatalf("Initialize(%q) error = %v", level, err)
			}
		})
	}

	// Restore silent mode for other tests
	if err := Initialize(""); err != nil {
		t.Fatal(err)
	}
}
