package entry

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/skovtroldenhugo/roborock/internal/account"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	// Should not be empty
	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	// Should contain the app name
	if !strings.Contains(configDir, "roborock-cfg") {
		t.Errorf("GetConfigDir() = %v, should contain 'roborock-cfg'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetStorePath(t *testing.T) {
	storePath, err := GetStorePath()
	if err != nil {
		t.Fatalf("GetStorePath() error = %v", err)
	}

	// Should end with entries.yaml
	if filepath.Base(storePath) != "entries.yaml" {
		t.Errorf("GetStorePath() should end with 'entries.yaml', got: %v", storePath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Entries == nil {
		t.Error("NewRegistry().Entries should not be nil")
	}
}

func TestRegistryAdd(t *testing.T) {
	reg := NewRegistry()

	e := &Entry{
		Title: "user@example.com",
		Data: Data{
			Username: "user@example.com",
			BaseURL:  "https://region.example.com",
			UserData: &account.UserData{Token: "abc123"},
		},
	}

	if err := reg.Add("user@example.com", e); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if !reg.Has("user@example.com") {
		t.Error("Has() = false after Add()")
	}
	if reg.Get("user@example.com") != e {
		t.Error("Get() should return the added entry")
	}
	if e.CreatedAt.IsZero() {
		t.Error("Add() should stamp CreatedAt")
	}
	if e.Options == nil {
		t.Error("Add() should initialize Options")
	}

	// Adding the same unique ID again must fail
	err := reg.Add("user@example.com", &Entry{Title: "duplicate"})
	if err != ErrAlreadyConfigured {
		t.Errorf("Add() duplicate error = %v, want ErrAlreadyConfigured", err)
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add("user@example.com", &Entry{Title: "user@example.com"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	reg.Remove("user@example.com")
	if reg.Has("user@example.com") {
		t.Error("Has() = true after Remove()")
	}

	// Removing again should be a no-op
	reg.Remove("user@example.com")
}

func TestRegistrySetOptions(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add("user@example.com", &Entry{Title: "user@example.com"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	options := map[string]any{
		"map_transform": map[string]any{"scale": 2.0},
	}
	if err := reg.SetOptions("user@example.com", options); err != nil {
		t.Fatalf("SetOptions() error = %v", err)
	}

	got, ok := GetPath(reg.Get("user@example.com").Options, "map_transform.scale")
	if !ok || got != 2.0 {
		t.Errorf("stored option = %v (present %v), want 2.0", got, ok)
	}

	if err := reg.SetOptions("missing@example.com", options); err != ErrNotFound {
		t.Errorf("SetOptions() missing entry error = %v, want ErrNotFound", err)
	}
}

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.yaml")
	store := NewStore(path)

	reg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	e := &Entry{
		Title: "user@example.com",
		Data: Data{
			Username: "user@example.com",
			BaseURL:  "https://region.example.com",
			UserData: &account.UserData{
				UID:    42,
				Token:  "abc123",
				Region: "eu",
			},
		},
		Options: map[string]any{
			"map_transform": map[string]any{
				"scale":  1.5,
				"rotate": 90,
			},
		},
	}
	if err := reg.Add("user@example.com", e); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := store.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The temp file from the atomic write must be gone
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind after Save()")
	}

	// Reload and verify round trip
	reloaded, err := store.Reload()
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	got := reloaded.Get("user@example.com")
	if got == nil {
		t.Fatal("entry missing after reload")
	}
	if got.Data.Username != "user@example.com" {
		t.Errorf("Data.Username = %v, want user@example.com", got.Data.Username)
	}
	if got.Data.UserData == nil || got.Data.UserData.Token != "abc123" {
		t.Errorf("Data.UserData not round-tripped: %+v", got.Data.UserData)
	}

	scale, ok := GetPath(got.Options, "map_transform.scale")
	if !ok {
		t.Fatal("options not round-tripped")
	}
	if scale != 1.5 {
		t.Errorf("map_transform.scale = %v, want 1.5", scale)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "entries.yaml"))

	reg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(reg.Entries) != 0 {
		t.Errorf("Load() of missing file should return empty registry, got %d entries", len(reg.Entries))
	}
}

func TestStoreLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.yaml")
	if err := os.WriteFile(path, []byte("version: 2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(path).Load(); err == nil {
		t.Error("Load() should reject unsupported store version")
	}
}
