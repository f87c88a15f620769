package entry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName   = "roborock-cfg"
	storeFile = "entries.yaml"
)

var (
	// ErrAlreadyConfigured is returned when adding an entry whose unique ID
	// is already present in the registry.
	ErrAlreadyConfigured = errors.New("entry already configured")

	// ErrNotFound is returned when operating on a missing entry.
	ErrNotFound = errors.New("entry not found")
)

var (
	// Global store instance (created lazily)
	globalStore     *Store
	globalStoreOnce sync.Once
	globalStoreErr  error
)

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/roborock-cfg or $HOME/.config/roborock-cfg
//   - macOS: $HOME/.config/roborock-cfg (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\roborock-cfg
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: Use LOCALAPPDATA
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		// macOS: Use $HOME/.config/roborock-cfg (following modern XDG convention)
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems: Use XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetStorePath returns the full path to the entry store file.
func GetStorePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, storeFile), nil
}

// Store manages a registry file on disk. All file operations are atomic
// and serialized through an internal mutex.
type Store struct {
	path string

	mu       sync.Mutex
	registry *Registry
}

// NewStore creates a store backed by the given file path.
// The file is loaded lazily on first access.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the process-wide store at the platform config path.
// Thread-safe - multiple calls return the same instance.
func DefaultStore() (*Store, error) {
	globalStoreOnce.Do(func() {
		path, err := GetStorePath()
		if err != nil {
			globalStoreErr = fmt.Errorf("failed to get store path: %w", err)
			return
		}
		globalStore = NewStore(path)
	})
	return globalStore, globalStoreErr
}

// Path returns the file path backing this store.
func (s *Store) Path() string {
	return s.path
}

// Load returns the registry, reading it from disk on first call.
// If the file doesn't exist, returns a new default registry.
func (s *Store) Load() (*Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registry != nil {
		return s.registry, nil
	}

	registry, err := loadRegistryFromDisk(s.path)
	if err != nil {
		return nil, err
	}
	s.registry = registry
	return registry, nil
}

// Reload re-reads the registry from disk, discarding in-memory changes.
// This is useful for reading changes made by another process.
func (s *Store) Reload() (*Registry, error) {
	s.mu.Lock()
	s.registry = nil
	s.mu.Unlock()
	return s.Load()
}

// loadRegistryFromDisk performs the actual file loading.
func loadRegistryFromDisk(path string) (*Registry, error) {
	// Check if store file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Store doesn't exist - return new default registry
		return NewRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry store: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse entry store: %w", err)
	}

	// Validate version
	if registry.Version != 1 {
		return nil, fmt.Errorf("unsupported entry store version: %d (expected 1)", registry.Version)
	}

	// Ensure maps are initialized
	if registry.Entries == nil {
		registry.Entries = make(map[string]*Entry)
	}

	return &registry, nil
}

// Save writes the registry to disk.
// Performs an atomic write to prevent corruption on crash.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registry == nil {
		// Nothing loaded, nothing to save
		return nil
	}

	// Ensure the parent directory exists with user-only permissions
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := yaml.Marshal(s.registry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry store: %w", err)
	}

	// Add header comment
	header := []byte(`# Roborock account entries
# This file stores configuration entries created by the login flow,
# including account session tokens. Keep it private.
#
# Location: ` + s.path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary store file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, s.path); err != nil {
		// Clean up temp file on error
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save entry store: %w", err)
	}

	return nil
}
