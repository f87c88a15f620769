package entry

import (
	"sort"
	"time"

	"github.com/skovtroldenhugo/roborock/internal/account"
)

// Registry represents the entire entry store file.
// Entries are keyed by their unique ID (the account username), mirroring
// how the host framework would key configuration entries per account.
type Registry struct {
	Version int               `yaml:"version"`
	Entries map[string]*Entry `yaml:"entries,omitempty"`
}

// Entry is one configured account: the data captured by the config flow
// plus the options managed by the options flow.
type Entry struct {
	Title     string         `yaml:"title"`
	Data      Data           `yaml:"data"`
	Options   map[string]any `yaml:"options,omitempty"`
	CreatedAt time.Time      `yaml:"created_at,omitempty"`
	UpdatedAt time.Time      `yaml:"updated_at,omitempty"`
}

// Data is the credential payload persisted when the config flow finishes.
// UserData is stored verbatim as returned by the account service.
type Data struct {
	Username string            `yaml:"username"`
	BaseURL  string            `yaml:"base_url"`
	UserData *account.UserData `yaml:"user_data"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Entries: make(map[string]*Entry),
	}
}

// Get retrieves an entry by unique ID.
// Returns nil if no entry exists for that ID.
func (r *Registry) Get(uniqueID string) *Entry {
	return r.Entries[uniqueID]
}

// Has reports whether an entry exists for the unique ID.
func (r *Registry) Has(uniqueID string) bool {
	_, ok := r.Entries[uniqueID]
	return ok
}

// Add inserts a new entry under the unique ID.
// Returns ErrAlreadyConfigured if an entry already exists for that ID.
func (r *Registry) Add(uniqueID string, e *Entry) error {
	if r.Entries == nil {
		r.Entries = make(map[string]*Entry)
	}
	if _, exists := r.Entries[uniqueID]; exists {
		return ErrAlreadyConfigured
	}

	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Options == nil {
		e.Options = make(map[string]any)
	}
	r.Entries[uniqueID] = e
	return nil
}

// Remove deletes the entry for the unique ID.
// Removing a missing entry is not an error.
func (r *Registry) Remove(uniqueID string) {
	delete(r.Entries, uniqueID)
}

// SetOptions replaces the options map of an existing entry.
// Returns ErrNotFound if no entry exists for the unique ID.
func (r *Registry) SetOptions(uniqueID string, options map[string]any) error {
	e, ok := r.Entries[uniqueID]
	if !ok {
		return ErrNotFound
	}
	if options == nil {
		options = make(map[string]any)
	}
	e.Options = options
	e.UpdatedAt = time.Now()
	return nil
}

// UniqueIDs returns the unique IDs of all entries in sorted order.
func (r *Registry) UniqueIDs() []string {
	ids := make([]string, 0, len(r.Entries))
	for id := range r.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
