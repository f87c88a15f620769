package flow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skovtroldenhugo/roborock/internal/account"
	"github.com/skovtroldenhugo/roborock/internal/entry"
	"github.com/skovtroldenhugo/roborock/internal/logging"
)

// AccountClient is the slice of the account service client the config
// flow needs. Satisfied by *account.Client; narrowed for testing.
type AccountClient interface {
	RequestCode(ctx context.Context) error
	CodeLogin(ctx context.Context, code string) (*account.UserData, error)
	BaseURL() string
}

// ClientFactory creates an account client for a username.
type ClientFactory func(username string) AccountClient

// ConfigFlow walks a user through linking a Roborock account: the user
// step collects the account email and triggers a verification code, the
// code step exchanges the emailed code for a session token and persists
// the entry. Flow state (username, pending client, base URL) lives only
// for the lifetime of one ConfigFlow value.
type ConfigFlow struct {
	store     *entry.Store
	newClient ClientFactory

	// Transient per-flow state
	username string
	baseURL  string
	client   AccountClient
	lastErr  error
}

// NewConfigFlow creates a config flow backed by the given entry store.
func NewConfigFlow(store *entry.Store) *ConfigFlow {
	return &ConfigFlow{
		store: store,
		newClient: func(username string) AccountClient {
			return account.NewClient(username)
		},
	}
}

// SetClientFactory overrides how account clients are created.
func (f *ConfigFlow) SetClientFactory(factory ClientFactory) {
	f.newClient = factory
}

// Username returns the account email captured by the user step.
func (f *ConfigFlow) Username() string {
	return f.username
}

// LastError returns the underlying error behind the most recent error key,
// for front ends that want to show troubleshooting detail.
func (f *ConfigFlow) LastError() error {
	return f.lastErr
}

// StepUser handles the account email step. Called with nil input it shows
// the form; called with a submission it requests a verification code and
// advances to the code step.
func (f *ConfigFlow) StepUser(ctx context.Context, input map[string]string) Result {
	f.lastErr = nil

	if input == nil {
		return showForm(StepUser, userForm(f.username), nil)
	}

	username, err := coerceString(NonEmptyString, input[KeyUsername])
	if err != nil {
		return showForm(StepUser, userForm(input[KeyUsername]),
			map[string]string{KeyUsername: ErrRequired})
	}
	f.username = username

	// The username is the flow's unique ID: one entry per account.
	reg, err := f.store.Load()
	if err != nil {
		f.lastErr = err
		return showForm(StepUser, userForm(username),
			map[string]string{ErrKeyBase: ErrAuth})
	}
	if reg.Has(username) {
		return abort(AbortAlreadyConfigured)
	}

	client := f.newClient(username)
	logging.Debug("Requesting verification code",
		zap.String("account", logging.MaskAccount(username)))

	if err := client.RequestCode(ctx); err != nil {
		f.lastErr = err
		logging.Warn("Verification code request failed", zap.Error(err))
		return showForm(StepUser, userForm(username),
			map[string]string{ErrKeyBase: ErrAuth})
	}

	// Hold the pending client; the code step logs in through it.
	f.client = client
	f.baseURL = client.BaseURL()

	return showForm(StepCode, codeForm(""), nil)
}

// StepCode handles the verification code step. Called with nil input it
// shows the form; called with a submission it exchanges the code for a
// session token and creates the entry.
func (f *ConfigFlow) StepCode(ctx context.Context, input map[string]string) Result {
	f.lastErr = nil

	if input == nil {
		return showForm(StepCode, codeForm(""), nil)
	}

	code, err := coerceString(NonEmptyString, input[KeyCode])
	if err != nil {
		return showForm(StepCode, codeForm(input[KeyCode]),
			map[string]string{KeyCode: ErrRequired})
	}

	if f.client == nil {
		// Code step reached without a pending client; restart.
		return f.StepUser(ctx, nil)
	}

	logging.Debug("Logging in with emailed verification code",
		zap.String("account", logging.MaskAccount(f.username)))

	userData, err := f.client.CodeLogin(ctx, code)
	if err != nil {
		f.lastErr = err
		logging.Warn("Code login failed", zap.Error(err))
		// Re-show the rejected code so a typo can be corrected in place.
		return showForm(StepCode, codeForm(code),
			map[string]string{ErrKeyBase: ErrNoDevice})
	}

	result, err := f.createEntry(userData)
	if err != nil {
		f.lastErr = err
		return showForm(StepCode, codeForm(code),
			map[string]string{ErrKeyBase: ErrNoDevice})
	}
	return result
}

// StepReauth restarts the flow for an account whose session expired.
// The existing entry is removed first, then the user step is shown with
// the username prefilled.
func (f *ConfigFlow) StepReauth(ctx context.Context, username string) Result {
	reg, err := f.store.Load()
	if err != nil {
		f.lastErr = err
		return showForm(StepUser, userForm(username),
			map[string]string{ErrKeyBase: ErrAuth})
	}

	if reg.Has(username) {
		reg.Remove(username)
		if err := f.store.Save(); err != nil {
			f.lastErr = err
			return showForm(StepUser, userForm(username),
				map[string]string{ErrKeyBase: ErrAuth})
		}
	}

	f.username = username
	return f.StepUser(ctx, nil)
}

// createEntry persists the finished flow as a configuration entry.
func (f *ConfigFlow) createEntry(userData *account.UserData) (Result, error) {
	reg, err := f.store.Load()
	if err != nil {
		return Result{}, err
	}

	e := &entry.Entry{
		Title: f.username,
		Data: entry.Data{
			Username: f.username,
			BaseURL:  f.baseURL,
			UserData: userData,
		},
	}
	if err := reg.Add(f.username, e); err != nil {
		if err == entry.ErrAlreadyConfigured {
			return abort(AbortAlreadyConfigured), nil
		}
		return Result{}, err
	}

	if err := f.store.Save(); err != nil {
		// Roll the in-memory registry back so a retry can succeed.
		reg.Remove(f.username)
		return Result{}, fmt.Errorf("failed to persist entry: %w", err)
	}

	logging.Info("Account entry created",
		zap.String("account", logging.MaskAccount(f.username)))

	return Result{
		Kind:     ResultDone,
		Title:    f.username,
		UniqueID: f.username,
	}, nil
}

// coerceString runs a string coercer and returns the coerced string.
func coerceString(c Coercer, value string) (string, error) {
	v, err := c(value)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
