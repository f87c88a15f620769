package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/skovtroldenhugo/roborock/internal/account"
	"github.com/skovtroldenhugo/roborock/internal/entry"
	"github.com/skovtroldenhugo/roborock/internal/flow"
	"github.com/skovtroldenhugo/roborock/internal/logging"
	"github.com/skovtroldenhugo/roborock/internal/urls"
	"github.com/skovtroldenhugo/roborock/internal/wizard/tui"
)

// Command flags
var (
	storePath    string
	outputFormat string
	reauth       bool
	assumeYes    bool
)

func init() {
	// Common flags (persistent on root)
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the entries file (default: user config dir)")

	// Add subcommands directly to root
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(removeCmd)
}

// getStore opens the entry store, honoring the --store flag
func getStore() (*entry.Store, error) {
	if storePath != "" {
		return entry.NewStore(storePath), nil
	}
	return entry.DefaultStore()
}

// requireTerminal rejects interactive commands on non-TTY stdin
func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("this command is interactive and requires a terminal")
	}
	return nil
}

// promptLabels maps flow field keys to survey prompt messages
var promptLabels = map[string]string{
	flow.KeyUsername:      "Roborock account email",
	flow.KeyCode:          "Verification code (sent by email)",
	flow.KeyPlatform:      "Platform",
	flow.KeyMapScale:      "Map scale",
	flow.KeyMapRotate:     "Map rotation (0/90/180/270)",
	flow.KeyMapTrimLeft:   "Trim left (%)",
	flow.KeyMapTrimRight:  "Trim right (%)",
	flow.KeyMapTrimTop:    "Trim top (%)",
	flow.KeyMapTrimBottom: "Trim bottom (%)",
}

func promptLabel(key string) string {
	if label, ok := promptLabels[key]; ok {
		return label
	}
	return key
}

// stepHelpURL returns the documentation link shown alongside a step's form,
// or an empty string for steps without a dedicated page.
func stepHelpURL(stepID string) string {
	if stepID == flow.StepCamera {
		return urls.CameraOptions
	}
	return ""
}

// printStepErrors reports validation and service errors from a form result
func printStepErrors(result flow.Result, lastErr error) {
	for key, code := range result.Errors {
		switch {
		case key == flow.ErrKeyBase && code == flow.ErrAuth:
			fmt.Println("✗ Could not send a verification code to this account.")
			if lastErr != nil {
				fmt.Printf("  %s\n", account.GetTroubleshootingHint(lastErr))
			}
			fmt.Printf("  See %s\n", urls.AccountLogin)
		case key == flow.ErrKeyBase && code == flow.ErrNoDevice:
			fmt.Println("✗ The account service rejected the verification code.")
			if lastErr != nil {
				fmt.Printf("  %s\n", account.GetTroubleshootingHint(lastErr))
			}
		case code == flow.ErrRequired:
			fmt.Printf("✗ %s is required\n", promptLabel(key))
		default:
			fmt.Printf("✗ %s: invalid value\n", promptLabel(key))
		}
	}
}

// wizardCmd launches the interactive TUI wizard
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch interactive configuration wizard",
	Long: `Launch an interactive TUI wizard for account configuration.

The wizard provides a user-friendly interface for:
- Linking a Roborock account via email verification code
- Relinking accounts whose session has expired
- Editing per-entry platform options (camera map transform, vacuum)

This is the recommended way to configure accounts for most users.`,
	Example: `  # Launch the wizard
  roborock-cfg wizard
  # Or simply (wizard is default):
  roborock-cfg

  # Use an alternate entries file
  roborock-cfg wizard --store ./entries.yaml`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	if err := requireTerminal(); err != nil {
		return fmt.Errorf("%w; use 'roborock-cfg login' and 'roborock-cfg configure' for scripted setups", err)
	}

	store, err := getStore()
	if err != nil {
		return err
	}

	logging.Debug("launching wizard")
	if err := tui.Run(store); err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}
	return nil
}

// loginCmd links a Roborock account using survey prompts
var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Link a Roborock account",
	Long: `Link a Roborock account using the email verification code login.

The account service emails a verification code to the given address;
entering the code creates a configuration entry keyed by the email.
With --reauth, an existing entry for the account is removed first and
the login runs again to refresh its session.`,
	Example: `  # Link an account (prompts for the email)
  roborock-cfg login

  # Link a specific account
  roborock-cfg login user@example.com

  # Refresh an expired session
  roborock-cfg login user@example.com --reauth`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&reauth, "reauth", false, "Remove the existing entry and log in again")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if err := requireTerminal(); err != nil {
		return err
	}

	store, err := getStore()
	if err != nil {
		return err
	}

	// No deadline: the user may take a while to receive the code email.
	// Each HTTP call has its own client timeout.
	ctx := cmd.Context()

	f := flow.NewConfigFlow(store)

	var result flow.Result
	if reauth {
		if len(args) == 0 {
			return fmt.Errorf("--reauth requires the account email argument")
		}
		result = f.StepReauth(ctx, args[0])
	} else {
		result = f.StepUser(ctx, nil)
	}

	for {
		switch result.Kind {
		case flow.ResultDone:
			fmt.Printf("✓ Account %s linked successfully\n", result.Title)
			fmt.Printf("  Entries file: %s\n", store.Path())
			fmt.Println("  Use 'roborock-cfg configure' to edit platform options.")
			return nil

		case flow.ResultAbort:
			if result.Reason == flow.AbortAlreadyConfigured {
				return fmt.Errorf("account is already configured; use --reauth to relink it")
			}
			return fmt.Errorf("login aborted: %s", result.Reason)
		}

		printStepErrors(result, f.LastError())

		switch result.StepID {
		case flow.StepUser:
			username := ""
			if len(args) > 0 && f.Username() == "" {
				username = args[0]
			} else {
				def, _ := result.Form.Field(flow.KeyUsername).Default.(string)
				prompt := &survey.Input{Message: promptLabel(flow.KeyUsername) + ":", Default: def}
				if err := survey.AskOne(prompt, &username, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}
			result = f.StepUser(ctx, map[string]string{flow.KeyUsername: username})
			if result.StepID == flow.StepCode && result.Kind == flow.ResultShowForm && len(result.Errors) == 0 {
				fmt.Printf("A verification code was sent to %s\n", logging.MaskAccount(username))
			}

		case flow.StepCode:
			var code string
			prompt := &survey.Password{Message: promptLabel(flow.KeyCode) + ":"}
			if err := survey.AskOne(prompt, &code, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
			result = f.StepCode(ctx, map[string]string{flow.KeyCode: code})

		default:
			return fmt.Errorf("unexpected login step: %s", result.StepID)
		}
	}
}

// configureCmd edits platform options for a configured account
var configureCmd = &cobra.Command{
	Use:   "configure <email>",
	Short: "Edit platform options for a linked account",
	Long: `Edit the platform options of a configuration entry.

Selecting the camera platform prompts for the map transform options:
scale (positive number), rotation (0, 90, 180 or 270 degrees) and trim
margins (percent, 0-100). The vacuum platform has no editable options.
Current values are offered as defaults.`,
	Example: `  # Edit options for an account
  roborock-cfg configure user@example.com

  # Against an alternate entries file
  roborock-cfg configure user@example.com --store ./entries.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	if err := requireTerminal(); err != nil {
		return err
	}

	store, err := getStore()
	if err != nil {
		return err
	}

	f, err := flow.NewOptionsFlow(store, args[0])
	if err != nil {
		return fmt.Errorf("no entry for %s: run 'roborock-cfg login' first (%w)", args[0], err)
	}

	result := f.StepInit(nil)
	for {
		switch result.Kind {
		case flow.ResultDone:
			fmt.Printf("✓ Options for %s saved\n", result.UniqueID)
			return nil
		case flow.ResultAbort:
			return fmt.Errorf("configure aborted: %s", result.Reason)
		}

		printStepErrors(result, nil)
		if u := stepHelpURL(result.StepID); u != "" {
			fmt.Printf("These options are documented at %s\n", u)
		}

		switch result.StepID {
		case flow.StepUser:
			field := result.Form.Field(flow.KeyPlatform)
			def, _ := field.Default.(string)
			var platform string
			prompt := &survey.Select{
				Message: promptLabel(flow.KeyPlatform) + ":",
				Options: field.Choices,
				Default: def,
			}
			if def == "" {
				prompt.Default = nil
			}
			if err := survey.AskOne(prompt, &platform); err != nil {
				return err
			}
			result = f.StepUser(map[string]any{flow.KeyPlatform: platform})

		case flow.StepCamera:
			values := make(map[string]any, len(result.Form.Fields))
			for _, field := range result.Form.Fields {
				var value string
				prompt := &survey.Input{
					Message: promptLabel(field.Key) + ":",
					Default: fmt.Sprintf("%v", field.Default),
				}
				if err := survey.AskOne(prompt, &value); err != nil {
					return err
				}
				values[field.Key] = value
			}
			result = f.StepCamera(values)

		default:
			return fmt.Errorf("unexpected configure step: %s", result.StepID)
		}
	}
}

// entriesCmd lists stored configuration entries
var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List stored configuration entries",
	Long: `Display the configuration entries in the local store.

Shows each linked account with its region, account service endpoint and
saved options. Session tokens are never printed.`,
	Example: `  # List entries
  roborock-cfg entries

  # JSON output for scripting
  roborock-cfg entries --format json`,
	RunE: runEntries,
}

func init() {
	entriesCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
}

// entryView is the sanitized form of an entry for display output
type entryView struct {
	UniqueID  string         `json:"unique_id"`
	Title     string         `json:"title"`
	Account   string         `json:"account"`
	BaseURL   string         `json:"base_url"`
	Region    string         `json:"region,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Options   map[string]any `json:"options"`
}

func newEntryView(uniqueID string, e *entry.Entry) entryView {
	view := entryView{
		UniqueID:  uniqueID,
		Title:     e.Title,
		Account:   logging.MaskAccount(e.Data.Username),
		BaseURL:   e.Data.BaseURL,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		Options:   e.Options,
	}
	if e.Data.UserData != nil {
		view.Region = e.Data.UserData.Region
	}
	return view
}

func runEntries(cmd *cobra.Command, args []string) error {
	store, err := getStore()
	if err != nil {
		return err
	}

	reg, err := store.Load()
	if err != nil {
		return err
	}

	ids := reg.UniqueIDs()
	views := make([]entryView, 0, len(ids))
	for _, id := range ids {
		views = append(views, newEntryView(id, reg.Get(id)))
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(views) == 0 {
		fmt.Printf("No entries in %s\n", store.Path())
		fmt.Println("Use 'roborock-cfg login' to link an account.")
		fmt.Printf("See %s\n", urls.GettingStarted)
		return nil
	}

	fmt.Printf("Entries in %s:\n\n", store.Path())
	for i, view := range views {
		fmt.Printf("%d. %s\n", i+1, view.Title)
		fmt.Printf("   Account: %s\n", view.Account)
		if view.Region != "" {
			fmt.Printf("   Region:  %s\n", view.Region)
		}
		fmt.Printf("   Service: %s\n", view.BaseURL)
		fmt.Printf("   Linked:  %s\n", view.CreatedAt.Format("2006-01-02 15:04"))
		if len(view.Options) > 0 {
			data, err := yaml.Marshal(view.Options)
			if err != nil {
				return fmt.Errorf("failed to render options: %w", err)
			}
			fmt.Println("   Options:")
			fmt.Print(indent(string(data), "     "))
		}
		fmt.Println()
	}

	return nil
}

// indent prefixes every non-empty line of s
func indent(s string, prefix string) string {
	out := ""
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			line := s[start : i+1]
			if line != "\n" {
				out += prefix + line
			} else {
				out += line
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out += prefix + s[start:]
	}
	return out
}

// removeCmd deletes a configuration entry
var removeCmd = &cobra.Command{
	Use:   "remove <email>",
	Short: "Remove a configuration entry",
	Long: `Remove the configuration entry for an account from the local store.

This only deletes local configuration; the Roborock account itself is
not touched.`,
	Example: `  # Remove with confirmation prompt
  roborock-cfg remove user@example.com

  # Remove without confirmation
  roborock-cfg remove user@example.com --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&assumeYes, "yes", false, "Skip the confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	store, err := getStore()
	if err != nil {
		return err
	}

	reg, err := store.Load()
	if err != nil {
		return err
	}

	uniqueID := args[0]
	if !reg.Has(uniqueID) {
		return fmt.Errorf("no entry for %s", uniqueID)
	}

	if !assumeYes {
		if err := requireTerminal(); err != nil {
			return fmt.Errorf("%w; use --yes to skip confirmation", err)
		}
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Remove entry for %s?", uniqueID),
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	reg.Remove(uniqueID)
	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save entries: %w", err)
	}

	logging.Info("entry removed", zap.String("account", logging.MaskAccount(uniqueID)))
	fmt.Printf("✓ Removed entry for %s\n", uniqueID)
	return nil
}
