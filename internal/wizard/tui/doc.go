// Package tui implements the terminal user interface for the Roborock configuration wizard.
//
// This package provides an interactive, full-screen TUI for linking Roborock accounts
// and editing per-entry options. Built using the Bubble Tea framework, it follows the
// Elm architecture with immutable state updates and a clean Model-Update-View pattern.
//
// # Architecture
//
// The TUI is organized into four main screens:
//   - Accounts: List linked accounts, start linking, relinking, or options editing
//   - Form: Render the current flow step (fields, defaults, keyed errors)
//   - Busy: Spinner while the account service is contacted
//   - Success/Failure: Display operation results
//
// All screens use a unified container pattern (RenderApplicationContainer) for
// consistent layout with header, content area, and context-sensitive footer.
//
// The TUI owns no flow logic. Step sequencing, validation, coercion and
// persistence live in the flow package; this package renders each flow.Result
// and feeds form submissions back into the active flow. The same flows also
// drive the non-interactive survey prompts in the CLI commands, so both front
// ends behave identically.
//
// # Framework Components
//
// The TUI leverages Bubble Tea framework components throughout:
//   - bubbles/spinner: Loading indicator while contacting the account service
//   - bubbles/textinput: Text entry fields, with masked input for the code
//   - bubbles/list: Linked account list
//   - bubbles/help: Context-aware help system
//   - lipgloss: Styling and layout
//
// # Usage Example
//
//	store, err := entry.DefaultStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := tui.Run(store); err != nil {
//	    log.Fatal(err)
//	}
//
// # Screen Flow
//
// The typical user flow through the wizard:
//
//  1. Accounts Screen:
//     - Lists configured accounts with region and link date
//     - 'n' starts linking a new account, 'r' relinks the selected one
//     - Enter on an account opens its options editor
//
//  2. Form Screens (driven by the flows):
//     - Account linking: email address, then the emailed verification code
//     - Options editing: platform selection, then the camera map transform
//       fields (scale, rotation, trim margins) for the camera platform
//     - Validation errors appear inline next to the offending field;
//       step-level errors appear above the form
//
//  3. Success/Failure Screen:
//     - Shows the created or updated entry on success
//     - Shows error details plus a troubleshooting hint on failure
//     - Options to start over, return to accounts, or exit
//
// # Key Bindings
//
// Each screen has context-aware key bindings:
//   - Accounts: ↑/↓ navigate, Enter edit options, n link, r relink, q quit
//   - Form: Tab next field, ←/→ change choice, Enter next/submit, ESC back
//   - Success/Failure: Enter back to accounts, r start over, q quit
//
// Help text automatically updates based on screen state.
//
// # State Management
//
// The TUI maintains immutable state with explicit updates:
//   - Models contain all state (no global variables)
//   - Update() returns new model + commands
//   - View() is pure function of model state
//   - Commands represent async operations (account service calls)
package tui
