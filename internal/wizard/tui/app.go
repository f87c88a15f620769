package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skovtroldenhugo/roborock/internal/account"
	"github.com/skovtroldenhugo/roborock/internal/entry"
	"github.com/skovtroldenhugo/roborock/internal/flow"
	"github.com/skovtroldenhugo/roborock/internal/urls"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenAccounts Screen = "accounts"
	ScreenForm     Screen = "form"
	ScreenBusy     Screen = "busy"
	ScreenSuccess  Screen = "success"
	ScreenFailure  Screen = "failure"
)

// flowMode tracks which flow is currently driving the form screen
type flowMode int

const (
	flowNone flowMode = iota
	flowConfig
	flowOptions
)

// Messages for screen transitions
type goBackMsg struct{}
type quitMsg struct{}

// stepResultMsg carries the outcome of running a flow step
type stepResultMsg struct {
	result flow.Result
}

// successKeyMap defines key bindings for the success screen
type successKeyMap struct {
	Accounts key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k successKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accounts, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k successKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Accounts, k.Quit},
	}
}

// failureKeyMap defines key bindings for the failure screen
type failureKeyMap struct {
	Accounts key.Binding
	Retry    key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k failureKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Accounts, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k failureKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Retry, k.Accounts, k.Quit},
	}
}

// AppModel is the top-level coordinator model that manages screen
// transitions. The flows own all sequencing and validation; this model
// only renders their results and feeds submissions back in.
type AppModel struct {
	// Current screen state
	CurrentScreen  Screen
	PreviousScreen Screen

	// Screen models
	AccountsModel AccountsModel
	FormModel     FormModel

	// Flow state
	store       *entry.Store
	mode        flowMode
	configFlow  *flow.ConfigFlow
	optionsFlow *flow.OptionsFlow

	// Result state shown on the success/failure screens
	LastResult flow.Result
	LastError  error

	// UI state
	Width    int
	Height   int
	Spinner  spinner.Model
	BusyText string

	// Help
	Help        help.Model
	SuccessKeys successKeyMap
	FailureKeys failureKeyMap
}

// NewAppModel creates a new application model over the given entry store
func NewAppModel(store *entry.Store) (AppModel, error) {
	reg, err := store.Load()
	if err != nil {
		return AppModel{}, fmt.Errorf("loading entries: %w", err)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	successKeys := successKeyMap{
		Accounts: key.NewBinding(
			key.WithKeys("enter", "a"),
			key.WithHelp("enter", "back to accounts"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	failureKeys := failureKeyMap{
		Accounts: key.NewBinding(
			key.WithKeys("enter", "a"),
			key.WithHelp("enter", "back to accounts"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return AppModel{
		CurrentScreen: ScreenAccounts,
		AccountsModel: NewAccountsModel(reg),
		store:         store,
		Spinner:       s,
		Help:          help.New(),
		SuccessKeys:   successKeys,
		FailureKeys:   failureKeys,
	}, nil
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return m.AccountsModel.Init()
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		updated, _ := m.AccountsModel.Update(msg)
		m.AccountsModel = updated.(AccountsModel)
		m.FormModel.Width = msg.Width
		m.FormModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case quitMsg:
		return m, tea.Quit

	case goBackMsg:
		return m.showAccounts()

	case startConfigMsg:
		m.mode = flowConfig
		m.configFlow = flow.NewConfigFlow(m.store)
		return m.applyResult(m.configFlow.StepUser(context.Background(), nil))

	case startReauthMsg:
		m.mode = flowConfig
		m.configFlow = flow.NewConfigFlow(m.store)
		return m.applyResult(m.configFlow.StepReauth(context.Background(), msg.uniqueID))

	case startOptionsMsg:
		optFlow, err := flow.NewOptionsFlow(m.store, msg.uniqueID)
		if err != nil {
			m.LastError = err
			m.LastResult = flow.Result{Kind: flow.ResultAbort, Reason: "entry_not_found"}
			return m.transitionTo(ScreenFailure)
		}
		m.mode = flowOptions
		m.optionsFlow = optFlow
		return m.applyResult(m.optionsFlow.StepInit(nil))

	case formSubmitMsg:
		return m.submitStep(msg)

	case stepResultMsg:
		return m.applyResult(msg.result)

	case spinner.TickMsg:
		if m.CurrentScreen == ScreenBusy {
			var cmd tea.Cmd
			m.Spinner, cmd = m.Spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Route to current screen
	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenAccounts:
		updated, c := m.AccountsModel.Update(msg)
		m.AccountsModel = updated.(AccountsModel)
		cmd = c

	case ScreenForm:
		updated, c := m.FormModel.Update(msg)
		m.FormModel = updated.(FormModel)
		cmd = c

	case ScreenSuccess:
		return m.handleSuccessScreen(msg)

	case ScreenFailure:
		return m.handleFailureScreen(msg)
	}

	return m, cmd
}

// submitStep runs the flow step for a submitted form. Config flow steps
// call the account service, so they run as a command behind the busy
// screen; options flow steps are local and apply immediately.
func (m AppModel) submitStep(msg formSubmitMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case flowConfig:
		f := m.configFlow
		input := toStringMap(msg.values)
		stepID := msg.stepID

		m.BusyText = busyText(stepID)
		model, _ := m.transitionTo(ScreenBusy)
		return model, tea.Batch(
			m.Spinner.Tick,
			func() tea.Msg {
				var result flow.Result
				switch stepID {
				case flow.StepCode:
					result = f.StepCode(context.Background(), input)
				default:
					result = f.StepUser(context.Background(), input)
				}
				return stepResultMsg{result: result}
			},
		)

	case flowOptions:
		switch msg.stepID {
		case flow.StepCamera:
			return m.applyResult(m.optionsFlow.StepCamera(msg.values))
		default:
			return m.applyResult(m.optionsFlow.StepUser(msg.values))
		}
	}

	return m, nil
}

// busyText returns the progress message for a config flow step
func busyText(stepID string) string {
	if stepID == flow.StepCode {
		return "Verifying code and fetching account session..."
	}
	return "Requesting a verification code by email..."
}

// toStringMap narrows form values to the string map the config flow takes
func toStringMap(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}

// applyResult transitions screens based on a flow step result
func (m AppModel) applyResult(result flow.Result) (tea.Model, tea.Cmd) {
	m.LastResult = result
	if m.mode == flowConfig && m.configFlow != nil {
		m.LastError = m.configFlow.LastError()
	} else {
		m.LastError = nil
	}

	switch result.Kind {
	case flow.ResultShowForm:
		m.FormModel = NewFormModel(result)
		m.FormModel.Width = m.Width
		m.FormModel.Height = m.Height
		model, _ := m.transitionTo(ScreenForm)
		return model, m.FormModel.Init()

	case flow.ResultDone:
		return m.transitionTo(ScreenSuccess)

	default:
		return m.transitionTo(ScreenFailure)
	}
}

// showAccounts rebuilds the accounts screen from the stored registry
func (m AppModel) showAccounts() (tea.Model, tea.Cmd) {
	reg, err := m.store.Load()
	if err != nil {
		m.LastError = err
		m.LastResult = flow.Result{Kind: flow.ResultAbort, Reason: "storage_error"}
		return m.transitionTo(ScreenFailure)
	}

	m.mode = flowNone
	m.configFlow = nil
	m.optionsFlow = nil

	accounts := NewAccountsModel(reg)
	accounts.Width = m.Width
	accounts.Height = m.Height
	accounts.AccountList.SetWidth(m.Width - 4)
	accounts.AccountList.SetHeight(m.Height - 10)
	m.AccountsModel = accounts

	return m.transitionTo(ScreenAccounts)
}

// handleSuccessScreen handles user input on the success screen
func (m AppModel) handleSuccessScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.SuccessKeys.Accounts):
			return m.showAccounts()
		case key.Matches(keyMsg, m.SuccessKeys.Quit):
			return m, tea.Quit
		}
	}
	return m, nil
}

// handleFailureScreen handles user input on the failure screen
func (m AppModel) handleFailureScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.FailureKeys.Retry):
			// Retry restarts the relevant flow from the accounts screen
			return m.showAccounts()
		case key.Matches(keyMsg, m.FailureKeys.Accounts):
			return m.showAccounts()
		case key.Matches(keyMsg, m.FailureKeys.Quit):
			return m, tea.Quit
		}
	}
	return m, nil
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = screen
	return m, nil
}

// View renders the current screen
// Each screen handles its own container using RenderApplicationContainer()
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenAccounts:
		return m.AccountsModel.View()
	case ScreenForm:
		return m.FormModel.View()
	case ScreenBusy:
		return m.renderBusyScreen()
	case ScreenSuccess:
		return m.renderSuccessScreen()
	case ScreenFailure:
		return m.renderFailureScreen()
	default:
		return "Unknown screen"
	}
}

// renderBusyScreen renders the spinner while a flow step is in flight
func (m AppModel) renderBusyScreen() string {
	content := fmt.Sprintf("\n  %s %s\n", m.Spinner.View(), m.BusyText)
	return RenderApplicationContainer(content, "please wait...", m.Width, m.Height)
}

// renderSuccessScreen renders the success result screen
func (m AppModel) renderSuccessScreen() string {
	content := m.buildSuccessContent()
	helpText := m.Help.View(m.SuccessKeys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildSuccessContent builds the success screen content
func (m AppModel) buildSuccessContent() string {
	var b strings.Builder

	switch m.mode {
	case flowConfig:
		b.WriteString(RenderTitle("✓ Account Linked Successfully!"))
		b.WriteString("\n\n")
		b.WriteString(SuccessBoxStyle.Render(fmt.Sprintf("  %s is now configured.", m.LastResult.Title)))
		b.WriteString("\n\n")
		b.WriteString("  Select the account to edit camera or vacuum options.\n")
	default:
		b.WriteString(RenderTitle("✓ Options Saved"))
		b.WriteString("\n\n")
		b.WriteString(SuccessBoxStyle.Render(fmt.Sprintf("  Options for %s were updated.", m.LastResult.UniqueID)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  Enter - Back to accounts"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  q     - Exit application"))
	b.WriteString("\n")

	return b.String()
}

// renderFailureScreen renders the failure result screen
func (m AppModel) renderFailureScreen() string {
	content := m.buildFailureContent()
	helpText := m.Help.View(m.FailureKeys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildFailureContent builds the failure screen content
func (m AppModel) buildFailureContent() string {
	var b strings.Builder

	if m.LastResult.Reason == flow.AbortAlreadyConfigured {
		b.WriteString(RenderTitle("Account Already Configured"))
		b.WriteString("\n\n")
		b.WriteString(WarningBoxStyle.Render("⚠ This account is already linked. Use 'r' on the accounts screen to relink it."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(RenderTitle("✗ Configuration Failed"))
		b.WriteString("\n\n")
		if m.LastError != nil {
			b.WriteString(RenderError(fmt.Sprintf("Error: %v", m.LastError)))
			b.WriteString("\n\n")
			if hint := account.GetTroubleshootingHint(m.LastError); hint != "" {
				b.WriteString("  " + SubtitleStyle.Render(hint))
				b.WriteString("\n\n")
			}
		}
		b.WriteString("  See " + urls.TroubleshootingGuide + "\n\n")
	}

	b.WriteString("What would you like to do?\n\n")
	b.WriteString(MenuItemStyle.Render("  r     - Start over"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  Enter - Back to accounts"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  q     - Exit application"))
	b.WriteString("\n")

	return b.String()
}

// Run starts the wizard over the given entry store, blocking until the
// user exits.
func Run(store *entry.Store) error {
	model, err := NewAppModel(store)
	if err != nil {
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
