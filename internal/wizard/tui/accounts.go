package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skovtroldenhugo/roborock/internal/entry"
)

// Messages emitted by the accounts screen
type startConfigMsg struct{}
type startOptionsMsg struct{ uniqueID string }
type startReauthMsg struct{ uniqueID string }

// accountsKeyMap defines key bindings for the accounts screen
type accountsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Add    key.Binding
	Reauth key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k accountsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Add, k.Reauth, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k accountsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Add, k.Reauth, k.Quit},
	}
}

// emptyAccountsKeyMap defines key bindings when no account is linked yet
type emptyAccountsKeyMap struct {
	Add  key.Binding
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k emptyAccountsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k emptyAccountsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Quit},
	}
}

// accountItem wraps a configured entry for use with bubbles/list
type accountItem struct {
	uniqueID string
	entry    *entry.Entry
}

// FilterValue implements list.Item
func (a accountItem) FilterValue() string {
	return a.uniqueID + " " + a.entry.Title
}

// Title returns the account title for list display
func (a accountItem) Title() string {
	return a.entry.Title
}

// Description returns account details for list display
func (a accountItem) Description() string {
	region := "unknown region"
	if a.entry.Data.UserData != nil && a.entry.Data.UserData.Region != "" {
		region = a.entry.Data.UserData.Region
	}
	return fmt.Sprintf("%s • linked %s", region, a.entry.CreatedAt.Format("2006-01-02"))
}

// AccountsModel is the landing screen: the list of linked accounts with
// actions to edit options, relink, or add another account.
type AccountsModel struct {
	AccountList list.Model

	// UI state
	Width     int
	Height    int
	Help      help.Model
	Keys      accountsKeyMap
	EmptyKeys emptyAccountsKeyMap
}

// NewAccountsModel creates the accounts screen from the registry contents
func NewAccountsModel(reg *entry.Registry) AccountsModel {
	items := accountItems(reg)

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(HighlightColor).
		BorderForeground(HighlightColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(HighlightColor).
		BorderForeground(HighlightColor)

	accountList := list.New(items, delegate, 0, 0)
	accountList.Title = "Linked Accounts"
	accountList.SetShowStatusBar(false)
	accountList.SetShowHelp(false)
	accountList.SetFilteringEnabled(false)
	accountList.Styles.Title = TitleStyle

	keys := accountsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit options"),
		),
		Add: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "link account"),
		),
		Reauth: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "relink"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	emptyKeys := emptyAccountsKeyMap{
		Add: key.NewBinding(
			key.WithKeys("n", "enter"),
			key.WithHelp("n", "link account"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	return AccountsModel{
		AccountList: accountList,
		Help:        help.New(),
		Keys:        keys,
		EmptyKeys:   emptyKeys,
	}
}

// accountItems converts registry entries into sorted list items
func accountItems(reg *entry.Registry) []list.Item {
	ids := reg.UniqueIDs()
	items := make([]list.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, accountItem{uniqueID: id, entry: reg.Get(id)})
	}
	return items
}

// Init initializes the accounts model
func (m AccountsModel) Init() tea.Cmd {
	return nil
}

// selectedID returns the unique ID of the highlighted account, if any
func (m AccountsModel) selectedID() (string, bool) {
	item, ok := m.AccountList.SelectedItem().(accountItem)
	if !ok {
		return "", false
	}
	return item.uniqueID, true
}

// Update handles messages and updates the model
func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.AccountList.SetWidth(msg.Width - 4)
		m.AccountList.SetHeight(msg.Height - 10) // Leave room for header/footer

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, func() tea.Msg { return quitMsg{} }

		case key.Matches(msg, m.Keys.Add):
			return m, func() tea.Msg { return startConfigMsg{} }

		case key.Matches(msg, m.Keys.Enter):
			if id, ok := m.selectedID(); ok {
				return m, func() tea.Msg { return startOptionsMsg{uniqueID: id} }
			}
			return m, func() tea.Msg { return startConfigMsg{} }

		case key.Matches(msg, m.Keys.Reauth):
			if id, ok := m.selectedID(); ok {
				return m, func() tea.Msg { return startReauthMsg{uniqueID: id} }
			}
			return m, nil
		}
	}

	m.AccountList, cmd = m.AccountList.Update(msg)
	return m, cmd
}

// View renders the accounts screen
func (m AccountsModel) View() string {
	var content string
	var helpText string

	if len(m.AccountList.Items()) == 0 {
		var b strings.Builder
		b.WriteString("\n  ")
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString(warningStyle.Render("No Roborock account linked yet"))
		b.WriteString("\n\n")
		b.WriteString("  Link your account to configure camera and vacuum options.\n")
		b.WriteString("  You will receive a verification code by email.\n")
		content = b.String()
		helpText = m.Help.View(m.EmptyKeys)
	} else {
		content = "\n" + m.AccountList.View()
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}
