package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skovtroldenhugo/roborock/internal/flow"
)

// formSubmitMsg carries the submitted values for a flow step
type formSubmitMsg struct {
	stepID string
	values map[string]any
}

// formKeyMap defines key bindings for the form screen
type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Cycle  key.Binding
	Submit key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Cycle, k.Submit, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Cycle},
		{k.Submit, k.Back},
	}
}

// fieldLabels maps field keys to human-readable labels
var fieldLabels = map[string]string{
	flow.KeyUsername:      "Email address",
	flow.KeyCode:          "Verification code",
	flow.KeyPlatform:      "Platform",
	flow.KeyMapScale:      "Map scale",
	flow.KeyMapRotate:     "Map rotation (0/90/180/270)",
	flow.KeyMapTrimLeft:   "Trim left (%)",
	flow.KeyMapTrimRight:  "Trim right (%)",
	flow.KeyMapTrimTop:    "Trim top (%)",
	flow.KeyMapTrimBottom: "Trim bottom (%)",
}

// fieldLabel returns the display label for a field key
func fieldLabel(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	return key
}

// errorMessages maps flow error keys to user-facing messages
var errorMessages = map[string]string{
	flow.ErrAuth:     "Could not send a verification code to this account. Check the email address and try again.",
	flow.ErrNoDevice: "The account service rejected the verification code. Request a new code and try again.",
	flow.ErrRequired: "required",
	flow.ErrInvalid:  "invalid value",
}

// errorMessage returns the display text for a flow error key
func errorMessage(key string) string {
	if msg, ok := errorMessages[key]; ok {
		return msg
	}
	return key
}

// stepTitles maps flow step IDs to screen titles
var stepTitles = map[string]string{
	flow.StepUser:   "Link Roborock Account",
	flow.StepCode:   "Enter Verification Code",
	flow.StepInit:   "Select Platform",
	flow.StepCamera: "Camera Map Options",
}

// FormModel renders a single flow step form: text inputs for free-form
// fields and an inline selector for fields with a fixed choice list.
// Submitting produces a formSubmitMsg; the coordinator feeds the values
// back into the active flow.
type FormModel struct {
	StepID string
	Form   flow.Form
	Errors map[string]string

	// Parallel to Form.Fields: text fields use inputs, choice fields
	// use choiceIdx (the other slot is unused for that index).
	inputs    []textinput.Model
	choiceIdx []int
	focus     int

	// UI state
	Width  int
	Height int
	Help   help.Model
	Keys   formKeyMap
}

// NewFormModel creates a form screen for a ShowForm flow result
func NewFormModel(result flow.Result) FormModel {
	keys := formKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("left", "right", " "),
			key.WithHelp("←/→", "change choice"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next/submit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}

	m := FormModel{
		StepID:    result.StepID,
		Form:      *result.Form,
		Errors:    result.Errors,
		inputs:    make([]textinput.Model, len(result.Form.Fields)),
		choiceIdx: make([]int, len(result.Form.Fields)),
		Help:      help.New(),
		Keys:      keys,
	}

	for i, field := range result.Form.Fields {
		if len(field.Choices) > 0 {
			m.choiceIdx[i] = defaultChoiceIndex(field)
			continue
		}

		input := textinput.New()
		input.SetValue(defaultToString(field.Default))
		input.Placeholder = fieldLabel(field.Key)
		input.Width = 40
		if field.Secret {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		}
		m.inputs[i] = input
	}

	m.setFocus(0)
	return m
}

// defaultChoiceIndex finds the choice matching the field default
func defaultChoiceIndex(field flow.Field) int {
	def, _ := field.Default.(string)
	for i, choice := range field.Choices {
		if choice == def {
			return i
		}
	}
	return 0
}

// defaultToString converts a schema default into text-input form
func defaultToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// setFocus moves input focus to the field at the given index
func (m *FormModel) setFocus(index int) {
	if len(m.Form.Fields) == 0 {
		return
	}
	m.focus = index
	for i := range m.inputs {
		if len(m.Form.Fields[i].Choices) > 0 {
			continue
		}
		if i == index {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// Init initializes the form model
func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Values collects the current field values keyed by field key
func (m FormModel) Values() map[string]any {
	values := make(map[string]any, len(m.Form.Fields))
	for i, field := range m.Form.Fields {
		if len(field.Choices) > 0 {
			values[field.Key] = field.Choices[m.choiceIdx[i]]
			continue
		}
		values[field.Key] = m.inputs[i].Value()
	}
	return values
}

// Update handles messages and updates the form state
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocusedInput(msg)
	}

	last := len(m.Form.Fields) - 1

	switch {
	case key.Matches(keyMsg, m.Keys.Back):
		return m, func() tea.Msg { return goBackMsg{} }

	case key.Matches(keyMsg, m.Keys.Submit):
		if m.focus < last {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		stepID, values := m.StepID, m.Values()
		return m, func() tea.Msg {
			return formSubmitMsg{stepID: stepID, values: values}
		}

	case key.Matches(keyMsg, m.Keys.Next):
		if m.focus < last {
			m.setFocus(m.focus + 1)
		}
		return m, nil

	case key.Matches(keyMsg, m.Keys.Prev):
		if m.focus > 0 {
			m.setFocus(m.focus - 1)
		}
		return m, nil

	case key.Matches(keyMsg, m.Keys.Cycle):
		if m.focusedChoices() != nil {
			m.cycleChoice(keyMsg.String() != "left")
			return m, nil
		}
	}

	return m.updateFocusedInput(msg)
}

// focusedChoices returns the choice list of the focused field, or nil
func (m FormModel) focusedChoices() []string {
	if m.focus >= len(m.Form.Fields) {
		return nil
	}
	return m.Form.Fields[m.focus].Choices
}

// cycleChoice moves the focused field's selection forward or backward
func (m *FormModel) cycleChoice(forward bool) {
	choices := m.focusedChoices()
	n := len(choices)
	if n == 0 {
		return
	}
	if forward {
		m.choiceIdx[m.focus] = (m.choiceIdx[m.focus] + 1) % n
	} else {
		m.choiceIdx[m.focus] = (m.choiceIdx[m.focus] + n - 1) % n
	}
}

// updateFocusedInput forwards a message to the focused text input
func (m FormModel) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus >= len(m.inputs) || len(m.focusedChoices()) > 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View renders the form screen
func (m FormModel) View() string {
	var b strings.Builder

	title := stepTitles[m.StepID]
	if title == "" {
		title = m.StepID
	}
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")

	// Step-level error shown above the fields
	if baseErr, ok := m.Errors[flow.ErrKeyBase]; ok {
		b.WriteString(RenderError(errorMessage(baseErr)))
		b.WriteString("\n\n")
	}

	for i, field := range m.Form.Fields {
		focused := i == m.focus

		label := fieldLabel(field.Key)
		if focused {
			b.WriteString("  " + FocusedFieldLabelStyle.Render(label))
		} else {
			b.WriteString("  " + FieldLabelStyle.Render(label))
		}
		b.WriteString("\n")

		if len(field.Choices) > 0 {
			b.WriteString(m.renderChoices(i, field))
		} else {
			b.WriteString("  " + m.inputs[i].View())
		}

		if fieldErr, ok := m.Errors[field.Key]; ok {
			b.WriteString("  " + FieldErrorStyle.Render("✗ "+errorMessage(fieldErr)))
		}
		b.WriteString("\n\n")
	}

	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(b.String(), helpText, m.Width, m.Height)
}

// renderChoices renders the inline selector for a choice field
func (m FormModel) renderChoices(index int, field flow.Field) string {
	parts := make([]string, len(field.Choices))
	for i, choice := range field.Choices {
		if i == m.choiceIdx[index] {
			parts[i] = SelectedMenuItemStyle.Render("[" + choice + "]")
		} else {
			parts[i] = MenuItemStyle.Render(choice)
		}
	}
	return "  " + strings.Join(parts, " ")
}
