package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Input is a single line text prompt.
type Input struct {
	model    textinput.Model
	title    string
	desc     string
	value    *string
	validate func(string) error
}

var _ Field = (*Input)(nil)

// NewInput builds a new text input.
func NewInput() *Input {
	m := textinput.New()
	m.Prompt = ""
	return &Input{
		model:    m,
		value:    new(string),
		validate: func(string) error { return nil },
	}
}

// WithTitle sets the title of the input.
func (i *Input) WithTitle(title string) *Input {
	i.title = title
	return i
}

// WithDescription sets the description of the input.
func (i *Input) WithDescription(desc string) *Input {
	i.desc = desc
	return i
}

// WithValue sets the destination for the entered text.
// Its current contents are the default value.
func (i *Input) WithValue(value *string) *Input {
	i.value = value
	i.model.SetValue(*value)
	return i
}

// WithValidate sets a function that must accept the value
// before the input can be submitted.
func (i *Input) WithValidate(validate func(string) error) *Input {
	i.validate = validate
	return i
}

// WithHidden masks the typed characters.
func (i *Input) WithHidden() *Input {
	i.model.EchoMode = textinput.EchoPassword
	i.model.EchoCharacter = '*'
	return i
}

// Title returns the title of the input.
func (i *Input) Title() string { return i.title }

// Description returns the description of the input.
func (i *Input) Description() string { return i.desc }

// Err reports whether the current value fails validation.
func (i *Input) Err() error {
	return i.validate(i.model.Value())
}

// Init focuses the input.
func (i *Input) Init() tea.Cmd {
	i.model.CursorEnd()
	return i.model.Focus()
}

// Blur removes focus from the input.
func (i *Input) Blur() {
	i.model.Blur()
}

// Update handles a key press.
func (i *Input) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.model, cmd = i.model.Update(msg)
	*i.value = i.model.Value()
	return cmd
}

// View renders the input.
func (i *Input) View() string {
	if !i.model.Focused() {
		if i.model.EchoMode == textinput.EchoPassword {
			return strings.Repeat("*", len([]rune(i.model.Value())))
		}
		return i.model.Value()
	}
	return i.model.View()
}
