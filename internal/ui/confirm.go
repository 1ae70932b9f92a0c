package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Confirm is a yes/no prompt.
// Enter accepts the current value.
type Confirm struct {
	title    string
	desc     string
	value    *bool
	answered bool
}

var _ Field = (*Confirm)(nil)

// NewConfirm builds a new confirmation prompt.
// It defaults to no.
func NewConfirm() *Confirm {
	return &Confirm{value: new(bool)}
}

// WithTitle sets the title of the prompt.
func (c *Confirm) WithTitle(title string) *Confirm {
	c.title = title
	return c
}

// WithDescription sets the description of the prompt.
func (c *Confirm) WithDescription(desc string) *Confirm {
	c.desc = desc
	return c
}

// WithValue sets the destination of the answer.
// Its current value is the default.
func (c *Confirm) WithValue(value *bool) *Confirm {
	c.value = value
	return c
}

// Title returns the title of the prompt.
func (c *Confirm) Title() string { return c.title }

// Description returns the description of the prompt.
func (c *Confirm) Description() string { return c.desc }

// Err always returns nil: every answer is valid.
func (*Confirm) Err() error { return nil }

// Init does nothing.
func (*Confirm) Init() tea.Cmd { return nil }

// Update handles y/n key presses.
// Typing y or n also accepts the answer.
func (c *Confirm) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "y", "Y":
		*c.value = true
		c.answered = true
	case "n", "N":
		*c.value = false
		c.answered = true
	case "left", "right", "tab", "h", "l":
		*c.value = !*c.value
	}
	return nil
}

// Accepted reports whether the answer was typed directly.
func (c *Confirm) Accepted() bool {
	return c.answered
}

// View renders the prompt.
func (c *Confirm) View() string {
	yes, no := "y", "N"
	if *c.value {
		yes, no = "Y", "n"
		yes = _selectedStyle.Render(yes)
	} else {
		no = _selectedStyle.Render(no)
	}
	return "[" + yes + "/" + no + "]"
}
