package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user cancels a prompt.
var ErrCancelled = errors.New("prompt cancelled")

// Field is a single input in a form.
type Field interface {
	// Init returns the initial command for the field.
	Init() tea.Cmd

	// Update handles a message while the field is focused.
	Update(msg tea.Msg) tea.Cmd

	// View renders the input portion of the field.
	View() string

	// Title and Description are rendered above the field.
	Title() string
	Description() string

	// Err reports whether the current value is invalid.
	// The form does not move past a field with an error.
	Err() error
}

// Form presents fields one at a time.
// It is a tea.Model.
type Form struct {
	fields []Field
	done   []string // rendered summaries of accepted fields
	focus  int
	err    error
	failed error // last validation error, shown below the field
}

var _ tea.Model = (*Form)(nil)

// NewForm builds a form for the given fields.
func NewForm(fields ...Field) *Form {
	return &Form{fields: fields}
}

// Err reports why the form ended early, if it did.
func (f *Form) Err() error {
	return f.err
}

// Done reports whether all fields were accepted.
func (f *Form) Done() bool {
	return f.focus >= len(f.fields)
}

// Init initializes the first field.
func (f *Form) Init() tea.Cmd {
	if f.Done() {
		return tea.Quit
	}
	return f.fields[0].Init()
}

// Update handles a message.
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if f.Done() || f.err != nil {
		return f, tea.Quit
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			f.err = ErrCancelled
			return f, tea.Quit

		case tea.KeyEnter:
			return f, f.accept()
		}
	}

	f.failed = nil
	field := f.fields[f.focus]
	cmd := field.Update(msg)
	if a, ok := field.(interface{ Accepted() bool }); ok && a.Accepted() {
		return f, tea.Batch(cmd, f.accept())
	}
	return f, cmd
}

func (f *Form) accept() tea.Cmd {
	field := f.fields[f.focus]
	if err := field.Err(); err != nil {
		f.failed = err
		return nil
	}

	f.failed = nil
	if b, ok := field.(interface{ Blur() }); ok {
		b.Blur()
	}
	f.done = append(f.done, _titleStyle.Render(field.Title())+" "+field.View())
	f.focus++
	if f.Done() {
		return tea.Quit
	}
	return f.fields[f.focus].Init()
}

// View renders the form.
func (f *Form) View() string {
	var sb strings.Builder
	for _, line := range f.done {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if f.Done() || f.err != nil {
		return sb.String()
	}

	field := f.fields[f.focus]
	sb.WriteString(_titleStyle.Render(field.Title()))
	sb.WriteString(" ")
	sb.WriteString(field.View())
	sb.WriteByte('\n')
	if desc := field.Description(); desc != "" {
		sb.WriteString(_descriptionStyle.Render(desc))
		sb.WriteByte('\n')
	}
	if f.failed != nil {
		sb.WriteString(_errorStyle.Render(f.failed.Error()))
		sb.WriteByte('\n')
	}
	return sb.String()
}
