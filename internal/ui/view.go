// Package ui implements interactive prompts for the command line.
//
// Prompts are described as [Field]s and presented through a [View].
// Non-interactive views refuse to prompt with [ErrPrompt].
package ui

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrPrompt is returned when a prompt is needed
// but the view is not interactive.
var ErrPrompt = errors.New("prompt not allowed in non-interactive mode")

// View is where output is written.
type View interface {
	io.Writer
}

// InteractiveView is a View that can prompt the user for input.
type InteractiveView interface {
	View

	// Prompt presents the given fields to the user one after another,
	// returning after all of them have been accepted.
	Prompt(fields ...Field) error
}

// Interactive reports whether v can prompt the user.
func Interactive(v View) bool {
	_, ok := v.(InteractiveView)
	return ok
}

// Run prompts the user for the given fields.
// It returns ErrPrompt if v is not interactive.
func Run(v View, fields ...Field) error {
	iv, ok := v.(InteractiveView)
	if !ok {
		return ErrPrompt
	}
	return iv.Prompt(fields...)
}

// FileView is a non-interactive View that writes to a file.
type FileView struct {
	W io.Writer
}

var _ View = (*FileView)(nil)

func (v *FileView) Write(p []byte) (int, error) {
	return v.W.Write(p)
}

// TerminalView is an interactive View backed by a terminal.
type TerminalView struct {
	R io.Reader // required
	W io.Writer // required
}

var _ InteractiveView = (*TerminalView)(nil)

func (v *TerminalView) Write(p []byte) (int, error) {
	return v.W.Write(p)
}

// Prompt runs a bubbletea program on the terminal until
// every field has been accepted or the user cancels.
func (v *TerminalView) Prompt(fields ...Field) error {
	if len(fields) == 0 {
		return nil
	}

	form := NewForm(fields...)
	_, err := tea.NewProgram(form,
		tea.WithInput(v.R),
		tea.WithOutput(v.W),
	).Run()
	if err != nil {
		return fmt.Errorf("run prompt: %w", err)
	}
	return form.Err()
}
