package teaspinner

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Spinner shows a spinner next to the step that is currently running.
type Spinner struct {
	Spinner spinner.Model
	Cancel  func()

	text string
	done bool
}

// LogMsg replaces the text shown next to the spinner.
type LogMsg string

// StopMsg stops the spinner. The last text stays on screen.
type StopMsg struct{}

func New(text string, cancel func()) Spinner {
	return Spinner{
		Spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		Cancel:  cancel,
		text:    text,
	}
}

// Init is called when the program starts and returns the initial command.
func (s Spinner) Init() tea.Cmd {
	return s.Spinner.Tick
}

// Update handles incoming messages.
func (s Spinner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if s.Cancel != nil {
				s.Cancel()
			}
			s.done = true
			return s, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.Spinner, cmd = s.Spinner.Update(msg)
		return s, cmd
	case LogMsg:
		s.text = string(msg)
	case StopMsg:
		s.done = true
		return s, tea.Quit
	}

	return s, nil
}

// View renders the UI.
func (s Spinner) View() string {
	if s.done {
		return s.text + "\n"
	}
	return fmt.Sprintf("%s %s", s.Spinner.View(), s.text)
}

// Text returns the text currently shown.
func (s Spinner) Text() string {
	return s.text
}

// Done reports whether the spinner was stopped.
func (s Spinner) Done() bool {
	return s.done
}
