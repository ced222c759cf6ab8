package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/favtasks/internal/repository"
	"github.com/tgienger/favtasks/internal/ui/keys"
	"github.com/tgienger/favtasks/internal/ui/styles"
)

// AddTaskView collects the text of a new task
type AddTaskView struct {
	repo   *repository.Repository
	styles *styles.Styles
	keys   keys.KeyMap

	input  textarea.Model
	saving bool
	err    error

	width  int
	height int
}

// NewAddTaskView creates the add task screen
func NewAddTaskView(repo *repository.Repository) *AddTaskView {
	input := textarea.New()
	input.Placeholder = "Type the task..."
	input.CharLimit = 1000
	input.SetWidth(50)
	input.SetHeight(4)
	input.ShowLineNumbers = false
	input.Focus()

	return &AddTaskView{
		repo:   repo,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		input:  input,
	}
}

type taskAddedMsg struct {
	err error
}

// Init initializes the view
func (v *AddTaskView) Init() tea.Cmd {
	return textarea.Blink
}

// Focus is a no-op; the form keeps its own state
func (v *AddTaskView) Focus() tea.Cmd {
	return nil
}

// Update handles messages
func (v *AddTaskView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.input.SetWidth(clamp(styles.ContentWidth(v.width)-10, 20, 60))
		return v, nil

	case taskAddedMsg:
		v.saving = false
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		return v, goBack

	case tea.KeyMsg:
		if v.saving {
			return v, nil
		}
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, goBack
		case key.Matches(msg, v.keys.Save):
			return v, v.save()
		}
		v.err = nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *AddTaskView) save() tea.Cmd {
	text := v.input.Value()
	v.saving = true
	return func() tea.Msg {
		_, err := v.repo.AddTask(context.Background(), text)
		return taskAddedMsg{err: err}
	}
}

// View renders the view
func (v *AddTaskView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	status := s.TitleMuted.Render("Ctrl+S: save • Esc: back")
	if v.saving {
		status = s.TitleMuted.Render("Saving...")
	}
	if v.err != nil {
		status = s.Error.Render(errorText(v.err))
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Task"),
		"",
		s.InputFocused.Render(v.input.View()),
		"",
		s.ButtonPrimary.Render(" Save Task "),
		"",
		status,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
