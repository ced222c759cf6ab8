package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/favtasks/internal/models"
	"github.com/tgienger/favtasks/internal/repository"
	"github.com/tgienger/favtasks/internal/ui/keys"
	"github.com/tgienger/favtasks/internal/ui/styles"
)

// editState is where the edit screen is in its save flow
type editState int

const (
	editStateEditing editState = iota
	editStateSaving
	editStateFailed
	editStateDone
)

// EditTaskView edits the text of one task. Saving confirms the change with
// the remote API before anything is written locally.
type EditTaskView struct {
	repo   *repository.Repository
	styles *styles.Styles
	keys   keys.KeyMap

	index    int
	original models.Task
	loadErr  error

	input    textarea.Model
	loading  Loading
	state    editState
	err      error
	lastText string

	width  int
	height int
}

// NewEditTaskView creates the edit screen prefilled with the task at index
func NewEditTaskView(repo *repository.Repository, index int) *EditTaskView {
	input := textarea.New()
	input.Placeholder = "Describe the task..."
	input.CharLimit = 1000
	input.SetWidth(50)
	input.SetHeight(5)
	input.ShowLineNumbers = false

	v := &EditTaskView{
		repo:    repo,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		index:   index,
		input:   input,
		loading: NewLoading("Updating task..."),
	}
	v.original, v.loadErr = repo.Task(index)
	v.input.SetValue(v.original.Text)
	v.input.Focus()
	return v
}

type taskEditedMsg struct {
	err error
}

// Init initializes the view
func (v *EditTaskView) Init() tea.Cmd {
	return textarea.Blink
}

// Focus is a no-op; the form keeps its own state
func (v *EditTaskView) Focus() tea.Cmd {
	return nil
}

// Update handles messages
func (v *EditTaskView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.input.SetWidth(clamp(styles.ContentWidth(v.width)-10, 20, 60))
		return v, nil

	case taskEditedMsg:
		v.loading.Stop()
		if msg.err != nil {
			v.err = msg.err
			if retryable(msg.err) {
				v.state = editStateFailed
			} else {
				v.state = editStateEditing
			}
			return v, nil
		}
		v.err = nil
		v.state = editStateDone
		return v, nil

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, v.loading.Update(msg)
}

func (v *EditTaskView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.loadErr != nil {
		if key.Matches(msg, v.keys.Back) {
			return v, goBack
		}
		return v, nil
	}

	switch v.state {
	case editStateSaving:
		return v, nil

	case editStateDone:
		if key.Matches(msg, v.keys.Enter) || key.Matches(msg, v.keys.Back) {
			return v, goBack
		}
		return v, nil

	case editStateFailed:
		switch {
		case key.Matches(msg, v.keys.Refresh):
			return v, v.submit(v.lastText)
		case key.Matches(msg, v.keys.Back):
			v.state = editStateEditing
			v.err = nil
		}
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		return v, goBack
	case key.Matches(msg, v.keys.Save):
		return v, v.submit(v.input.Value())
	}

	v.err = nil
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit validates the input locally, then runs the remote check and the
// local commit as one command
func (v *EditTaskView) submit(text string) tea.Cmd {
	edit, err := v.repo.PrepareEdit(v.index, text)
	if err != nil {
		v.err = err
		v.state = editStateEditing
		return nil
	}

	v.lastText = text
	v.state = editStateSaving
	v.err = nil

	repo := v.repo
	run := func() tea.Msg {
		ctx := context.Background()
		if err := repo.ValidateEdit(ctx, edit); err != nil {
			return taskEditedMsg{err: err}
		}
		return taskEditedMsg{err: repo.CommitEdit(ctx, edit)}
	}
	return tea.Batch(v.loading.Start(), run)
}

// View renders the view
func (v *EditTaskView) View() string {
	s := v.styles

	if v.loadErr != nil {
		return renderError(s, v.width, v.height, v.loadErr, false)
	}

	switch v.state {
	case editStateSaving:
		return v.loading.View(s, v.width, v.height)
	case editStateFailed:
		return renderError(s, v.width, v.height, v.err, true)
	case editStateDone:
		return v.renderDone()
	}

	contentWidth := styles.ContentWidth(v.width)

	status := s.TitleMuted.Render("Ctrl+S: save • Esc: cancel")
	if v.err != nil {
		status = s.Error.Render(errorText(v.err))
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Edit Task"),
		"",
		s.CardLabel.Render(fmt.Sprintf("Task #%d", v.index+1))+
			s.TitleMuted.Render("  created "+formatDate(v.original.CreatedAt)),
		"",
		s.InputFocused.Render(v.input.View()),
		"",
		s.ButtonPrimary.Render(" Save Changes "),
		"",
		status,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *EditTaskView) renderDone() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Success.Render("Task updated"),
		"",
		s.ButtonPrimary.Render(" OK "),
	)
	centered := lipgloss.Place(styles.ContentWidth(v.width), v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
