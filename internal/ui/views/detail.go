package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/favtasks/internal/models"
	"github.com/tgienger/favtasks/internal/repository"
	"github.com/tgienger/favtasks/internal/ui/keys"
	"github.com/tgienger/favtasks/internal/ui/styles"
)

// TaskDetailView shows one task read-only with a few statistics
type TaskDetailView struct {
	repo   *repository.Repository
	styles *styles.Styles
	keys   keys.KeyMap

	index int
	task  models.Task
	err   error

	width  int
	height int
}

// NewTaskDetailView creates the detail screen for the task at index
func NewTaskDetailView(repo *repository.Repository, index int) *TaskDetailView {
	v := &TaskDetailView{
		repo:   repo,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		index:  index,
	}
	v.task, v.err = repo.Task(index)
	return v
}

// Init initializes the view
func (v *TaskDetailView) Init() tea.Cmd {
	return nil
}

// Focus re-reads the task, which may have been edited
func (v *TaskDetailView) Focus() tea.Cmd {
	v.task, v.err = v.repo.Task(v.index)
	return nil
}

// Update handles messages
func (v *TaskDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, goBack
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Edit):
			if v.err == nil {
				index := v.index
				return v, func() tea.Msg { return OpenEditTask{Index: index} }
			}
		}
	}
	return v, nil
}

// View renders the view
func (v *TaskDetailView) View() string {
	s := v.styles
	if v.err != nil {
		return renderError(s, v.width, v.height, v.err, false)
	}

	contentWidth := styles.ContentWidth(v.width)
	cardWidth := clamp(contentWidth-6, 20, 60)

	updated := ""
	if v.task.UpdatedAt != nil {
		updated = "\n" + s.CardLabel.Render("Updated: ") + formatDate(*v.task.UpdatedAt)
	}

	card := s.Card.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(fmt.Sprintf("Task #%d", v.index+1)),
		"",
		s.CardLabel.Render("Description:"),
		lipgloss.NewStyle().Width(cardWidth-2).Render(v.task.Text),
		"",
		s.CardLabel.Render("Created: ")+formatDate(v.task.CreatedAt)+updated,
		"",
		s.CardLabel.Render("Statistics:"),
		fmt.Sprintf("• Characters: %d", v.task.CharCount()),
		fmt.Sprintf("• Words: %d", v.task.WordCount()),
	))

	content := lipgloss.JoinVertical(lipgloss.Left,
		card,
		renderHelpLine(s, "e", "edit", "esc", "back"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
