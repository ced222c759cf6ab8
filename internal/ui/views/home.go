package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/favtasks/internal/models"
	"github.com/tgienger/favtasks/internal/repository"
	"github.com/tgienger/favtasks/internal/ui/keys"
	"github.com/tgienger/favtasks/internal/ui/styles"
)

// HomeView lists the tasks with their favorite markers
type HomeView struct {
	repo   *repository.Repository
	styles *styles.Styles
	keys   keys.KeyMap

	tasks     []models.Task
	favorites []models.Favorite
	loaded    bool

	width   int
	height  int
	cursor  int
	scrollY int

	// Delete confirmation
	confirmingDelete bool
	deleteIndex      int

	// Last operation error, shown in the status line
	err error

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewHomeView creates the home screen
func NewHomeView(repo *repository.Repository) *HomeView {
	return &HomeView{
		repo:   repo,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

type homeLoadedMsg struct {
	tasks     []models.Task
	favorites []models.Favorite
}

type homeOpDoneMsg struct {
	err error
}

// Init initializes the view
func (v *HomeView) Init() tea.Cmd {
	return v.loadTasks
}

// Focus reloads the lists from storage
func (v *HomeView) Focus() tea.Cmd {
	return v.loadTasks
}

func (v *HomeView) loadTasks() tea.Msg {
	v.repo.Reload(context.Background())
	return homeLoadedMsg{tasks: v.repo.Tasks(), favorites: v.repo.Favorites()}
}

// snapshot reads the repository's current lists without touching storage
func (v *HomeView) snapshot() tea.Msg {
	return homeLoadedMsg{tasks: v.repo.Tasks(), favorites: v.repo.Favorites()}
}

// Update handles messages
func (v *HomeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case homeLoadedMsg:
		v.tasks = msg.tasks
		v.favorites = msg.favorites
		v.loaded = true
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		v.ensureVisible()
		return v, nil

	case homeOpDoneMsg:
		v.err = msg.err
		return v, v.snapshot

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *HomeView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		return v, func() tea.Msg { return OpenAddTask{} }

	case key.Matches(msg, v.keys.Favorites):
		return v, func() tea.Msg { return OpenFavorites{} }

	case key.Matches(msg, v.keys.Posts):
		return v, func() tea.Msg { return OpenPosts{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	if len(v.tasks) == 0 {
		return v, nil
	}
	index := v.cursor

	switch {
	case key.Matches(msg, v.keys.Enter):
		return v, func() tea.Msg { return OpenTaskDetail{Index: index} }

	case key.Matches(msg, v.keys.Edit):
		return v, func() tea.Msg { return OpenEditTask{Index: index} }

	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
		v.deleteIndex = index
		return v, nil

	case key.Matches(msg, v.keys.Favorite):
		task := v.tasks[index]
		return v, func() tea.Msg {
			_, err := v.repo.ToggleFavorite(context.Background(), task, index)
			return homeOpDoneMsg{err: err}
		}
	}

	return v, nil
}

func (v *HomeView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		v.confirmingDelete = false
		index := v.deleteIndex
		return v, func() tea.Msg {
			return homeOpDoneMsg{err: v.repo.RemoveTask(context.Background(), index)}
		}
	case key.Matches(msg, v.keys.Cancel):
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// isFavorite checks the loaded favorites for a task favorite at index
func (v *HomeView) isFavorite(index int) bool {
	for _, f := range v.favorites {
		if f.HasIndex(index) {
			return true
		}
	}
	return false
}

func (v *HomeView) visibleRows() int {
	return max(1, v.height-8)
}

func (v *HomeView) ensureVisible() {
	rows := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+rows {
		v.scrollY = v.cursor - rows + 1
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

// View renders the view
func (v *HomeView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		text := ""
		if v.deleteIndex < len(v.tasks) {
			text = truncate(v.tasks[v.deleteIndex].Text, 40)
		}
		return renderConfirm(v.styles, v.width, v.height, "Remove Task?", fmt.Sprintf("Remove %q?", text))
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.tasks) == 0 {
		return v.renderEmpty()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	if v.err != nil {
		b.WriteString(v.styles.StatusBar.Render(v.styles.Error.Render(errorText(v.err))))
		b.WriteString("\n")
	}
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *HomeView) renderHeader() string {
	s := v.styles
	favLabel := fmt.Sprintf(" ★ Favorites (%d) ", len(v.favorites))
	return lipgloss.JoinHorizontal(lipgloss.Center,
		s.Title.Render("My Tasks"),
		"   ",
		s.Button.Render(favLabel),
	)
}

func (v *HomeView) renderTaskList() string {
	contentWidth := styles.ContentWidth(v.width)
	textWidth := max(contentWidth-12, 10)

	end := min(len(v.tasks), v.scrollY+v.visibleRows())
	var rows []string
	for i := v.scrollY; i < end; i++ {
		line := fmt.Sprintf("%s %s", star(v.styles, v.isFavorite(i)), truncate(v.tasks[i].Text, textWidth))
		if i == v.cursor {
			rows = append(rows, v.styles.ListSelected.Width(contentWidth-4).Render(line))
		} else {
			rows = append(rows, v.styles.ListItem.Width(contentWidth-4).Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *HomeView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	lines := []string{
		s.Title.Render("No tasks yet"),
		"",
		s.TitleMuted.Render("Press 'n' to add one"),
		"",
		s.ButtonPrimary.Render(" + New Task "),
	}
	if len(v.favorites) > 0 {
		lines = append(lines, "", s.TitleMuted.Render(fmt.Sprintf("'f' shows %d favorites", len(v.favorites))))
	}

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *HomeView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return renderHelpLine(v.styles,
		"↵", "view",
		"n", "new",
		"e", "edit",
		"d", "del",
		"s", "star",
		"f", "favorites",
		"p", "posts",
		"q", "quit",
	)
}

func (v *HomeView) renderHelpPopup() string {
	s := v.styles
	return renderPopup(s, v.width, v.height, "Keyboard Shortcuts", []string{
		s.HelpKey.Render("↵") + "      view task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("d") + "      remove task",
		s.HelpKey.Render("s") + "      toggle favorite",
		s.HelpKey.Render("f") + "      favorites",
		s.HelpKey.Render("p") + "      posts",
		s.HelpKey.Render("q") + "      quit",
	})
}
