package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/favtasks/internal/repository"
	"github.com/tgienger/favtasks/internal/ui/views"
)

// App is the root model. It owns a stack of screens with the home screen
// at the bottom; navigation messages push and pop it.
type App struct {
	repo      *repository.Repository
	posts     views.PostLister
	postLimit int

	stack  []views.Screen
	width  int
	height int
}

// Creates a new application
func NewApp(repo *repository.Repository, posts views.PostLister, postLimit int) *App {
	return &App{
		repo:      repo,
		posts:     posts,
		postLimit: postLimit,
		stack:     []views.Screen{views.NewHomeView(repo)},
	}
}

func (a *App) Init() tea.Cmd {
	return a.top().Init()
}

// Depth is the number of screens on the stack
func (a *App) Depth() int {
	return len(a.stack)
}

// Current returns the visible screen
func (a *App) Current() views.Screen {
	return a.top()
}

func (a *App) top() views.Screen {
	return a.stack[len(a.stack)-1]
}

func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

// push shows a new screen sized to the window
func (a *App) push(s views.Screen) tea.Cmd {
	a.stack = append(a.stack, s)
	return tea.Batch(s.Init(), a.resize)
}

// pop returns to the previous screen, which reloads its data. The home
// screen is never popped.
func (a *App) pop() tea.Cmd {
	if len(a.stack) == 1 {
		return nil
	}
	a.stack = a.stack[:len(a.stack)-1]
	return tea.Batch(a.top().Focus(), a.resize)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Screens below the top keep their size for when they come back
		for _, s := range a.stack {
			s.Update(msg)
		}
		return a, nil

	case views.OpenAddTask:
		return a, a.push(views.NewAddTaskView(a.repo))

	case views.OpenTaskDetail:
		return a, a.push(views.NewTaskDetailView(a.repo, msg.Index))

	case views.OpenEditTask:
		return a, a.push(views.NewEditTaskView(a.repo, msg.Index))

	case views.OpenFavorites:
		return a, a.push(views.NewFavoritesView(a.repo))

	case views.OpenPosts:
		return a, a.push(views.NewPostsView(a.repo, a.posts, a.postLimit))

	case views.GoBack:
		return a, a.pop()
	}

	_, cmd := a.top().Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.top().View()
}
