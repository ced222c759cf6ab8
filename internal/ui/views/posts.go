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

// PostsView lists posts from the remote API and lets the user star them
type PostsView struct {
	repo   *repository.Repository
	posts  PostLister
	limit  int
	styles *styles.Styles
	keys   keys.KeyMap

	items     []models.Post
	favorites []models.Favorite
	loading   Loading
	loaded    bool
	cursor    int
	scrollY   int
	err       error

	width  int
	height int
}

// NewPostsView creates the posts screen showing at most limit posts; zero
// means no limit
func NewPostsView(repo *repository.Repository, posts PostLister, limit int) *PostsView {
	return &PostsView{
		repo:    repo,
		posts:   posts,
		limit:   limit,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		loading: NewLoading("Loading posts..."),
	}
}

type postsLoadedMsg struct {
	posts []models.Post
	err   error
}

type postFavoritesMsg struct {
	favorites []models.Favorite
	err       error
}

// Init initializes the view
func (v *PostsView) Init() tea.Cmd {
	return tea.Batch(v.loading.Start(), v.loadPosts, v.loadFavorites)
}

// Focus reloads the favorites, which the favorites screen may have changed
func (v *PostsView) Focus() tea.Cmd {
	return v.loadFavorites
}

func (v *PostsView) loadPosts() tea.Msg {
	posts, err := v.posts.ListPosts(context.Background())
	if err != nil {
		return postsLoadedMsg{err: err}
	}
	if v.limit > 0 && len(posts) > v.limit {
		posts = posts[:v.limit]
	}
	return postsLoadedMsg{posts: posts}
}

func (v *PostsView) loadFavorites() tea.Msg {
	v.repo.Reload(context.Background())
	return postFavoritesMsg{favorites: v.repo.Favorites()}
}

// Update handles messages
func (v *PostsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case postsLoadedMsg:
		v.loading.Stop()
		v.loaded = true
		v.err = msg.err
		if msg.err == nil {
			v.items = msg.posts
		}
		if v.cursor >= len(v.items) {
			v.cursor = max(0, len(v.items)-1)
		}
		return v, nil

	case postFavoritesMsg:
		v.favorites = msg.favorites
		if msg.err != nil {
			v.err = msg.err
		}
		return v, nil

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, v.loading.Update(msg)
}

func (v *PostsView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, goBack
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Refresh):
		if v.loading.Active() {
			return v, nil
		}
		v.err = nil
		return v, tea.Batch(v.loading.Start(), v.loadPosts)
	case key.Matches(msg, v.keys.Favorites):
		return v, func() tea.Msg { return OpenFavorites{} }
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.items)-1 {
			v.cursor++
			v.ensureVisible()
		}
	case key.Matches(msg, v.keys.Favorite), key.Matches(msg, v.keys.Enter):
		if v.cursor < len(v.items) {
			post := v.items[v.cursor]
			return v, func() tea.Msg {
				_, err := v.repo.TogglePostFavorite(context.Background(), post)
				return postFavoritesMsg{favorites: v.repo.Favorites(), err: err}
			}
		}
	}
	return v, nil
}

// isFavorite checks the loaded favorites for the post ID
func (v *PostsView) isFavorite(id int) bool {
	for _, f := range v.favorites {
		if f.HasPostID(id) {
			return true
		}
	}
	return false
}

// each post takes two lines
func (v *PostsView) visibleRows() int {
	return max(1, (v.height-8)/2)
}

func (v *PostsView) ensureVisible() {
	rows := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+rows {
		v.scrollY = v.cursor - rows + 1
	}
}

// View renders the view
func (v *PostsView) View() string {
	s := v.styles

	if v.loading.Active() && !v.loaded {
		return v.loading.View(s, v.width, v.height)
	}

	contentWidth := styles.ContentWidth(v.width)
	textWidth := max(contentWidth-10, 10)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		s.Title.Render("Posts"),
		"   ",
		s.Button.Render(fmt.Sprintf(" ★ Favorites (%d) ", len(v.favorites))),
	))
	if v.loading.Active() {
		b.WriteString("  " + v.loading.spinner.View())
	}
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(s.StatusBar.Render(s.Error.Render(errorText(v.err))))
		b.WriteString("\n\n")
	}

	if len(v.items) == 0 && v.err == nil {
		b.WriteString(s.TitleMuted.Render("No posts"))
		b.WriteString("\n")
	}

	end := min(len(v.items), v.scrollY+v.visibleRows())
	var rows []string
	for i := v.scrollY; i < end; i++ {
		p := v.items[i]
		line := fmt.Sprintf("%s %s\n  %s",
			star(s, v.isFavorite(p.ID)),
			truncate(p.Title, textWidth),
			s.TitleMuted.Render(truncate(p.Body, textWidth)),
		)
		style := s.ListItem
		if i == v.cursor {
			style = s.ListSelected
		}
		rows = append(rows, style.Width(contentWidth-4).Render(line))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")
	b.WriteString(renderHelpLine(s, "s", "star", "r", "refresh", "f", "favorites", "esc", "back"))

	return styles.CenterView(b.String(), v.width, v.height)
}
