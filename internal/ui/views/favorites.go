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

// confirmKind is the question the favorites screen is asking
type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmRemove
	confirmClear
)

// FavoritesView lists favorite tasks and posts
type FavoritesView struct {
	repo   *repository.Repository
	styles *styles.Styles
	keys   keys.KeyMap

	favorites []models.Favorite
	loaded    bool
	cursor    int
	confirm   confirmKind
	err       error

	width  int
	height int
}

// NewFavoritesView creates the favorites screen
func NewFavoritesView(repo *repository.Repository) *FavoritesView {
	return &FavoritesView{
		repo:   repo,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

type favoritesLoadedMsg struct {
	favorites []models.Favorite
}

type favoritesOpDoneMsg struct {
	err error
}

// Init initializes the view
func (v *FavoritesView) Init() tea.Cmd {
	return v.loadFavorites
}

// Focus reloads the favorites from storage
func (v *FavoritesView) Focus() tea.Cmd {
	return v.loadFavorites
}

func (v *FavoritesView) loadFavorites() tea.Msg {
	v.repo.Reload(context.Background())
	return favoritesLoadedMsg{favorites: v.repo.Favorites()}
}

// Update handles messages
func (v *FavoritesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case favoritesLoadedMsg:
		v.favorites = msg.favorites
		v.loaded = true
		if v.cursor >= len(v.favorites) {
			v.cursor = max(0, len(v.favorites)-1)
		}
		return v, nil

	case favoritesOpDoneMsg:
		v.err = msg.err
		return v, func() tea.Msg { return favoritesLoadedMsg{favorites: v.repo.Favorites()} }

	case tea.KeyMsg:
		if v.confirm != confirmNone {
			return v.updateConfirm(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *FavoritesView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, goBack
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.favorites)-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.Delete):
		if len(v.favorites) > 0 {
			v.confirm = confirmRemove
		}
	case key.Matches(msg, v.keys.Clear):
		if len(v.favorites) > 0 {
			v.confirm = confirmClear
		}
	}
	return v, nil
}

func (v *FavoritesView) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		kind := v.confirm
		v.confirm = confirmNone
		if kind == confirmClear {
			return v, func() tea.Msg {
				return favoritesOpDoneMsg{err: v.repo.ClearFavorites(context.Background())}
			}
		}
		if v.cursor < len(v.favorites) {
			return v, v.remove(v.cursor, v.favorites[v.cursor])
		}
	case key.Matches(msg, v.keys.Cancel):
		v.confirm = confirmNone
	}
	return v, nil
}

// remove drops the favorite at position: task favorites by index, post
// favorites by ID, anything else by its place in the list
func (v *FavoritesView) remove(position int, f models.Favorite) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		switch {
		case f.Index != nil:
			return favoritesOpDoneMsg{err: v.repo.RemoveFavorite(ctx, *f.Index)}
		case f.ID != nil:
			return favoritesOpDoneMsg{err: v.repo.RemovePostFavorite(ctx, *f.ID)}
		default:
			return favoritesOpDoneMsg{err: v.repo.RemoveFavoriteAt(ctx, position)}
		}
	}
}

// View renders the view
func (v *FavoritesView) View() string {
	s := v.styles

	switch v.confirm {
	case confirmRemove:
		label := ""
		if v.cursor < len(v.favorites) {
			label = truncate(v.favorites[v.cursor].Label(), 40)
		}
		return renderConfirm(s, v.width, v.height, "Remove Favorite?", fmt.Sprintf("Remove %q from favorites?", label))
	case confirmClear:
		return renderConfirm(s, v.width, v.height, "Clear Favorites?", "Remove ALL favorites?")
	}

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	if len(v.favorites) == 0 {
		return v.renderEmpty()
	}

	contentWidth := styles.ContentWidth(v.width)
	textWidth := max(contentWidth-10, 10)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		s.Title.Render("★ Favorites"),
		"   ",
		s.TitleMuted.Render(fmt.Sprintf("%d saved", len(v.favorites))),
	))
	b.WriteString("\n\n")

	var rows []string
	for i, f := range v.favorites {
		detail := "post"
		if f.IsTask() {
			detail = "created " + formatDate(f.CreatedAt)
		}
		line := truncate(f.Label(), textWidth) + "\n" + s.TitleMuted.Render(detail)
		style := s.ListItem
		if i == v.cursor {
			style = s.ListSelected
		}
		rows = append(rows, style.Width(contentWidth-4).Render(line))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")

	if v.err != nil {
		b.WriteString(s.StatusBar.Render(s.Error.Render(errorText(v.err))))
		b.WriteString("\n")
	}
	b.WriteString(renderHelpLine(s, "d", "remove", "c", "clear all", "esc", "back"))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *FavoritesView) renderEmpty() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Star.Render("★"),
		s.Title.Render("No favorites"),
		"",
		s.TitleMuted.Render("Star tasks on the main screen to see them here!"),
		"",
		s.Button.Render(" Esc - Back to Tasks "),
	)
	centered := lipgloss.Place(styles.ContentWidth(v.width), v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
