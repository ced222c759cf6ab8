package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/favtasks/internal/models"
	"github.com/tgienger/favtasks/internal/ui/styles"
)

// Screen is a view the app can push on its navigation stack. Focus is called
// whenever the screen becomes visible again and returns the reload command.
type Screen interface {
	tea.Model
	Focus() tea.Cmd
}

// PostLister fetches posts from the remote API
type PostLister interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
}

// Navigation messages handled by the app

// OpenAddTask opens the add task screen
type OpenAddTask struct{}

// OpenTaskDetail opens the detail screen for the task at Index
type OpenTaskDetail struct{ Index int }

// OpenEditTask opens the edit screen for the task at Index
type OpenEditTask struct{ Index int }

// OpenFavorites opens the favorites screen
type OpenFavorites struct{}

// OpenPosts opens the posts screen
type OpenPosts struct{}

// GoBack pops the current screen
type GoBack struct{}

func goBack() tea.Msg { return GoBack{} }

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// truncate shortens s to width runes, adding an ellipsis
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// formatDate renders a creation time, or a placeholder when unknown
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "not available"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// star renders the favorite marker
func star(s *styles.Styles, on bool) string {
	if on {
		return s.Star.Render("★")
	}
	return s.StarEmpty.Render("☆")
}

// renderHelpLine renders "key desc • key desc" pairs
func renderHelpLine(s *styles.Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, fmt.Sprintf("%s %s", s.HelpKey.Render(pairs[i]), pairs[i+1]))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// renderConfirm renders a centered yes/no question
func renderConfirm(s *styles.Styles, width, height int, title, question string) string {
	contentWidth := styles.ContentWidth(width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(question),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

// renderPopup renders a bordered, centered help popup
func renderPopup(s *styles.Styles, width, height int, title string, items []string) string {
	contentWidth := styles.ContentWidth(width)

	lines := append([]string{s.Title.Render(title), ""}, items...)
	lines = append(lines, "", s.TitleMuted.Render("Press any key to close"))

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
	return styles.CenterView(centered, width, height)
}
