package views

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/favtasks/internal/api"
	"github.com/tgienger/favtasks/internal/repository"
	"github.com/tgienger/favtasks/internal/ui/styles"
)

// Loading is a spinner with a message, shown while a request is in flight
type Loading struct {
	spinner spinner.Model
	message string
	active  bool
}

// NewLoading creates an inactive loading indicator
func NewLoading(message string) Loading {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Current.Success)
	return Loading{spinner: sp, message: message}
}

// Start activates the spinner and returns its tick command
func (l *Loading) Start() tea.Cmd {
	l.active = true
	return l.spinner.Tick
}

// Stop hides the spinner
func (l *Loading) Stop() {
	l.active = false
}

// Active reports whether the spinner is shown
func (l Loading) Active() bool {
	return l.active
}

// Update advances the spinner animation while active
func (l *Loading) Update(msg tea.Msg) tea.Cmd {
	if !l.active {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// View renders the spinner centered in the given area
func (l Loading) View(s *styles.Styles, width, height int) string {
	content := lipgloss.JoinHorizontal(lipgloss.Center,
		l.spinner.View(), " ", s.TitleMuted.Render(l.message),
	)
	centered := lipgloss.Place(styles.ContentWidth(width), height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

// errorText turns an operation error into a message for the user
func errorText(err error) string {
	var netErr *api.NetworkError
	var statusErr *api.StatusError
	switch {
	case errors.Is(err, repository.ErrEmptyText):
		return "Please enter some text for the task."
	case errors.Is(err, repository.ErrIndexOutOfRange):
		return "That task no longer exists."
	case errors.Is(err, repository.ErrStorage):
		return "Could not save your changes. Please try again."
	case errors.As(err, &netErr) && netErr.Timeout():
		return "The server took too long to respond."
	case errors.As(err, &netErr):
		return "Could not reach the server. Check your connection."
	case errors.As(err, &statusErr):
		return "The server rejected the request (" + statusErr.Error() + ")."
	default:
		return err.Error()
	}
}

// retryable reports whether the error came from the network and may succeed
// if the same request is sent again
func retryable(err error) bool {
	var netErr *api.NetworkError
	var statusErr *api.StatusError
	return errors.As(err, &netErr) || errors.As(err, &statusErr)
}

// renderError renders an error card with an optional retry hint
func renderError(s *styles.Styles, width, height int, err error, canRetry bool) string {
	lines := []string{
		s.Error.Render("Something went wrong"),
		"",
		s.TitleMuted.Render(errorText(err)),
		"",
	}
	if canRetry {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" R - Retry "),
			"  ",
			s.Button.Render(" Esc - Cancel "),
		))
	} else {
		lines = append(lines, s.Button.Render(" Esc - Back "))
	}

	centered := lipgloss.Place(styles.ContentWidth(width), height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...),
	)
	return styles.CenterView(centered, width, height)
}
