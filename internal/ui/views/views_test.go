package views

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/favtasks/internal/api"
	"github.com/tgienger/favtasks/internal/logging"
	"github.com/tgienger/favtasks/internal/models"
	"github.com/tgienger/favtasks/internal/repository"
	"github.com/tgienger/favtasks/internal/storage"
	"github.com/tgienger/favtasks/internal/testutil"
)

var windowSize = tea.WindowSizeMsg{Width: 80, Height: 30}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and any batched commands it produces, collecting the
// messages. Only use it on commands that return immediately.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver runs cmd and feeds every message it produced of type T back into m
func deliver[T tea.Msg](t *testing.T, m tea.Model, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range run(cmd) {
		if typed, ok := msg.(T); ok {
			m.Update(typed)
			return typed
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}

func setupTestRepo(t *testing.T, validator repository.Validator, texts ...string) *repository.Repository {
	t.Helper()
	logger := logging.Discard()
	repo := repository.New(storage.New(storage.NewMemory(), logger), validator, logger)
	ctx := context.Background()
	repo.Reload(ctx)
	for _, text := range texts {
		if _, err := repo.AddTask(ctx, text); err != nil {
			t.Fatalf("AddTask failed: %v", err)
		}
	}
	return repo
}

func setupFakeAPI(t *testing.T, n int) (*testutil.FakeAPI, *api.Client) {
	t.Helper()
	fake := testutil.NewFakeAPI(n)
	t.Cleanup(fake.Close)
	client, err := api.New(fake.URL, logging.Discard())
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	return fake, client
}

func TestHomeListsTasksWithFavoriteMarkers(t *testing.T) {
	repo := setupTestRepo(t, nil, "Buy milk", "Walk dog")
	repo.ToggleFavorite(context.Background(), repo.Tasks()[1], 1)

	v := NewHomeView(repo)
	v.Update(windowSize)
	deliver[homeLoadedMsg](t, v, v.Init())

	out := v.View()
	for _, want := range []string{"My Tasks", "Favorites (1)", "☆ Buy milk", "★ Walk dog"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestHomeEmptyState(t *testing.T) {
	v := NewHomeView(setupTestRepo(t, nil))
	v.Update(windowSize)
	deliver[homeLoadedMsg](t, v, v.Init())

	if out := v.View(); !strings.Contains(out, "No tasks yet") {
		t.Errorf("expected empty state, got:\n%s", out)
	}
}

func TestHomeNavigation(t *testing.T) {
	repo := setupTestRepo(t, nil, "A", "B")
	v := NewHomeView(repo)
	v.Update(windowSize)
	deliver[homeLoadedMsg](t, v, v.Init())

	tests := []struct {
		key  tea.KeyMsg
		want tea.Msg
	}{
		{keyRunes("n"), OpenAddTask{}},
		{keyRunes("f"), OpenFavorites{}},
		{keyRunes("p"), OpenPosts{}},
		{tea.KeyMsg{Type: tea.KeyEnter}, OpenTaskDetail{Index: 1}},
		{keyRunes("e"), OpenEditTask{Index: 1}},
	}

	v.Update(keyRunes("j"))
	for _, tt := range tests {
		_, cmd := v.Update(tt.key)
		if cmd == nil {
			t.Fatalf("%s: expected a command", tt.key)
		}
		if got := cmd(); got != tt.want {
			t.Errorf("%s: got %#v, want %#v", tt.key, got, tt.want)
		}
	}
}

func TestHomeToggleFavorite(t *testing.T) {
	repo := setupTestRepo(t, nil, "Buy milk")
	v := NewHomeView(repo)
	v.Update(windowSize)
	deliver[homeLoadedMsg](t, v, v.Init())

	_, cmd := v.Update(keyRunes("s"))
	done := deliver[homeOpDoneMsg](t, v, cmd)
	if done.err != nil {
		t.Fatalf("toggle failed: %v", done.err)
	}
	if !repo.IsFavorite(0) {
		t.Fatal("expected task 0 to be a favorite")
	}

	// the view picks up the change from the snapshot command
	deliver[homeLoadedMsg](t, v, v.snapshot)
	if out := v.View(); !strings.Contains(out, "★ Buy milk") {
		t.Errorf("expected star in view:\n%s", out)
	}
}

func TestHomeDeleteAsksForConfirmation(t *testing.T) {
	repo := setupTestRepo(t, nil, "A", "B")
	v := NewHomeView(repo)
	v.Update(windowSize)
	deliver[homeLoadedMsg](t, v, v.Init())

	v.Update(keyRunes("d"))
	if out := v.View(); !strings.Contains(out, "Remove Task?") {
		t.Fatalf("expected confirmation, got:\n%s", out)
	}

	// n cancels
	v.Update(keyRunes("n"))
	if len(repo.Tasks()) != 2 {
		t.Fatal("cancel removed a task")
	}

	v.Update(keyRunes("d"))
	_, cmd := v.Update(keyRunes("y"))
	if done := deliver[homeOpDoneMsg](t, v, cmd); done.err != nil {
		t.Fatalf("remove failed: %v", done.err)
	}
	tasks := repo.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "B" {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestAddTaskSavesAndGoesBack(t *testing.T) {
	repo := setupTestRepo(t, nil)
	v := NewAddTaskView(repo)
	v.Update(windowSize)
	v.Update(keyRunes("Buy milk"))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", msgs)
	}
	added, ok := msgs[0].(taskAddedMsg)
	if !ok || added.err != nil {
		t.Fatalf("unexpected result %#v", msgs[0])
	}

	_, cmd = v.Update(added)
	if cmd == nil || cmd() != (GoBack{}) {
		t.Error("expected to go back after saving")
	}
	tasks := repo.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestAddTaskRejectsBlankText(t *testing.T) {
	repo := setupTestRepo(t, nil)
	v := NewAddTaskView(repo)
	v.Update(windowSize)
	v.Update(keyRunes("   "))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	added := deliver[taskAddedMsg](t, v, cmd)
	if !errors.Is(added.err, repository.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", added.err)
	}
	if out := v.View(); !strings.Contains(out, "Please enter some text") {
		t.Errorf("expected inline error:\n%s", out)
	}
	if len(repo.Tasks()) != 0 {
		t.Error("blank task was stored")
	}
}

func TestTaskDetailShowsStatistics(t *testing.T) {
	repo := setupTestRepo(t, nil, "Buy milk")
	v := NewTaskDetailView(repo, 0)
	v.Update(windowSize)

	out := v.View()
	for _, want := range []string{"Task #1", "Buy milk", "Characters: 8", "Words: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}

	_, cmd := v.Update(keyRunes("e"))
	if cmd == nil || cmd() != (OpenEditTask{Index: 0}) {
		t.Error("expected e to open the edit screen")
	}
}

func TestTaskDetailMissingTask(t *testing.T) {
	v := NewTaskDetailView(setupTestRepo(t, nil), 3)
	v.Update(windowSize)

	if out := v.View(); !strings.Contains(out, "That task no longer exists") {
		t.Errorf("expected error view:\n%s", out)
	}
	if _, cmd := v.Update(keyRunes("e")); cmd != nil {
		t.Error("edit should be unavailable for a missing task")
	}
}

func TestEditTaskSavesAfterRemoteCheck(t *testing.T) {
	fake, client := setupFakeAPI(t, 10)
	repo := setupTestRepo(t, client, "A", "B")

	v := NewEditTaskView(repo, 1)
	v.Update(windowSize)
	if got := v.input.Value(); got != "B" {
		t.Fatalf("input prefilled with %q", got)
	}
	v.input.SetValue("B2")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if v.state != editStateSaving {
		t.Fatalf("expected saving state, got %v", v.state)
	}
	edited := deliver[taskEditedMsg](t, v, cmd)
	if edited.err != nil {
		t.Fatalf("edit failed: %v", edited.err)
	}
	if v.state != editStateDone || !strings.Contains(v.View(), "Task updated") {
		t.Errorf("expected done state, got %v", v.state)
	}

	reqs := fake.Requests()
	if len(reqs) != 1 || reqs[0].Method != http.MethodPut || reqs[0].Path != "/posts/2" {
		t.Errorf("unexpected requests %+v", reqs)
	}
	if task, _ := repo.Task(1); task.Text != "B2" {
		t.Errorf("task not updated: %+v", task)
	}
}

func TestEditTaskRetryAfterServerError(t *testing.T) {
	fake, client := setupFakeAPI(t, 10)
	repo := setupTestRepo(t, client, "A")
	fake.SetUpdatePostStatus(http.StatusServiceUnavailable)

	v := NewEditTaskView(repo, 0)
	v.Update(windowSize)
	v.input.SetValue("A2")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	edited := deliver[taskEditedMsg](t, v, cmd)
	var statusErr *api.StatusError
	if !errors.As(edited.err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", edited.err)
	}
	if v.state != editStateFailed || !strings.Contains(v.View(), "R - Retry") {
		t.Fatalf("expected failed state with retry, got %v", v.state)
	}
	if task, _ := repo.Task(0); task.Text != "A" {
		t.Fatalf("rejected edit was stored: %+v", task)
	}

	fake.SetUpdatePostStatus(0)
	_, cmd = v.Update(keyRunes("r"))
	if edited := deliver[taskEditedMsg](t, v, cmd); edited.err != nil {
		t.Fatalf("retry failed: %v", edited.err)
	}
	if task, _ := repo.Task(0); task.Text != "A2" {
		t.Errorf("retry did not store the edit: %+v", task)
	}
	if n := len(fake.Requests()); n != 2 {
		t.Errorf("expected 2 requests, got %d", n)
	}
}

func TestEditTaskBlankTextStaysInForm(t *testing.T) {
	fake, client := setupFakeAPI(t, 10)
	repo := setupTestRepo(t, client, "A")

	v := NewEditTaskView(repo, 0)
	v.Update(windowSize)
	v.input.SetValue("  ")

	if _, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Error("blank edit should not start a request")
	}
	if v.state != editStateEditing || !errors.Is(v.err, repository.ErrEmptyText) {
		t.Errorf("expected inline validation error, got state %v err %v", v.state, v.err)
	}
	if n := len(fake.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestPostsLoadsLimitAndToggles(t *testing.T) {
	_, client := setupFakeAPI(t, 30)
	repo := setupTestRepo(t, nil)

	v := NewPostsView(repo, client, 20)
	v.Update(windowSize)
	cmd := v.Init()
	if !v.loading.Active() {
		t.Fatal("expected spinner while loading")
	}
	deliver[postsLoadedMsg](t, v, cmd)
	if len(v.items) != 20 || v.loading.Active() {
		t.Fatalf("expected 20 posts and no spinner, got %d", len(v.items))
	}

	_, cmd = v.Update(keyRunes("s"))
	deliver[postFavoritesMsg](t, v, cmd)
	if !repo.IsPostFavorite(1) || !v.isFavorite(1) {
		t.Fatal("expected post 1 to be a favorite")
	}
	if out := v.View(); !strings.Contains(out, "★ post 1") || !strings.Contains(out, "Favorites (1)") {
		t.Errorf("expected starred post:\n%s", out)
	}

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	deliver[postFavoritesMsg](t, v, cmd)
	if repo.IsPostFavorite(1) {
		t.Error("second toggle should remove the favorite")
	}
}

func TestPostsLoadErrorAndRefresh(t *testing.T) {
	fake, client := setupFakeAPI(t, 5)
	fake.SetListPostsStatus(http.StatusInternalServerError)
	repo := setupTestRepo(t, nil)

	v := NewPostsView(repo, client, 20)
	v.Update(windowSize)
	deliver[postsLoadedMsg](t, v, v.Init())
	if v.err == nil || !strings.Contains(v.View(), "The server rejected") {
		t.Fatalf("expected inline error, got %v", v.err)
	}

	fake.SetListPostsStatus(0)
	_, cmd := v.Update(keyRunes("r"))
	deliver[postsLoadedMsg](t, v, cmd)
	if v.err != nil || len(v.items) != 5 {
		t.Errorf("refresh failed: err %v, %d posts", v.err, len(v.items))
	}
}

func TestFavoritesRemoveAndClear(t *testing.T) {
	repo := setupTestRepo(t, nil, "A", "B")
	ctx := context.Background()
	repo.ToggleFavorite(ctx, repo.Tasks()[0], 0)
	repo.TogglePostFavorite(ctx, models.Post{UserID: 1, ID: 7, Title: "post 7"})
	repo.ToggleFavorite(ctx, repo.Tasks()[1], 1)

	v := NewFavoritesView(repo)
	v.Update(windowSize)
	deliver[favoritesLoadedMsg](t, v, v.Init())
	if out := v.View(); !strings.Contains(out, "3 saved") || !strings.Contains(out, "post 7") {
		t.Fatalf("unexpected view:\n%s", out)
	}

	// remove the post favorite
	v.Update(keyRunes("j"))
	v.Update(keyRunes("d"))
	_, cmd := v.Update(keyRunes("y"))
	if done := deliver[favoritesOpDoneMsg](t, v, cmd); done.err != nil {
		t.Fatalf("remove failed: %v", done.err)
	}
	if repo.IsPostFavorite(7) || len(repo.Favorites()) != 2 {
		t.Fatalf("unexpected favorites %+v", repo.Favorites())
	}

	v.Update(keyRunes("c"))
	if out := v.View(); !strings.Contains(out, "Clear Favorites?") {
		t.Fatalf("expected clear confirmation:\n%s", out)
	}
	_, cmd = v.Update(keyRunes("y"))
	_, cmd = v.Update(deliver[favoritesOpDoneMsg](t, v, cmd))
	deliver[favoritesLoadedMsg](t, v, cmd)
	if len(repo.Favorites()) != 0 || !strings.Contains(v.View(), "No favorites") {
		t.Errorf("expected empty favorites, got %+v", repo.Favorites())
	}
	if len(repo.Tasks()) != 2 {
		t.Error("clearing favorites touched the tasks")
	}
}

func TestFavoritesRemoveLegacyEntry(t *testing.T) {
	logger := logging.Discard()
	mem := storage.NewMemory()
	ctx := context.Background()
	mem.Set(ctx, storage.KeyFavorites, `["old favorite",{"title":"post 2","id":2}]`)
	repo := repository.New(storage.New(mem, logger), nil, logger)
	repo.Reload(ctx)

	v := NewFavoritesView(repo)
	v.Update(windowSize)
	deliver[favoritesLoadedMsg](t, v, v.Init())

	v.Update(keyRunes("x"))
	_, cmd := v.Update(keyRunes("y"))
	if done := deliver[favoritesOpDoneMsg](t, v, cmd); done.err != nil {
		t.Fatalf("remove failed: %v", done.err)
	}
	favorites := repo.Favorites()
	if len(favorites) != 1 || !favorites[0].HasPostID(2) {
		t.Errorf("expected only the post favorite to remain, got %+v", favorites)
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty", repository.ErrEmptyText, "Please enter some text"},
		{"range", repository.ErrIndexOutOfRange, "no longer exists"},
		{"storage", repository.ErrStorage, "Could not save"},
		{"timeout", &api.NetworkError{Err: context.DeadlineExceeded}, "too long"},
		{"network", &api.NetworkError{Err: errors.New("refused")}, "Could not reach"},
		{"status", &api.StatusError{Code: 502}, "rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorText(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("errorText() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 5); got != "hell…" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("a\nb", 10); got != "a b" {
		t.Errorf("truncate() = %q", got)
	}
}
