// Package repository owns the tasks and favorites lists and the rules that
// keep them consistent with each other and with storage.
//
// Tasks are identified by position. A task favorite records the index the
// task had when it was favorited; removing an earlier task does not renumber
// or prune favorites, so such entries go stale. This matches the behavior of
// the data the application already stores.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tgienger/favtasks/internal/models"
	"github.com/tgienger/favtasks/internal/storage"
)

var (
	// ErrValidation is matched by every input validation error.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyText is returned when task text is blank after trimming.
	ErrEmptyText = fmt.Errorf("%w: task text is empty", ErrValidation)

	// ErrIndexOutOfRange is returned for a task index outside the list.
	ErrIndexOutOfRange = fmt.Errorf("%w: task index out of range", ErrValidation)

	// ErrStorage is returned when a list could not be written. The
	// in-memory state keeps its previous value.
	ErrStorage = errors.New("storage write failed")
)

// Store is the key-value storage the repository persists through.
type Store interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any) bool
}

// Validator confirms an edit with the remote service before it is committed.
type Validator interface {
	UpdatePost(ctx context.Context, id int, payload, out any) error
}

// Repository holds the in-memory mirror of the stored lists. All operations
// are serialized.
type Repository struct {
	mu        sync.Mutex
	store     Store
	validator Validator
	logger    *log.Logger
	now       func() time.Time

	tasks     []models.Task
	favorites []models.Favorite
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a repository. Call Reload to read the stored lists.
func New(store Store, validator Validator, logger *log.Logger, opts ...Option) *Repository {
	r := &Repository{
		store:     store,
		validator: validator,
		logger:    logger.WithPrefix("repository"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reload replaces the in-memory lists with what storage holds. Missing or
// unreadable keys load as empty lists.
func (r *Repository) Reload(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reload(ctx)
}

func (r *Repository) reload(ctx context.Context) {
	var tasks []models.Task
	if !r.store.Get(ctx, storage.KeyTasks, &tasks) {
		tasks = nil
	}
	var favorites []models.Favorite
	if !r.store.Get(ctx, storage.KeyFavorites, &favorites) {
		favorites = nil
	}
	r.tasks = tasks
	r.favorites = favorites
	r.logger.Debug("reloaded", "tasks", len(tasks), "favorites", len(favorites))
}

// Tasks returns a copy of the task list.
func (r *Repository) Tasks() []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.tasks)
}

// Task returns the task at index.
func (r *Repository) Task(index int) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.tasks) {
		return models.Task{}, ErrIndexOutOfRange
	}
	return r.tasks[index], nil
}

// Favorites returns a copy of the favorites list.
func (r *Repository) Favorites() []models.Favorite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.favorites)
}

// AddTask appends a task with the given text.
func (r *Repository) AddTask(ctx context.Context, text string) (models.Task, error) {
	if strings.TrimSpace(text) == "" {
		return models.Task{}, ErrEmptyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task := models.Task{Text: text, CreatedAt: r.now()}
	updated := append(slices.Clone(r.tasks), task)
	if err := r.saveTasks(ctx, updated); err != nil {
		return models.Task{}, err
	}
	r.logger.Info("task added", "index", len(updated)-1)
	return task, nil
}

// RemoveTask deletes the task at index; later tasks shift down by one.
// Favorites are left as they are.
func (r *Repository) RemoveTask(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.tasks) {
		return ErrIndexOutOfRange
	}
	updated := slices.Delete(slices.Clone(r.tasks), index, index+1)
	if err := r.saveTasks(ctx, updated); err != nil {
		return err
	}
	r.logger.Info("task removed", "index", index, "remaining", len(updated))
	return nil
}

// IsFavorite reports whether a task favorite with the given index exists.
func (r *Repository) IsFavorite(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.favoriteIndex(index) >= 0
}

// ToggleFavorite removes the task favorite for index if there is one,
// otherwise adds task as a favorite at index. It reports whether the task is
// a favorite afterwards.
func (r *Repository) ToggleFavorite(ctx context.Context, task models.Task, index int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated []models.Favorite
	favorite := r.favoriteIndex(index) < 0
	if favorite {
		updated = append(slices.Clone(r.favorites), models.NewTaskFavorite(task, index))
	} else {
		updated = slices.DeleteFunc(slices.Clone(r.favorites), func(f models.Favorite) bool {
			return f.HasIndex(index)
		})
	}

	if err := r.saveFavorites(ctx, updated); err != nil {
		return !favorite, err
	}
	r.logger.Info("favorite toggled", "index", index, "favorite", favorite)
	return favorite, nil
}

// RemoveFavorite removes the task favorite for index, if present.
func (r *Repository) RemoveFavorite(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := slices.DeleteFunc(slices.Clone(r.favorites), func(f models.Favorite) bool {
		return f.HasIndex(index)
	})
	return r.saveFavorites(ctx, updated)
}

// RemoveFavoriteAt removes the entry at position in the favorites list. It
// serves entries that carry neither a task index nor a post ID, such as
// favorites stored as bare strings.
func (r *Repository) RemoveFavoriteAt(ctx context.Context, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if position < 0 || position >= len(r.favorites) {
		return fmt.Errorf("favorite %d: %w", position, ErrIndexOutOfRange)
	}
	return r.saveFavorites(ctx, slices.Delete(slices.Clone(r.favorites), position, position+1))
}

// RemovePostFavorite removes the favorite for the post with id, if present.
func (r *Repository) RemovePostFavorite(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := slices.DeleteFunc(slices.Clone(r.favorites), func(f models.Favorite) bool {
		return f.HasPostID(id)
	})
	return r.saveFavorites(ctx, updated)
}

// IsPostFavorite reports whether the post with id is a favorite.
func (r *Repository) IsPostFavorite(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.favorites, func(f models.Favorite) bool {
		return f.HasPostID(id)
	})
}

// TogglePostFavorite adds or removes a post from the favorites list, keyed by
// post ID. It reports whether the post is a favorite afterwards.
func (r *Repository) TogglePostFavorite(ctx context.Context, post models.Post) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	isFav := func(f models.Favorite) bool { return f.HasPostID(post.ID) }

	var updated []models.Favorite
	favorite := !slices.ContainsFunc(r.favorites, isFav)
	if favorite {
		updated = append(slices.Clone(r.favorites), models.NewPostFavorite(post))
	} else {
		updated = slices.DeleteFunc(slices.Clone(r.favorites), isFav)
	}

	if err := r.saveFavorites(ctx, updated); err != nil {
		return !favorite, err
	}
	r.logger.Info("post favorite toggled", "id", post.ID, "favorite", favorite)
	return favorite, nil
}

// ClearFavorites empties the favorites list.
func (r *Repository) ClearFavorites(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.saveFavorites(ctx, []models.Favorite{}); err != nil {
		return err
	}
	r.logger.Info("favorites cleared")
	return nil
}

// favoriteIndex returns the position in r.favorites of the task favorite for
// index, or -1
func (r *Repository) favoriteIndex(index int) int {
	return slices.IndexFunc(r.favorites, func(f models.Favorite) bool {
		return f.HasIndex(index)
	})
}

// saveTasks persists tasks and adopts them as the current state only when the
// write succeeded
func (r *Repository) saveTasks(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	if !r.store.Set(ctx, storage.KeyTasks, tasks) {
		return fmt.Errorf("save %s: %w", storage.KeyTasks, ErrStorage)
	}
	r.tasks = tasks
	return nil
}

func (r *Repository) saveFavorites(ctx context.Context, favorites []models.Favorite) error {
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	if !r.store.Set(ctx, storage.KeyFavorites, favorites) {
		return fmt.Errorf("save %s: %w", storage.KeyFavorites, ErrStorage)
	}
	r.favorites = favorites
	return nil
}
