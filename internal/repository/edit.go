package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tgienger/favtasks/internal/models"
)

// Edit is a prepared change to one task. It is confirmed remotely with
// ValidateEdit and then written locally with CommitEdit; nothing local changes
// unless the remote call succeeded.
type Edit struct {
	Index int
	Task  models.Task
}

// PostID is the remote resource that confirms the edit. Post IDs are 1-based.
func (e Edit) PostID() int {
	return e.Index + 1
}

// PrepareEdit checks the input and builds the replacement task. The creation
// time is carried over; tasks stored without one get the current time.
func (r *Repository) PrepareEdit(index int, text string) (Edit, error) {
	if strings.TrimSpace(text) == "" {
		return Edit{}, ErrEmptyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.tasks) {
		return Edit{}, ErrIndexOutOfRange
	}

	now := r.now()
	created := r.tasks[index].CreatedAt
	if created.IsZero() {
		created = now
	}
	return Edit{
		Index: index,
		Task: models.Task{
			Text:      text,
			CreatedAt: created,
			UpdatedAt: &now,
		},
	}, nil
}

// ValidateEdit sends the edit to the remote service. The response body is
// discarded.
func (r *Repository) ValidateEdit(ctx context.Context, e Edit) error {
	if err := r.validator.UpdatePost(ctx, e.PostID(), e.Task, nil); err != nil {
		r.logger.Warn("edit rejected", "index", e.Index, "err", err)
		return fmt.Errorf("validate edit of task %d: %w", e.Index+1, err)
	}
	return nil
}

// CommitEdit writes the edited task and, when a favorite references the same
// index, updates that favorite in place.
func (r *Repository) CommitEdit(ctx context.Context, e Edit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Index < 0 || e.Index >= len(r.tasks) {
		return ErrIndexOutOfRange
	}

	tasks := slices.Clone(r.tasks)
	tasks[e.Index] = e.Task
	if err := r.saveTasks(ctx, tasks); err != nil {
		return err
	}

	if i := r.favoriteIndex(e.Index); i >= 0 {
		favorites := slices.Clone(r.favorites)
		favorites[i] = models.NewTaskFavorite(e.Task, e.Index)
		if err := r.saveFavorites(ctx, favorites); err != nil {
			return err
		}
	}

	r.logger.Info("task edited", "index", e.Index)
	return nil
}

// EditTask replaces the text of the task at index after the remote service
// accepted the change.
func (r *Repository) EditTask(ctx context.Context, index int, text string) (models.Task, error) {
	e, err := r.PrepareEdit(index, text)
	if err != nil {
		return models.Task{}, err
	}
	if err := r.ValidateEdit(ctx, e); err != nil {
		return models.Task{}, err
	}
	if err := r.CommitEdit(ctx, e); err != nil {
		return models.Task{}, err
	}
	return e.Task, nil
}
