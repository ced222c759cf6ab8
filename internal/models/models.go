package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Task represents a single to-do item. Its identity is its position in the
// task list, not a stored ID.
type Task struct {
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// taskFields avoids recursing into Task.UnmarshalJSON
type taskFields Task

// UnmarshalJSON accepts both the object form and the legacy bare string form.
// A bare string becomes a task with that text and no creation time.
func (t *Task) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*t = Task{Text: text}
		return nil
	}

	var f taskFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*t = Task(f)
	return nil
}

// HasCreatedAt reports whether the creation time is known
func (t Task) HasCreatedAt() bool {
	return !t.CreatedAt.IsZero()
}

// CharCount returns the number of characters in the task text
func (t Task) CharCount() int {
	return len([]rune(t.Text))
}

// WordCount returns the number of whitespace-separated words in the task text
func (t Task) WordCount() int {
	return len(strings.Fields(t.Text))
}

// Favorite is an entry of the favorites list. Task favorites carry the task
// fields plus Index, the position the task had when it was favorited. Post
// favorites carry the post fields and no Index.
type Favorite struct {
	Text      string     `json:"text,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	Index     *int       `json:"index,omitempty"`

	UserID int    `json:"userId,omitempty"`
	ID     *int   `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Body   string `json:"body,omitempty"`
}

// favoriteFields avoids recursing into Favorite.UnmarshalJSON
type favoriteFields Favorite

// UnmarshalJSON accepts a bare string as a task favorite with no index,
// matching how legacy task records are read.
func (f *Favorite) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*f = Favorite{Text: text}
		return nil
	}

	var ff favoriteFields
	if err := json.Unmarshal(data, &ff); err != nil {
		return err
	}
	*f = Favorite(ff)
	return nil
}

// NewTaskFavorite copies the task and records its current index
func NewTaskFavorite(task Task, index int) Favorite {
	return Favorite{
		Text:      task.Text,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
		Index:     &index,
	}
}

// NewPostFavorite copies a post into a favorite entry
func NewPostFavorite(p Post) Favorite {
	id := p.ID
	return Favorite{
		UserID: p.UserID,
		ID:     &id,
		Title:  p.Title,
		Body:   p.Body,
	}
}

// IsTask reports whether the favorite references a task position
func (f Favorite) IsTask() bool {
	return f.Index != nil
}

// HasIndex reports whether the favorite references the given task position
func (f Favorite) HasIndex(index int) bool {
	return f.Index != nil && *f.Index == index
}

// HasPostID reports whether the favorite is the post with the given ID
func (f Favorite) HasPostID(id int) bool {
	return f.ID != nil && *f.ID == id
}

// Task returns the task fields of the favorite
func (f Favorite) Task() Task {
	return Task{Text: f.Text, CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt}
}

// Label is the text shown for the favorite in lists
func (f Favorite) Label() string {
	if f.Text != "" {
		return f.Text
	}
	return f.Title
}

// Post represents a post from the remote demo API
type Post struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}
