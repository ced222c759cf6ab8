// Package testutil provides testing utilities.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tgienger/favtasks/internal/models"
)

// Request records a call received by FakeAPI.
type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

// FakeAPI is an in-process stand-in for the JSONPlaceholder demo API. Like the
// real service it echoes PUT bodies back without persisting them.
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	posts    []models.Post
	requests []Request

	// Error injection for testing: a non-zero status is returned instead of
	// the normal response.
	ListPostsStatus  int
	UpdatePostStatus int

	// Delay is applied before every response.
	Delay time.Duration
}

// NewFakeAPI starts a server seeded with n posts. Close it when done.
func NewFakeAPI(n int) *FakeAPI {
	f := &FakeAPI{}
	for i := 1; i <= n; i++ {
		f.posts = append(f.posts, models.Post{
			UserID: (i-1)/10 + 1,
			ID:     i,
			Title:  fmt.Sprintf("post %d", i),
			Body:   fmt.Sprintf("body of post %d", i),
		})
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Get("/posts", f.listPosts)
	r.Get("/posts/{id}", f.getPost)
	r.Put("/posts/{id}", f.updatePost)
	r.Post("/posts", f.createPost)
	r.Delete("/posts/{id}", f.deletePost)

	f.Server = httptest.NewServer(r)
	return f
}

// Requests returns a copy of the calls received so far.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// SetListPostsStatus changes the injected status for GET /posts.
func (f *FakeAPI) SetListPostsStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListPostsStatus = code
}

// SetUpdatePostStatus changes the injected status for PUT /posts/{id}.
func (f *FakeAPI) SetUpdatePostStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdatePostStatus = code
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{Method: r.Method, Path: r.URL.Path}
		if r.Body != nil && (r.Method == http.MethodPut || r.Method == http.MethodPost) {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				req.Body = body
			}
		}

		f.mu.Lock()
		f.requests = append(f.requests, req)
		delay := f.Delay
		f.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) listPosts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	status := f.ListPostsStatus
	posts := append([]models.Post(nil), f.posts...)
	f.mu.Unlock()

	if status != 0 {
		respondJSON(w, status, map[string]any{})
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func (f *FakeAPI) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := f.findPost(r)
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	f.mu.Lock()
	post := f.posts[id-1]
	f.mu.Unlock()
	respondJSON(w, http.StatusOK, post)
}

func (f *FakeAPI) updatePost(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	status := f.UpdatePostStatus
	f.mu.Unlock()
	if status != 0 {
		respondJSON(w, status, map[string]any{})
		return
	}

	id, ok := f.findPost(r)
	if !ok {
		respondJSON(w, http.StatusInternalServerError, map[string]any{})
		return
	}
	body := f.lastBody()
	if body == nil {
		body = map[string]any{}
	}
	body["id"] = id
	respondJSON(w, http.StatusOK, body)
}

func (f *FakeAPI) createPost(w http.ResponseWriter, r *http.Request) {
	body := f.lastBody()
	if body == nil {
		body = map[string]any{}
	}
	f.mu.Lock()
	body["id"] = len(f.posts) + 1
	f.mu.Unlock()
	respondJSON(w, http.StatusCreated, body)
}

func (f *FakeAPI) deletePost(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{})
}

// findPost resolves the {id} URL parameter against the seeded posts
func (f *FakeAPI) findPost(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return id, id >= 1 && id <= len(f.posts)
}

// lastBody returns a copy of the body recorded for the current request
func (f *FakeAPI) lastBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 || f.requests[len(f.requests)-1].Body == nil {
		return nil
	}
	out := make(map[string]any)
	for k, v := range f.requests[len(f.requests)-1].Body {
		out[k] = v
	}
	return out
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
