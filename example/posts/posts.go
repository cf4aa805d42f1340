// Package posts is the in-memory post repository of the example app.
package posts

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown post IDs.
var ErrNotFound = errors.New("post not found")

// Post is a blog entry. Body is markdown.
type Post struct {
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ID        int       `json:"id"`
	Likes     int       `json:"likes"`
}

// Repository stores posts in memory.
type Repository struct {
	posts []Post
	mu    sync.RWMutex
}

// NewRepository returns a repository seeded with posts.
func NewRepository(seed ...Post) *Repository {
	return &Repository{posts: seed}
}

// Get returns the post with the given ID.
func (r *Repository) Get(id int) (Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := slices.IndexFunc(r.posts, func(p Post) bool { return p.ID == id })
	if i < 0 {
		return Post{}, ErrNotFound
	}
	return r.posts[i], nil
}

// Latest returns up to n posts, newest first.
func (r *Repository) Latest(n int) []Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := slices.Clone(r.posts)
	slices.SortFunc(out, func(a, b Post) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out[:min(n, len(out))]
}

// Like increments the like counter of a post.
func (r *Repository) Like(id int) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.posts, func(p Post) bool { return p.ID == id })
	if i < 0 {
		return Post{}, ErrNotFound
	}
	r.posts[i].Likes++
	return r.posts[i], nil
}
