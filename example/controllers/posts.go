package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/anvil"
	"github.com/dmitrymomot/anvil/example/posts"
	"github.com/dmitrymomot/anvil/pkg/route"
)

// Posts lists, shows and likes posts. As an embed it renders one card.
type Posts struct {
	repo *posts.Repository
	anvil.Base
	ID      int
	Limit   int
	Compact bool
}

// NewPosts returns the posts controller factory.
func NewPosts(repo *posts.Repository) anvil.ControllerFactory {
	return func() anvil.Controller {
		return &Posts{repo: repo, Limit: 10}
	}
}

func (p *Posts) Props() anvil.Props {
	return anvil.Props{
		"id":      anvil.Prop(&p.ID),
		"limit":   anvil.Prop(&p.Limit),
		"compact": anvil.Prop(&p.Compact),
	}
}

func (p *Posts) Actions() anvil.Actions {
	return anvil.Actions{
		"index":  p.index,
		"latest": p.latest,
		"show":   p.show,
		"card":   p.card,
		"likes":  p.likes,
		"like":   p.like,
		"api":    p.api,
	}
}

func (p *Posts) index(anvil.Context, ...any) (any, error) {
	return anvil.NewTemplate("posts/index", map[string]any{
		"title": "Posts",
		"posts": p.repo.Latest(p.Limit),
	}), nil
}

// latest is embedded by the home page.
func (p *Posts) latest(anvil.Context, ...any) (any, error) {
	return anvil.NewTemplate("posts/latest", map[string]any{
		"posts": p.repo.Latest(p.Limit),
	}), nil
}

func (p *Posts) show(c anvil.Context, _ ...any) (any, error) {
	post, err := p.lookup(c)
	if err != nil {
		return nil, err
	}
	return anvil.NewTemplate("posts/show", map[string]any{
		"title": post.Title,
		"post":  post,
	}), nil
}

// card renders one post. The ID comes from the "id" prop when embedded.
func (p *Posts) card(c anvil.Context, _ ...any) (any, error) {
	post, err := p.lookup(c)
	if err != nil {
		return nil, err
	}
	return anvil.NewTemplate("posts/card", map[string]any{
		"post":    post,
		"compact": p.Compact,
	}), nil
}

// likes renders the like counter as a component.
func (p *Posts) likes(c anvil.Context, _ ...any) (any, error) {
	post, err := p.lookup(c)
	if err != nil {
		return nil, err
	}
	return likeBadge(post.Likes), nil
}

// like is a form target; the origin check of Base guards it.
func (p *Posts) like(c anvil.Context, _ ...any) (any, error) {
	post, err := p.repo.Like(anvil.Param[int](c, "id"))
	if errors.Is(err, posts.ErrNotFound) {
		return nil, anvil.ErrNotFound("Post not found")
	}
	if err != nil {
		return nil, err
	}

	u, err := c.URL("post", route.Params{"id": strconv.Itoa(post.ID)})
	if err != nil {
		return nil, err
	}
	return nil, c.Redirect(http.StatusSeeOther, u)
}

func (p *Posts) api(c anvil.Context, _ ...any) (any, error) {
	post, err := p.lookup(c)
	if err != nil {
		return nil, err
	}
	return anvil.NewPayload(post), nil
}

func (p *Posts) lookup(c anvil.Context) (posts.Post, error) {
	id := p.ID
	if id == 0 {
		id = anvil.Param[int](c, "id")
	}
	post, err := p.repo.Get(id)
	if errors.Is(err, posts.ErrNotFound) {
		return posts.Post{}, anvil.ErrNotFound("Post not found", anvil.WithError(err))
	}
	return post, err
}

func likeBadge(n int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span class="likes">%d ♥</span>`, n)
		return err
	})
}
