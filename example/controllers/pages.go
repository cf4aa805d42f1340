package controllers

import (
	"github.com/dmitrymomot/anvil"
)

// theme is picked from the query, then from the visitor's session.
var theme = anvil.NewExtractor(
	anvil.FromQuery("theme"),
	anvil.FromSession("", "theme"),
)

// Pages serves the static pages of the site.
type Pages struct {
	anvil.Base
}

// NewPages returns the pages controller factory.
func NewPages() anvil.ControllerFactory {
	return func() anvil.Controller {
		return &Pages{}
	}
}

func (p *Pages) Actions() anvil.Actions {
	return anvil.Actions{
		"home":  p.home,
		"about": p.about,
	}
}

// home counts the visits of the current browser and remembers its theme.
func (p *Pages) home(c anvil.Context, _ ...any) (any, error) {
	sess, err := p.SessionStart(c, "")
	if err != nil {
		return nil, err
	}
	visits := anvil.SessionValueOr(sess, "visits", 0) + 1
	sess.Set("visits", visits)
	current := theme.ExtractOr(c, "light")
	sess.Set("theme", current)

	return anvil.NewTemplate("pages/home", map[string]any{
		"title":  "Home",
		"visits": visits,
		"theme":  current,
	}), nil
}

func (p *Pages) about(anvil.Context, ...any) (any, error) {
	return anvil.NewTemplate("pages/about", map[string]any{
		"title": "About",
		"intro": "Anvil dispatches requests to **controllers** and lets templates embed them.",
	}), nil
}
