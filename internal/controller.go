package internal

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/anvil/pkg/pjax"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// DefaultAction is the action run when none is given.
const DefaultAction = "index"

// Action is a controller operation. The returned value is rendered:
// a *Template, *Payload or *Opaque as is, a Component as Opaque, anything
// else as a JSON Payload. A nil value renders nothing.
type Action func(c Context, args ...any) (any, error)

// Actions maps action names to bound methods.
type Actions map[string]Action

// Controller is the three-phase contract of a dispatched or embedded controller.
//
// Example:
//
//	type UserController struct {
//	    anvil.Base
//	    Title string
//	}
//
//	func (u *UserController) Actions() anvil.Actions {
//	    return anvil.Actions{"show": u.show}
//	}
//
//	func (u *UserController) Props() anvil.Props {
//	    return anvil.Props{"title": anvil.Prop(&u.Title)}
//	}
type Controller interface {
	// Before runs first. A non-nil error skips the action.
	Before(c Context) error
	// Actions returns the action table.
	Actions() Actions
	// After runs last, on every exit path, once per instance.
	After(c Context)
}

// ControllerFactory builds a fresh controller for every dispatch and embed.
type ControllerFactory func() Controller

// PropSetter assigns one embed prop.
type PropSetter func(value any) error

// Props maps prop names to setters.
type Props map[string]PropSetter

// PropsReceiver is implemented by controllers accepting embed props.
type PropsReceiver interface {
	Props() Props
}

// actionAware is implemented by controllers that want the action name.
type actionAware interface {
	SetAction(name string)
}

// Prop returns a setter storing values into dst. Strings are converted
// to the field type.
func Prop[T scalar](dst *T) PropSetter {
	return func(value any) error {
		switch v := value.(type) {
		case T:
			*dst = v
		case string:
			converted, ok := convertParam[T](v)
			if !ok {
				return fmt.Errorf("%w: cannot use %q as %T", ErrPropType, v, *dst)
			}
			*dst = converted
		default:
			return fmt.Errorf("%w: cannot use %T as %T", ErrPropType, value, *dst)
		}
		return nil
	}
}

// PropValue returns a setter accepting only values of type T.
func PropValue[T any](dst *T) PropSetter {
	return func(value any) error {
		v, ok := value.(T)
		if !ok {
			return fmt.Errorf("%w: cannot use %T as %T", ErrPropType, value, *dst)
		}
		*dst = v
		return nil
	}
}

// applyProps assigns props in order. Unknown names fail.
func applyProps(ctrl Controller, props []EmbedProp) error {
	if len(props) == 0 {
		return nil
	}

	var setters Props
	if pr, ok := ctrl.(PropsReceiver); ok {
		setters = pr.Props()
	}

	for _, p := range props {
		set, ok := setters[p.Name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownProp, p.Name)
		}
		if err := set(p.Value); err != nil {
			return fmt.Errorf("prop %q: %w", p.Name, err)
		}
	}
	return nil
}

// Base is the default controller behaviour. Embed it and provide Actions.
type Base struct {
	// Layout identifies the page layout in the PJAX version tag.
	// Empty means the app default.
	Layout string

	// SkipOriginCheck disables the origin and CSRF check in Before.
	SkipOriginCheck bool

	action string
}

// SetAction records the action being run.
func (b *Base) SetAction(name string) {
	b.action = name
}

// ActionName returns the action being run.
func (b *Base) ActionName() string {
	return b.action
}

// Before verifies the request origin and negotiates PJAX.
//
// Unsafe requests (anything but GET, or any XHR) must come from a trusted
// origin or carry a valid CSRF token; otherwise a 403 is returned.
// PJAX requests of the outer dispatch get the version and URL headers.
func (b *Base) Before(c Context) error {
	if !b.SkipOriginCheck && needsOriginCheck(c.Request()) && !c.CheckOrigin() {
		if !c.CSRFToken().Validate(c.Request()) {
			c.LogWarn("csrf token check failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"action", b.action,
			)
			return ErrForbidden("Bad CSRF token.", WithError(ErrCSRF))
		}
	}

	if c.IsPJAX() && c.EmbedDepth() == 0 {
		c.SetPjaxVersion(b.PjaxVersion(c))
		pjax.SetURL(c.Response(), c.Request())
	}
	return nil
}

// After is a no-op.
func (b *Base) After(Context) {}

// PjaxVersion returns the version tag of the controller's layout.
func (b *Base) PjaxVersion(c Context) string {
	layout := b.Layout
	if layout == "" {
		layout = c.DefaultLayout()
	}
	return pjax.Version(layout, c.BuildTimestamp())
}

// SessionStart returns the named session, creating it if needed.
func (b *Base) SessionStart(c Context, name string) (*session.Session, error) {
	return c.Session(name)
}

// SessionStartIfExists returns the named session only if the client has one.
func (b *Base) SessionStartIfExists(c Context, name string) (*session.Session, bool, error) {
	return c.SessionIfExists(name)
}

// needsOriginCheck reports whether a request may change state.
func needsOriginCheck(r *http.Request) bool {
	return r.Method != http.MethodGet || pjax.IsXHR(r)
}
