package internal

import "fmt"

// invoke runs one controller lifecycle: props, Before, action, render, After.
// After is deferred as soon as the controller exists, so it runs on every
// exit path, panics included.
func (c *requestContext) invoke(name, action string, props []EmbedProp, args []any) error {
	factory, ok := c.app.controllers[name]
	if !ok {
		return ErrNotFound("Not Found", WithError(fmt.Errorf("%w: %q", ErrControllerNotFound, name)))
	}
	if action == "" {
		action = DefaultAction
	}

	ctrl := factory()
	defer ctrl.After(c)

	if a, ok := ctrl.(actionAware); ok {
		a.SetAction(action)
	}
	if err := applyProps(ctrl, props); err != nil {
		return err
	}
	if err := ctrl.Before(c); err != nil {
		return err
	}

	fn, ok := ctrl.Actions()[action]
	if !ok {
		return ErrNotFound("Not Found", WithError(fmt.Errorf("%w: %s/%s", ErrActionNotFound, name, action)))
	}

	ret, err := fn(c, args...)
	if err != nil {
		return err
	}
	if ret == nil {
		return nil
	}
	return c.render(ctrl, ret)
}
