package view

import "errors"

var (
	// ErrTemplateNotFound is returned when a template name cannot be resolved.
	ErrTemplateNotFound = errors.New("view: template not found")

	// ErrParse is returned when a template file fails to parse.
	ErrParse = errors.New("view: failed to parse templates")

	// ErrNotAFunction is returned when registering a non-function value.
	ErrNotAFunction = errors.New("view: registered value is not a function")

	// ErrFunctionNotRegistered is returned when a template calls a placeholder
	// function that was not bound for the current render.
	ErrFunctionNotRegistered = errors.New("view: function not registered")
)
