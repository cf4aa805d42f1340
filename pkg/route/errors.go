package route

import "errors"

var (
	// ErrRouteNotFound is returned when a route name has no entry in the table.
	ErrRouteNotFound = errors.New("route: not found")

	// ErrEmptyPath is returned when a route is declared without a path.
	ErrEmptyPath = errors.New("route: empty path")

	// ErrUnsupportedFormat is returned by loaders for unknown file formats.
	ErrUnsupportedFormat = errors.New("route: unsupported table format")

	// ErrDecode is returned when a route table file cannot be decoded.
	ErrDecode = errors.New("route: failed to decode table")
)

// ErrBadArgs is returned by ParseArgs for malformed template arguments.
var ErrBadArgs = errors.New("route: bad url arguments")
