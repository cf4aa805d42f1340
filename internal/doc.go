// Package internal provides the core types and implementation for the anvil framework.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/anvil" instead, which re-exports the public API.
//
// # Dispatch
//
// Every route of the table is mounted on a chi router. A matched request
// resolves the route parameters (defaults overlaid by URL values) and runs
// the controller named by the "controller" parameter:
//
//	factory -> props -> Before -> action -> render -> After
//
// After is deferred as soon as the controller exists, so it runs exactly
// once on every exit path.
//
// # Responses
//
// Actions return a *Template (a template name and scope), a *Payload (JSON)
// or an *Opaque component. Components are wrapped as Opaque and anything
// else as a Payload. Template scope precedence is app defaults, then the
// template scope, then the reserved keys env, isPjax, csrfToken,
// buildTimestamp and diagnostics.
//
// # Embeds
//
// Templates and actions can run other controllers inside the same request:
//
//	{{ embed "controller" "user" "action" "card" "fetch" true "prop-id" .id }}
//
// Every embed renders into its own buffer. A fetch embed returns it; an
// in-place embed copies it to the current sink once the nested lifecycle
// succeeded, so a failing fragment leaves no partial markup behind. A silent
// embed logs and swallows failures, a loud one returns an *EmbedError
// wrapping the cause.
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context.
package internal
