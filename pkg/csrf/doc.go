// Package csrf implements double-submit CSRF tokens backed by a cookie.
//
// The token lives in a cookie (signed when the cookie manager has a secret)
// and is echoed by forms in the csrf_token field or by scripts in the
// X-CSRF-Token header. A token that was issued during the current request
// has never been sent to the client, so it never validates.
//
//	csrfm := csrf.New(cookies)
//	tok := csrfm.Get(w, r)
//	tok.Value()     // embed in forms
//	tok.Validate(r) // compare with the submitted value
package csrf
