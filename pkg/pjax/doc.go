// Package pjax provides helpers for the PJAX partial-page protocol.
//
// A PJAX client (jquery-pjax and compatible libraries) fetches pages with
// an X-PJAX header and swaps only a container of the current document.
// The server answers with the container markup plus two headers:
//   - X-PJAX-Version: the layout version; a mismatch makes the client reload
//   - X-PJAX-URL: the canonical URL to push into browser history
//
// # Request Detection
//
//	if pjax.IsPJAX(r) {
//		// render only the container
//	}
//
// # Response Headers
//
//	pjax.SetVersion(w, pjax.Version("main", buildTimestamp))
//	pjax.SetURL(w, r) // request path + query without the _pjax cache-buster
package pjax
