package pjax

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// IsPJAX returns true if the request was issued by a PJAX client.
func IsPJAX(r *http.Request) bool {
	return r.Header.Get(HeaderPJAX) == "true"
}

// IsXHR returns true if the request carries the X-Requested-With marker.
func IsXHR(r *http.Request) bool {
	return r.Header.Get(HeaderRequestedWith) != ""
}

// Container returns the selector of the container the client will replace.
func Container(r *http.Request) string {
	return r.Header.Get(HeaderPJAXContainer)
}

// Version builds a layout version tag: "<layout>:<buildTimestamp>".
func Version(layout string, buildTimestamp int64) string {
	return layout + ":" + strconv.FormatInt(buildTimestamp, 10)
}

// SetVersion sets the X-PJAX-Version response header.
func SetVersion(w http.ResponseWriter, version string) {
	w.Header().Set(HeaderPJAXVersion, version)
}

// URL returns the canonical URL of the request: the path plus the query
// string with the _pjax parameter removed. The remaining pairs keep their
// original order and encoding.
func URL(r *http.Request) string {
	query := StripQuery(r.URL.RawQuery)
	if query == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + query
}

// SetURL sets the X-PJAX-URL response header to the canonical request URL.
func SetURL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(HeaderPJAXURL, URL(r))
}

// StripQuery removes every _pjax pair from a raw query string.
func StripQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	kept := make([]string, 0, strings.Count(rawQuery, "&")+1)
	for pair := range strings.SplitSeq(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil && k == QueryParam {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}
