package route

import (
	"net/url"
	"strings"
)

// QueryParam is a single key/value pair of a query string.
type QueryParam struct {
	Key   string
	Value string
}

// Query is an ordered query string. Pairs are encoded in the order given.
type Query []QueryParam

// Q builds a Query from alternating keys and values.
// A trailing key without a value gets an empty value.
//
// Example:
//
//	route.Q("tab", "x", "page", "2") // tab=x&page=2
func Q(kv ...string) Query {
	q := make(Query, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		p := QueryParam{Key: kv[i]}
		if i+1 < len(kv) {
			p.Value = kv[i+1]
		}
		q = append(q, p)
	}
	return q
}

// Add appends a pair and returns the extended query.
func (q Query) Add(key, value string) Query {
	return append(q, QueryParam{Key: key, Value: value})
}

// Encode renders the query in "k=v&k2=v2" form using form encoding.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
