package route

import (
	"fmt"
	"strings"
)

// ParseArgs converts loosely typed arguments, as passed by template
// functions, into path parameters and a query.
//
// Accepted forms:
//   - a single string: the action shorthand, same as Action(s)
//   - Params, map[string]string or map[string]any: path parameters
//   - Query: appended to the query
//   - key/value pairs: keys starting with "?" go to the query, others to params
//
// Forms may be mixed; later values override earlier ones.
func ParseArgs(args ...any) (Params, Query, error) {
	params := Params{}
	var query Query

	if len(args) == 1 {
		if s, ok := args[0].(string); ok {
			return Action(s), nil, nil
		}
	}

	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case Params:
			for k, val := range v {
				params[k] = val
			}
		case map[string]string:
			for k, val := range v {
				params[k] = val
			}
		case map[string]any:
			for k, val := range v {
				params[k] = stringify(val)
			}
		case Query:
			query = append(query, v...)
		case string:
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("%w: key %q has no value", ErrBadArgs, v)
			}
			i++
			if key, ok := strings.CutPrefix(v, "?"); ok {
				query = query.Add(key, stringify(args[i]))
			} else {
				params[v] = stringify(args[i])
			}
		default:
			return nil, nil, fmt.Errorf("%w: unexpected %T at position %d", ErrBadArgs, v, i)
		}
	}
	return params, query, nil
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
