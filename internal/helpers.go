package internal

import (
	"reflect"
	"strconv"
)

// scalar is the set of types route, query and prop strings convert to.
type scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param returns a route parameter converted to T, or the zero T when it is
// missing or malformed. Route defaults count as parameters.
func Param[T scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Param(name))
	return v
}

// Query returns a query parameter converted to T, or the zero T.
func Query[T scalar](c Context, name string) T {
	var zero T
	return QueryDefault(c, name, zero)
}

// QueryDefault returns a query parameter converted to T, or defaultValue
// when it is empty or malformed.
func QueryDefault[T scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	if v, ok := convertParam[T](raw); ok {
		return v
	}
	return defaultValue
}

// convertParam parses raw into T by its underlying kind, so named types
// such as `type PostID int` convert too.
func convertParam[T scalar](raw string) (T, bool) {
	var out T
	v := reflect.ValueOf(&out).Elem()

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return out, false
		}
		v.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return out, false
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return out, false
		}
		v.SetBool(b)
	default:
		return out, false
	}
	return out, true
}
