// Package params normalizes query parameters so that the transport and the
// resource cache agree on what "the same request" means.
package params

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Params maps query keys to string, number or bool values. Nil and empty
// string values are treated as absent.
type Params map[string]any

// Values encodes p for a query string, dropping absent values
func (p Params) Values() url.Values {
	v := url.Values{}
	for key, val := range p {
		s, ok := format(val)
		if !ok {
			continue
		}
		v.Set(key, s)
	}
	return v
}

// Key returns the canonical, order-independent form of p. Two Params that
// differ only in absent values or key order produce the same Key.
func (p Params) Key() string {
	return p.Values().Encode() // Encode sorts by key
}

// Contains reports whether every present value in sub is present in p with
// the same canonical form.
func (p Params) Contains(sub Params) bool {
	have := p.Values()
	for key, val := range sub {
		want, ok := format(val)
		if !ok {
			continue
		}
		if have.Get(key) != want {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of p
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy of p with key set to val
func (p Params) With(key string, val any) Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[key] = val
	return out
}

// String renders p for logs
func (p Params) String() string {
	v := p.Values()
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+v.Get(k))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// format renders a single value. Floats with no fractional part render like
// ints so that 5 and 5.0 share a key.
func format(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case *string:
		if v == nil || *v == "" {
			return "", false
		}
		return *v, true
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v)), true
		}
		return fmt.Sprintf("%g", v), true
	case float32:
		return format(float64(v))
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	default:
		s := fmt.Sprint(v)
		return s, s != ""
	}
}
