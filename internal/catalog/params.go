package catalog

import "encoding/json"

// Params is a free-form effect parameter bag decoded from definition
// JSON. Values arrive as the usual encoding/json types; the getters
// coerce with a default so malformed definitions degrade instead of
// failing a whole card.
type Params map[string]any

// Int returns the named parameter as an int, or def when the key is
// missing or not numeric.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return def
		}
		return int(i)
	default:
		return def
	}
}

// Bool returns the named parameter as a bool, or def when missing or
// not a bool.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// String returns the named parameter as a string, or def when missing
// or not a string.
func (p Params) String(key string, def string) string {
	v, ok := p[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Merged overlays p on top of defaults and returns the combined bag.
// Neither input is modified.
func (p Params) Merged(defaults Params) Params {
	if len(defaults) == 0 && len(p) == 0 {
		return Params{}
	}
	out := make(Params, len(defaults)+len(p))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range p {
		out[k] = v
	}
	return out
}
