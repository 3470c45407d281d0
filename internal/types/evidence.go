package types

// Evidence is the loosely typed bag of signals a pillar extracts. The same map feeds
// both the pillar's own point math and the recommendation rules, so the accessors
// below tolerate the numeric types produced by JSON round trips.
type Evidence map[string]any

// Int returns the value at key as an int, or 0.
func (e Evidence) Int(key string) int {
	switch v := e[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	}
	return 0
}

// Float returns the value at key as a float64, or 0.
func (e Evidence) Float(key string) float64 {
	switch v := e[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Bool returns the value at key as a bool, or false.
func (e Evidence) Bool(key string) bool {
	v, _ := e[key].(bool)
	return v
}

// String returns the value at key as a string, or "".
func (e Evidence) String(key string) string {
	v, _ := e[key].(string)
	return v
}

// Has reports whether key is present.
func (e Evidence) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Strings returns the value at key as a string slice.
func (e Evidence) Strings(key string) []string {
	switch v := e[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns the nested evidence at key, or an empty Evidence.
func (e Evidence) Map(key string) Evidence {
	switch v := e[key].(type) {
	case Evidence:
		return v
	case map[string]any:
		return Evidence(v)
	}
	return Evidence{}
}
