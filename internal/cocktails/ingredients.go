package cocktails

import (
	"encoding/json"
	"strings"
)

// ParseIngredients resolves the two accepted ingredient shapes: a structured
// sequence of strings, or a single serialized JSON array (the form
// multipart/form-data clients send). A malformed serialized value degrades to
// an empty sequence; that fallback is the only tolerated leniency.
func ParseIngredients(values []string) []string {
	if len(values) == 1 {
		if s := strings.TrimSpace(values[0]); strings.HasPrefix(s, "[") {
			var parsed []string
			if err := json.Unmarshal([]byte(s), &parsed); err != nil {
				return []string{}
			}
			return NormalizeIngredients(parsed)
		}
	}
	return NormalizeIngredients(values)
}
