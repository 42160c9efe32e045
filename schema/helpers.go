package schema

import (
	"strings"
	"unicode"
)

// DisplayName turns a normalized key like "karl_anthony_towns" into "Karl Anthony Towns".
// Names that are not normalized keys are returned trimmed.
func DisplayName(key string) string {
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, " ") {
		return key
	}
	parts := strings.Split(key, "_")
	for i, p := range parts {
		rr := []rune(p)
		if len(rr) > 0 {
			rr[0] = unicode.ToUpper(rr[0])
		}
		parts[i] = string(rr)
	}
	return strings.Join(parts, " ")
}

// getInitial extracts the initial from the last name part, using the first rune for Unicode safety.
func getInitial(last string) string {
	rr := []rune(last)
	if len(rr) > 0 {
		return string(rr[0])
	}
	return ""
}

// AbbreviateName formats "Jayson Tatum" (or "jayson_tatum") to "Jayson T".
// Single-part names are returned unchanged.
func AbbreviateName(name string) string {
	parts := strings.Fields(DisplayName(name))
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return parts[0] + " " + getInitial(parts[len(parts)-1])
}

// FormatPlayers formats a list of player keys as "Anthony D, Rui H".
func FormatPlayers(players []string) string {
	abbreviated := make([]string, 0, len(players))
	for _, p := range players {
		abbreviated = append(abbreviated, AbbreviateName(p))
	}
	return strings.Join(abbreviated, ", ")
}
