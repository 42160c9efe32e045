package schema

import (
	"strings"

	"github.com/gosimple/slug"
)

var nameStripper = strings.NewReplacer("'", "", "’", "", ".", "")

// NormalizeName converts a display name into the key used for players in every table.
// "D'Angelo Russell" becomes "dangelo_russell" and "Karl-Anthony Towns" becomes
// "karl_anthony_towns". Keys that are already normalized are returned unchanged.
func NormalizeName(name string) string {
	cleaned := nameStripper.Replace(strings.TrimSpace(name))
	if cleaned == "" {
		return ""
	}
	return strings.ReplaceAll(slug.Make(cleaned), "-", "_")
}
