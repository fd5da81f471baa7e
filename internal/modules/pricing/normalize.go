// README: Place-name normalization used for every table key and alias.
package pricing

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	dashVariants = strings.NewReplacer("‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-")
	spacedHyphen = regexp.MustCompile(`\s*-\s*`)
)

// Normalize maps user-typed place names onto a canonical lookup key.
// "Ростов - на - Дону" and "ростов-на-дону" produce the same key. It is idempotent.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ё", "е")
	s = dashVariants.Replace(s)
	return spacedHyphen.ReplaceAllString(s, "-")
}
