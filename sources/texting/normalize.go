package texting

import "strings"

// typographic characters the upstream models like to emit, folded back to
// their ASCII equivalents so the widget renders uniformly across fonts
var normalizer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"‛", "'",
	"′", "'",
	"‵", "'",
	"“", `"`,
	"”", `"`,
	"‟", `"`,
	"–", "-",
	"—", "-",
	"…", "...",
)

// Normalize folds typographic punctuation to ASCII. It is idempotent, so it
// is safe to apply to every published streaming increment.
func Normalize(text string) string {
	return normalizer.Replace(text)
}
