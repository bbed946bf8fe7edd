package seo

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var fallbackTemplates = []string{
	"Everything you need to know about %[1]s: the latest %[2]s news, reviews and guides, updated daily on KOODOS.",
	"Explore %[1]s on KOODOS. In-depth coverage of %[2]s with expert analysis, honest reviews and community picks.",
	"Your guide to %[1]s and %[2]s. Read reviews, tips and the latest updates from the KOODOS editorial team.",
}

// FallbackDescription fills one of the fixed templates with the page's top
// keywords. rng picks the template.
func FallbackDescription(rng *rand.Rand, title string, keywords []string) string {
	primary, secondary := fallbackSubjects(title, keywords)
	tmpl := fallbackTemplates[rng.IntN(len(fallbackTemplates))]
	return fmt.Sprintf(tmpl, primary, secondary)
}

func fallbackSubjects(title string, keywords []string) (string, string) {
	primary := strings.TrimSpace(title)
	secondary := "gaming"

	switch {
	case len(keywords) >= 2:
		primary, secondary = keywords[0], keywords[1]
	case len(keywords) == 1:
		primary = keywords[0]
	}
	if primary == "" {
		primary = "games and entertainment"
	}
	return primary, secondary
}
