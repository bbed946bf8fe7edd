package seo

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMetaLength is the hard cap on a suggested meta description.
	MaxMetaLength = 160
	// IdealMetaMin is the lower end of the length band that earns a confidence bonus.
	IdealMetaMin = 120

	promptExcerptLength = 500
	baseConfidence      = 0.5
	lengthBonus         = 0.3
	keywordBonus        = 0.2
)

// Truncate cuts s to at most max runes. Words may be cut in the middle.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// Clean flattens whitespace and strips the quotes models like to wrap answers in.
func Clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, "\"'“”‘’ ")
}

// Confidence scores a meta description: 0.5 base, +0.3 when its length is
// within [120,160], +0.2 when any keyword occurs in it, capped at 1.
func Confidence(text string, keywords []string) float64 {
	score := baseConfidence

	n := utf8.RuneCountInString(text)
	if n >= IdealMetaMin && n <= MaxMetaLength {
		score += lengthBonus
	}

	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			score += keywordBonus
			break
		}
	}

	return math.Min(math.Round(score*100)/100, 1.0)
}

// BuildPrompt is the instruction sent to the generation service.
func BuildPrompt(title, contentPreview string, keywords []string) string {
	if len(keywords) > PromptKeywords {
		keywords = keywords[:PromptKeywords]
	}
	excerpt := Truncate(strings.TrimSpace(contentPreview), promptExcerptLength)

	return fmt.Sprintf(`Write a meta description for a page on KOODOS, a gaming and entertainment site.
Title: %s
Content excerpt: %s
Target keywords: %s
Rules: between 120 and 160 characters, one sentence or two, include at least one target keyword, no quotes, no emojis. Reply with the description only.`,
		title, excerpt, strings.Join(keywords, ", "))
}
