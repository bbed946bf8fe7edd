package seo

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// MaxKeywords is how many keywords are extracted and stored per suggestion.
	MaxKeywords = 10
	// PromptKeywords is how many of them are handed to the generation service.
	PromptKeywords = 5
)

var wordPattern = regexp.MustCompile(`\b\w{4,}\b`)

// ExtractKeywords returns up to limit lower-cased words of four or more
// characters from text, most frequent first. Equal counts keep the order in
// which the words first appear.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	type kv struct {
		Key   string
		Count int
	}

	var ordered []*kv
	index := make(map[string]*kv)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if entry, ok := index[word]; ok {
			entry.Count++
			continue
		}
		entry := &kv{Key: word, Count: 1}
		index[word] = entry
		ordered = append(ordered, entry)
	}

	// Stable sort keeps first-seen order among ties.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Count > ordered[j].Count
	})

	if len(ordered) < limit {
		limit = len(ordered)
	}
	keywords := make([]string, limit)
	for i := 0; i < limit; i++ {
		keywords[i] = ordered[i].Key
	}
	return keywords
}
