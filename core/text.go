package core

import (
	"strings"
	"unicode"
)

// Stop words excluded from keyword extraction. Matching the moderation
// store's indexing behavior matters more than linguistic completeness here.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true, "might": true,
	"can": true, "what": true, "how": true, "when": true, "where": true,
	"why": true, "who": true, "this": true, "that": true, "these": true,
	"those": true, "i": true, "you": true, "he": true, "she": true,
	"it": true, "we": true, "they": true, "me": true, "him": true,
	"her": true, "us": true, "them": true, "my": true, "your": true,
	"his": true, "its": true, "our": true, "their": true, "am": true,
	"not": true, "so": true, "if": true, "then": true, "than": true,
	"as": true, "up": true, "down": true, "out": true, "off": true,
	"over": true, "under": true, "again": true, "further": true,
	"once": true, "here": true, "there": true, "all": true, "any": true,
	"both": true, "each": true, "few": true, "more": true, "most": true,
	"other": true, "some": true, "such": true, "no": true, "nor": true,
	"only": true, "own": true, "same": true, "too": true, "very": true,
	"just": true, "now": true, "get": true, "got": true, "go": true,
	"goes": true, "went": true, "come": true, "came": true, "see": true,
	"saw": true, "know": true, "knew": true, "think": true, "thought": true,
	"take": true, "took": true, "give": true, "gave": true, "make": true,
	"made": true, "find": true, "found": true, "tell": true, "told": true,
	"ask": true, "asked": true, "work": true, "worked": true, "seem": true,
	"seemed": true, "feel": true, "felt": true, "try": true, "tried": true,
	"leave": true, "left": true, "call": true, "called": true,
}

// NormalizeText lowercases text, replaces every non-alphanumeric rune with a
// space, and collapses whitespace runs. The result is the canonical form used
// for similarity comparison and content hashing.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ExtractKeywords returns up to max unique stop-word-filtered keywords from
// text. Words of two characters or fewer are dropped. Order follows first
// appearance so results are deterministic.
func ExtractKeywords(text string, max int) []string {
	words := strings.Fields(NormalizeText(text))
	seen := make(map[string]bool, len(words))
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) <= 2 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == max {
			break
		}
	}
	return keywords
}

// IsStopWord reports whether word is in the shared stop-word set.
func IsStopWord(word string) bool {
	return stopWords[word]
}
