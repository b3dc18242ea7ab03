package search

import (
	"strings"

	"github.com/quaerolabs/quaero/core"
)

// Component weights for the combined lexical similarity score.
const (
	jaccardWeight   = 0.6
	substringWeight = 0.3
	phraseWeight    = 0.1
)

// TextSimilarity scores two texts in [0,1] by combining three signals over
// their normalized forms: token-set overlap, substring matches between
// longer tokens, and phrase containment.
func TextSimilarity(text1, text2 string) float64 {
	a := core.NormalizeText(text1)
	b := core.NormalizeText(text2)
	if a == "" || b == "" {
		return 0.0
	}

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	setA := toSet(wordsA)
	setB := toSet(wordsB)

	score := jaccard(setA, setB)*jaccardWeight +
		substringOverlap(setA, setB)*substringWeight +
		phraseContainment(a, b, len(wordsA), len(wordsB))*phraseWeight

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// jaccard is the token-set overlap ratio |A∩B| / |A∪B|.
func jaccard(setA, setB map[string]bool) float64 {
	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// substringOverlap counts tokens of A longer than 3 characters that are a
// substring of, or contain, some token of B longer than 3 characters. Each
// token of A contributes at most one match. The ratio is taken over the
// larger of the two token sets.
func substringOverlap(setA, setB map[string]bool) float64 {
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	if larger == 0 {
		return 0.0
	}

	matches := 0
	for wordA := range setA {
		if len(wordA) <= 3 {
			continue
		}
		for wordB := range setB {
			if len(wordB) <= 3 {
				continue
			}
			if strings.Contains(wordA, wordB) || strings.Contains(wordB, wordA) {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(larger)
}

// phraseContainment awards 0.5 when one normalized text wholly contains the
// other, or 0.3 when any window longer than 10 characters of the shorter
// text appears in the longer. Single-word texts score zero here; they are
// already covered by the token components.
func phraseContainment(a, b string, wordsA, wordsB int) float64 {
	if wordsA <= 1 || wordsB <= 1 {
		return 0.0
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if strings.Contains(longer, shorter) {
		return 0.5
	}

	// Any substring longer than 10 characters appearing in the longer text
	// implies some 11-character window does, so scanning fixed windows is
	// sufficient.
	const window = 11
	for i := 0; i+window <= len(shorter); i++ {
		if strings.Contains(longer, shorter[i:i+window]) {
			return 0.3
		}
	}
	return 0.0
}
