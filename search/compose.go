package search

import (
	"fmt"
	"strings"

	"github.com/quaerolabs/quaero/core"
)

const previewLength = 200

// ChooseMode selects the rendering mode for one request. Contributions are
// emphasized only when their quality beats the document set's and at least
// one contribution was found.
func ChooseMode(quality core.QualityScore, contributionCount int) core.RenderMode {
	if quality.ContributionQuality > quality.VectorQuality && contributionCount > 0 {
		return core.ModeEmphasized
	}
	return core.ModeStandard
}

// Compose renders the combined context for the downstream consumer.
// Contribution entries always precede document entries; the mode only
// changes the section labels. Empty sections are omitted entirely, and when
// both sets are empty the context text is an empty string.
func Compose(documents []core.DocumentHit, contributions []core.ContributionHit, mode core.RenderMode) core.ComposedContext {
	var parts []string

	if len(contributions) > 0 {
		entries := make([]string, 0, len(contributions))
		for i, hit := range contributions {
			var b strings.Builder
			if mode == core.ModeEmphasized {
				fmt.Fprintf(&b, "HIGHLY RELEVANT USER CONTRIBUTION #%d:\n", i+1)
			} else {
				fmt.Fprintf(&b, "USER CONTRIBUTION #%d:\n", i+1)
			}
			if hit.Contribution.Question != "" {
				fmt.Fprintf(&b, "Question: %s\n", hit.Contribution.Question)
			}
			fmt.Fprintf(&b, "Answer: %s\n", hit.Contribution.Answer)
			fmt.Fprintf(&b, "Rating: %.1f/5.0 (Similarity: %.2f)", hit.Contribution.Rating, hit.Similarity)
			entries = append(entries, b.String())
		}
		label := "USER CONTRIBUTIONS AND ENHANCEMENTS:"
		if mode == core.ModeEmphasized {
			label = "USER CONTRIBUTIONS (PRIORITIZED):"
		}
		parts = append(parts, label+"\n"+strings.Join(entries, "\n\n"))
	}

	if len(documents) > 0 {
		entries := make([]string, 0, len(documents))
		for i, hit := range documents {
			entries = append(entries, fmt.Sprintf("DOCUMENT #%d (from %s):\n%s\n(Similarity: %.2f)",
				i+1, hit.Chunk.SourceDocument, hit.Chunk.Text, hit.Similarity))
		}
		label := "ORIGINAL KNOWLEDGE BASE:"
		if mode == core.ModeEmphasized {
			label = "SUPPLEMENTARY DOCUMENTATION:"
		}
		parts = append(parts, label+"\n"+strings.Join(entries, "\n\n"))
	}

	return core.ComposedContext{
		Text:    strings.Join(parts, "\n\n"),
		Mode:    mode,
		Sources: collectSources(documents, contributions),
	}
}

// collectSources builds the structured source records behind a composed
// context: document chunks first, then contributions.
func collectSources(documents []core.DocumentHit, contributions []core.ContributionHit) []core.SourceRef {
	sources := make([]core.SourceRef, 0, len(documents)+len(contributions))

	for _, hit := range documents {
		sources = append(sources, core.SourceRef{
			Filename:    hit.Chunk.SourceDocument,
			SourceType:  "original_document",
			Similarity:  hit.Similarity,
			TextPreview: preview(hit.Chunk.Text),
		})
	}

	for _, hit := range contributions {
		sources = append(sources, core.SourceRef{
			Filename:       "User Contribution",
			SourceType:     "user_contribution",
			Similarity:     hit.Similarity,
			ContributionId: hit.Contribution.Id,
			Rating:         hit.Contribution.Rating,
			UsageCount:     hit.Contribution.UsageCount,
			TextPreview:    preview(hit.Contribution.Answer),
		})
	}

	return sources
}

func preview(text string) string {
	if len(text) > previewLength {
		return text[:previewLength] + "..."
	}
	return text
}
