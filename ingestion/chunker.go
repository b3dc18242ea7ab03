package ingestion

import "strings"

// ChunkText slides a window of chunkSize runes over text and returns the
// trimmed, non-empty windows in order. Consecutive windows share up to
// overlap runes; an overlap at or above the chunk size is clamped to half
// the chunk size rather than rejected. Empty or whitespace-only text yields
// no chunks.
func ChunkText(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		// Clamping keeps the cursor strictly advancing.
		overlap = chunkSize / 2
	}

	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	runes := []rune(text)
	var chunks []string

	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(runes) {
			break
		}

		// The next start never moves backwards, so termination holds even
		// for degenerate size/overlap combinations.
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}
