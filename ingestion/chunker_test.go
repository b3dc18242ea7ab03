package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_Empty(t *testing.T) {
	chunks, err := ChunkText("", 100, 20)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = ChunkText("   \n\t  ", 100, 20)
	require.NoError(t, err)
	assert.Empty(t, chunks, "whitespace-only input should yield no chunks")
}

func TestChunkText_InvalidSize(t *testing.T) {
	_, err := ChunkText("some text", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = ChunkText("some text", -5, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
}

func TestChunkText_SingleChunk(t *testing.T) {
	chunks, err := ChunkText("short text", 100, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestChunkText_WindowsCoverText(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30) // 300 runes
	chunks, err := ChunkText(text, 100, 25)
	require.NoError(t, err)
	require.True(t, len(chunks) > 1, "long text should produce multiple chunks")

	// Every chunk fits the window and carries real content.
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100, "chunk %d exceeds window", i)
		assert.NotEmpty(t, strings.TrimSpace(chunk), "chunk %d is blank", i)
	}

	// The final chunk ends where the text ends.
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(text, last))
}

func TestChunkText_OverlapRepeatsContent(t *testing.T) {
	text := strings.Repeat("x", 150) + strings.Repeat("y", 150)
	chunks, err := ChunkText(text, 200, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// The second window replays the last 50 runes of the first.
	first := []rune(chunks[0])
	tail := string(first[len(first)-50:])
	assert.True(t, strings.HasPrefix(chunks[1], tail))
}

func TestChunkText_NegativeOverlapClamped(t *testing.T) {
	chunks, err := ChunkText(strings.Repeat("a", 250), 100, -10)
	require.NoError(t, err)
	assert.Len(t, chunks, 3, "negative overlap should behave like zero overlap")
}

func TestChunkText_ExcessiveOverlapTerminates(t *testing.T) {
	// Overlap at or above the window size would never advance; it is
	// corrected to half the window.
	text := strings.Repeat("z", 500)
	chunks, err := ChunkText(text, 100, 100)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	expected, err := ChunkText(text, 100, 50)
	require.NoError(t, err)
	assert.Equal(t, expected, chunks)
}

func TestChunkText_TrimsWindowEdges(t *testing.T) {
	chunks, err := ChunkText("  hello   world  ", 9, 0)
	require.NoError(t, err)
	for _, chunk := range chunks {
		assert.Equal(t, strings.TrimSpace(chunk), chunk)
	}
}
