package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("how do I steam milk")
		id2 := IDFromContent("how do I steam milk")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content different id", func(t *testing.T) {
		assert.NotEqual(t, IDFromContent("alpha"), IDFromContent("beta"))
	})
}

func TestContentHash(t *testing.T) {
	t.Run("normalization-insensitive", func(t *testing.T) {
		// Punctuation and case differences hash identically
		h1 := ContentHash("How do I steam milk?")
		h2 := ContentHash("how do i   steam milk")
		assert.Equal(t, h1, h2)
	})

	t.Run("distinct questions distinct hashes", func(t *testing.T) {
		assert.NotEqual(t, ContentHash("steam milk"), ContentHash("grind beans"))
	})
}

func TestApprovalStateString(t *testing.T) {
	assert.Equal(t, "pending", ApprovalPending.String())
	assert.Equal(t, "approved", ApprovalApproved.String())
	assert.Equal(t, "rejected", ApprovalRejected.String())
	assert.Equal(t, "unknown", ApprovalState(0).String())
}

func TestRenderModeString(t *testing.T) {
	assert.Equal(t, "standard", ModeStandard.String())
	assert.Equal(t, "emphasized", ModeEmphasized.String())
}

func TestContributionMUSRoundTrip(t *testing.T) {
	c := Contribution{
		Id:              42,
		Question:        "how do I steam milk",
		Answer:          "use the wand at a shallow angle",
		QuestionType:    "technique",
		ImprovementType: "enhancement",
		Rating:          4.5,
		UsageCount:      7,
		Keywords:        []string{"steam", "milk", "wand"},
		ContentHash:     ContentHash("how do I steam milk"),
		Approval:        ApprovalApproved,
	}

	bs := make([]byte, ContributionMUS.Size(c))
	n := ContributionMUS.Marshal(c, bs)
	require.Equal(t, len(bs), n)

	got, n, err := ContributionMUS.Unmarshal(bs)
	require.NoError(t, err)
	require.Equal(t, len(bs), n)
	assert.Equal(t, c.Id, got.Id)
	assert.Equal(t, c.Question, got.Question)
	assert.Equal(t, c.Answer, got.Answer)
	assert.Equal(t, c.Rating, got.Rating)
	assert.Equal(t, c.UsageCount, got.UsageCount)
	assert.Equal(t, c.Keywords, got.Keywords)
	assert.Equal(t, c.Approval, got.Approval)
}

func TestContributionMUSTruncated(t *testing.T) {
	c := Contribution{Question: "q", Answer: "a", Approval: ApprovalPending}
	bs := make([]byte, ContributionMUS.Size(c))
	ContributionMUS.Marshal(c, bs)

	_, _, err := ContributionMUS.Unmarshal(bs[:2])
	assert.Error(t, err)
}
