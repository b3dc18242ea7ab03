package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/quaerolabs/quaero/core"
	"github.com/quaerolabs/quaero/storage"
)

func newTestRepo(t *testing.T) storage.ContributionRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestContributionCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &core.Contribution{
		Question: "How do I configure the retry budget?",
		Answer:   "Set the budget in the worker config file.",
		Rating:   4.0,
	})
	if err != nil {
		t.Fatalf("Failed to create contribution: %v", err)
	}

	if created.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if created.Approval != core.ApprovalPending {
		t.Fatalf("Expected pending approval, got %v", created.Approval)
	}
	if len(created.Keywords) == 0 {
		t.Fatal("Expected keywords to be derived from the question")
	}
	if created.ContentHash == "" {
		t.Fatal("Expected content hash to be populated")
	}
	if created.SubmittedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be populated")
	}

	retrieved, err := repo.Get(ctx, created.Id)
	if err != nil {
		t.Fatalf("Failed to get contribution: %v", err)
	}
	if retrieved.Question != created.Question {
		t.Fatalf("Expected %q, got %q", created.Question, retrieved.Question)
	}
	if retrieved.Rating != 4.0 {
		t.Fatalf("Expected rating 4.0, got %v", retrieved.Rating)
	}
}

func TestContributionCreateInvalid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &core.Contribution{Question: "", Answer: "a"})
	if !errors.Is(err, core.ErrEmptyQuestion) {
		t.Fatalf("Expected ErrEmptyQuestion, got %v", err)
	}

	_, err = repo.Create(ctx, &core.Contribution{Question: "q", Answer: "a", Rating: 6})
	if !errors.Is(err, core.ErrInvalidRating) {
		t.Fatalf("Expected ErrInvalidRating, got %v", err)
	}
}

func TestContributionGetNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), core.ID(9999))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestContributionApprovalTransitions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &core.Contribution{
		Question: "What port does the gateway listen on?",
		Answer:   "8443 by default.",
	})
	if err != nil {
		t.Fatalf("Failed to create contribution: %v", err)
	}

	approved, err := repo.UpdateApproval(ctx, created.Id, core.ApprovalApproved)
	if err != nil {
		t.Fatalf("Failed to approve: %v", err)
	}
	if approved.Approval != core.ApprovalApproved {
		t.Fatalf("Expected approved state, got %v", approved.Approval)
	}

	// Approved is terminal
	_, err = repo.UpdateApproval(ctx, created.Id, core.ApprovalRejected)
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	// The index moved with the state
	pending, err := repo.ListByApproval(ctx, core.ApprovalPending)
	if err != nil {
		t.Fatalf("Failed to list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("Expected no pending contributions, got %d", len(pending))
	}

	approvedList, err := repo.ListByApproval(ctx, core.ApprovalApproved)
	if err != nil {
		t.Fatalf("Failed to list approved: %v", err)
	}
	if len(approvedList) != 1 {
		t.Fatalf("Expected 1 approved contribution, got %d", len(approvedList))
	}
}

func TestContributionListByApprovalOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inputs := []*core.Contribution{
		{Question: "first question about deploys", Answer: "a", Rating: 3.0},
		{Question: "second question about deploys", Answer: "b", Rating: 5.0},
		{Question: "third question about deploys", Answer: "c", Rating: 5.0},
	}
	for _, in := range inputs {
		created, err := repo.Create(ctx, in)
		if err != nil {
			t.Fatalf("Failed to create contribution: %v", err)
		}
		if _, err := repo.UpdateApproval(ctx, created.Id, core.ApprovalApproved); err != nil {
			t.Fatalf("Failed to approve: %v", err)
		}
	}

	// Bump usage on the third so it outranks the second at equal rating
	if err := repo.IncrementUsage(ctx, inputs[2].Id); err != nil {
		t.Fatalf("Failed to increment usage: %v", err)
	}

	results, err := repo.ListByApproval(ctx, core.ApprovalApproved)
	if err != nil {
		t.Fatalf("Failed to list approved: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 contributions, got %d", len(results))
	}
	if results[0].Id != inputs[2].Id {
		t.Fatalf("Expected highest-usage 5.0 contribution first, got %d", results[0].Id)
	}
	if results[1].Id != inputs[1].Id {
		t.Fatalf("Expected other 5.0 contribution second, got %d", results[1].Id)
	}
	if results[2].Rating != 3.0 {
		t.Fatalf("Expected 3.0 contribution last, got rating %v", results[2].Rating)
	}
}

func TestContributionApproveAllPending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &core.Contribution{
			Question: "pending question number " + string(rune('a'+i)),
			Answer:   "answer",
		})
		if err != nil {
			t.Fatalf("Failed to create contribution: %v", err)
		}
	}

	count, err := repo.ApproveAllPending(ctx)
	if err != nil {
		t.Fatalf("Failed to approve all pending: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 approvals, got %d", count)
	}

	pending, err := repo.ListByApproval(ctx, core.ApprovalPending)
	if err != nil {
		t.Fatalf("Failed to list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("Expected no pending contributions, got %d", len(pending))
	}

	// Idempotent on an empty pending set
	count, err = repo.ApproveAllPending(ctx)
	if err != nil {
		t.Fatalf("Failed second approve-all: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 approvals, got %d", count)
	}
}

func TestContributionIncrementUsage(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &core.Contribution{
		Question: "How many replicas does the cache run?",
		Answer:   "Three.",
	})
	if err != nil {
		t.Fatalf("Failed to create contribution: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := repo.IncrementUsage(ctx, created.Id); err != nil {
			t.Fatalf("Failed to increment usage: %v", err)
		}
	}

	retrieved, err := repo.Get(ctx, created.Id)
	if err != nil {
		t.Fatalf("Failed to get contribution: %v", err)
	}
	if retrieved.UsageCount != 5 {
		t.Fatalf("Expected usage count 5, got %d", retrieved.UsageCount)
	}

	if err := repo.IncrementUsage(ctx, core.ID(424242)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestContributionTopContributions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ratings := []float64{2.0, 5.0, 3.5, 4.0}
	for i, rating := range ratings {
		created, err := repo.Create(ctx, &core.Contribution{
			Question: "ranked question number " + string(rune('a'+i)),
			Answer:   "answer",
			Rating:   rating,
		})
		if err != nil {
			t.Fatalf("Failed to create contribution: %v", err)
		}
		if _, err := repo.UpdateApproval(ctx, created.Id, core.ApprovalApproved); err != nil {
			t.Fatalf("Failed to approve: %v", err)
		}
	}

	top, err := repo.TopContributions(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to get top contributions: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 contributions, got %d", len(top))
	}
	if top[0].Rating != 5.0 || top[1].Rating != 4.0 {
		t.Fatalf("Expected ratings [5.0 4.0], got [%v %v]", top[0].Rating, top[1].Rating)
	}
}

func TestContributionFindByContentHash(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, &core.Contribution{
		Question: "How do I rotate the signing key?",
		Answer:   "Run the rotation job.",
	})
	if err != nil {
		t.Fatalf("Failed to create contribution: %v", err)
	}

	// Same question up to normalization hashes identically
	_, err = repo.Create(ctx, &core.Contribution{
		Question: "  How do I ROTATE the signing key?!  ",
		Answer:   "Different answer.",
	})
	if err != nil {
		t.Fatalf("Failed to create duplicate: %v", err)
	}

	matches, err := repo.FindByContentHash(ctx, first.ContentHash)
	if err != nil {
		t.Fatalf("Failed to find by content hash: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}

	none, err := repo.FindByContentHash(ctx, core.ContentHash("something else entirely"))
	if err != nil {
		t.Fatalf("Failed to find by content hash: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("Expected no matches, got %d", len(none))
	}
}

func TestContributionSearchText(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	searcher, ok := repo.(storage.FullTextSearcher)
	if !ok {
		t.Fatal("Expected repository to provide full-text search")
	}

	approved, err := repo.Create(ctx, &core.Contribution{
		Question: "Where are the nightly backups stored?",
		Answer:   "In the cold-storage bucket.",
	})
	if err != nil {
		t.Fatalf("Failed to create contribution: %v", err)
	}
	if _, err := repo.UpdateApproval(ctx, approved.Id, core.ApprovalApproved); err != nil {
		t.Fatalf("Failed to approve: %v", err)
	}

	// Pending contributions never match
	_, err = repo.Create(ctx, &core.Contribution{
		Question: "Where are the nightly logs stored?",
		Answer:   "On the log host.",
	})
	if err != nil {
		t.Fatalf("Failed to create pending contribution: %v", err)
	}

	results, err := searcher.SearchText(ctx, "NIGHTLY", 10)
	if err != nil {
		t.Fatalf("Failed to search text: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Id != approved.Id {
		t.Fatalf("Expected approved contribution, got %d", results[0].Id)
	}

	// Answer text matches too
	results, err = searcher.SearchText(ctx, "cold-storage", 10)
	if err != nil {
		t.Fatalf("Failed to search text: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	if _, err := searcher.SearchText(ctx, "   ", 10); !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery, got %v", err)
	}
}
