package search

import "github.com/quaerolabs/quaero/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
type RetrievalMonitor interface {
	Start(question string)
	AfterVectorSearch(hits []core.DocumentHit)
	AfterContributionSearch(hits []core.ContributionHit)
	AfterQualityAssessment(quality core.QualityScore)
	Finish(result *core.RetrievalResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                {}
func (n *noopMonitor) AfterVectorSearch(_ []core.DocumentHit)        {}
func (n *noopMonitor) AfterContributionSearch(_ []core.ContributionHit) {}
func (n *noopMonitor) AfterQualityAssessment(_ core.QualityScore)    {}
func (n *noopMonitor) Finish(_ *core.RetrievalResult)                {}
