package search

import "github.com/quaerolabs/quaero/core"

// VectorQuality scores a document result set in [0,1]: the average
// similarity plus a count bonus of up to 0.2 for five or more results.
// An empty set scores zero.
func VectorQuality(results []core.DocumentHit) float64 {
	if len(results) == 0 {
		return 0.0
	}

	var sum float64
	for _, hit := range results {
		sum += hit.Similarity
	}
	avg := sum / float64(len(results))

	countBonus := float64(len(results)) / 5.0
	if countBonus > 0.2 {
		countBonus = 0.2
	}

	quality := avg + countBonus
	if quality > 1.0 {
		quality = 1.0
	}
	return quality
}

// ContributionQuality scores a contribution result set in [0,1]: the
// average similarity plus a rating bonus of up to 0.3 for five-star
// averages and a count bonus of up to 0.2 for three or more results.
// An empty set scores zero.
func ContributionQuality(results []core.ContributionHit) float64 {
	if len(results) == 0 {
		return 0.0
	}

	var simSum, ratingSum float64
	for _, hit := range results {
		simSum += hit.Similarity
		ratingSum += hit.Contribution.Rating
	}
	avgSimilarity := simSum / float64(len(results))
	avgRating := ratingSum / float64(len(results))

	ratingBonus := (avgRating / 5.0) * 0.3

	countBonus := float64(len(results)) / 3.0
	if countBonus > 0.2 {
		countBonus = 0.2
	}

	quality := avgSimilarity + ratingBonus + countBonus
	if quality > 1.0 {
		quality = 1.0
	}
	return quality
}

// AssessQuality scores both result sets for one request.
func AssessQuality(documents []core.DocumentHit, contributions []core.ContributionHit) core.QualityScore {
	return core.QualityScore{
		VectorQuality:       VectorQuality(documents),
		ContributionQuality: ContributionQuality(contributions),
	}
}
