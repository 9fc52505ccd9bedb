package grading

import (
	"examgrade/grading/internal/cache"
	"examgrade/grading/internal/models"
	"examgrade/grading/internal/utils"
)

// DuplicateGroup collects the submissions in a batch that share identical
// content. Only the representative goes through the expensive pipeline;
// its result is fanned out to the rest.
type DuplicateGroup struct {
	Fingerprint    string
	Representative models.Submission
	Members        []models.Submission
}

// GroupByContent partitions a batch by content fingerprint, preserving
// first-seen order. Every submission lands in exactly one group; identity
// fields play no part. Empty or whitespace-only submissions share the
// reserved empty bucket.
func GroupByContent(submissions []models.Submission) []*DuplicateGroup {
	var groups []*DuplicateGroup
	byFingerprint := make(map[string]*DuplicateGroup)

	for _, sub := range submissions {
		fingerprint := cache.Fingerprint(utils.NormalizeContent(sub.Content))

		group, exists := byFingerprint[fingerprint]
		if !exists {
			group = &DuplicateGroup{
				Fingerprint:    fingerprint,
				Representative: sub,
			}
			byFingerprint[fingerprint] = group
			groups = append(groups, group)
		}
		group.Members = append(group.Members, sub)
	}

	return groups
}

// fanOut copies the representative's result to every other group member.
// The representative's computation always completes before copies are made.
func fanOut(group *DuplicateGroup, representative models.SubmissionResult) []models.SubmissionResult {
	results := make([]models.SubmissionResult, 0, len(group.Members))
	results = append(results, representative)

	for _, member := range group.Members {
		if member.ID == group.Representative.ID {
			continue
		}
		copied := representative
		copied.SubmissionID = member.ID
		copied.IsDuplicate = true
		copied.OriginalSubmissionID = group.Representative.ID
		results = append(results, copied)
	}

	return results
}
