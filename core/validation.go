// Copyright 2025 Quaero Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateContribution validates a Contribution according to domain rules.
//
// Validation rules:
//   - Question must not be empty
//   - Answer must not be empty
//   - Rating must be within [0, 5]
//   - ApprovalState must be valid
//
// NOT validated (populated by the repository on create):
//   - Keywords
//   - ContentHash
//   - ID (0 is valid before a database sequence assigns one)
func ValidateContribution(c *Contribution) error {
	if c == nil {
		return fmt.Errorf("%w: contribution is nil", ErrInvalidContribution)
	}

	if c.Question == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContribution, ErrEmptyQuestion)
	}

	if c.Answer == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContribution, ErrEmptyAnswer)
	}

	if c.Rating < 0 || c.Rating > 5 {
		return fmt.Errorf("%w: %w", ErrInvalidContribution, ErrInvalidRating)
	}

	if err := ValidateApprovalState(c.Approval); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContribution, err)
	}

	return nil
}

// ValidateApprovalState checks that state is one of the defined values.
func ValidateApprovalState(state ApprovalState) error {
	switch state {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidApprovalState, state)
	}
}

// ValidateTransition checks a moderation transition. Only pending
// contributions may move, and only to approved or rejected.
func ValidateTransition(from, to ApprovalState) error {
	if err := ValidateApprovalState(to); err != nil {
		return err
	}
	if from != ApprovalPending {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, from)
	}
	if to == ApprovalPending {
		return fmt.Errorf("%w: cannot transition back to pending", ErrInvalidApprovalState)
	}
	return nil
}
