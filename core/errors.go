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

import "errors"

// Domain validation errors
var (
	// ErrInvalidContribution indicates a Contribution failed validation.
	ErrInvalidContribution = errors.New("invalid contribution")

	// ErrEmptyQuestion indicates the Question field is empty.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyAnswer indicates the Answer field is empty.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrInvalidRating indicates a rating outside [0, 5].
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrInvalidApprovalState indicates an invalid ApprovalState value.
	ErrInvalidApprovalState = errors.New("invalid approval state")

	// ErrInvalidTransition indicates a moderation transition from a terminal state.
	ErrInvalidTransition = errors.New("approval state is terminal")
)
