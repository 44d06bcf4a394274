// Package domain provides core business rules for the pipeline bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// StageUnchanged is a sentinel indicating that a derivation function
	// intentionally does not prescribe a pipeline stage. The caller must
	// keep the current stage of the lead.
	StageUnchanged = ""

	// StageDuplicate is forced onto a newly created lead when the duplicate
	// matcher finds an existing record, overriding any requested stage.
	// It is valid even when absent from the stage-definition list.
	StageDuplicate = "Duplicate"

	// StagePending is the single canonical post-assignment stage. The lead
	// returns to it whenever an agent takes over.
	StagePending = "Pending"
)

// Action intents recorded on action-taken events. The classifier maps them
// to stage-definition types and names.
const (
	IntentFollowUp     = "follow_up"
	IntentMeeting      = "meeting"
	IntentProposal     = "proposal"
	IntentReservation  = "reservation"
	IntentRent         = "rent"
	IntentClosingDeals = "closing_deals"
	IntentCancel       = "cancel"
)

var knownIntents = map[string]struct{}{
	IntentFollowUp:     {},
	IntentMeeting:      {},
	IntentProposal:     {},
	IntentReservation:  {},
	IntentRent:         {},
	IntentClosingDeals: {},
	IntentCancel:       {},
}

// IsKnownIntent reports whether the intent tag is one the classifier understands.
func IsKnownIntent(intent string) bool {
	_, ok := knownIntents[intent]
	return ok
}

// StageDefinition is an operator-configurable pipeline stage. Name is unique
// case-insensitively within the list; the whole list is replaceable at any time.
type StageDefinition struct {
	ID           uuid.UUID
	Name         string
	NameAr       string
	Type         string // optional semantic tag matching an action intent
	Color        string
	Icon         string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
