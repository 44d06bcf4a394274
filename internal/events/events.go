package events

import (
	platformevents "leadflow_backend/platform/events"

	"github.com/google/uuid"
)

// LeadCreated is published after a new lead has been persisted.
type LeadCreated struct {
	platformevents.BaseEvent
	LeadID    uuid.UUID
	Duplicate bool
}

// EventName returns the unique identifier for this event type.
func (LeadCreated) EventName() string { return "leads.created" }

// DuplicateDetected is published when an incoming lead matched an existing
// record and was flagged with the Duplicate stage.
type DuplicateDetected struct {
	platformevents.BaseEvent
	LeadID     uuid.UUID
	OriginalID uuid.UUID
}

// EventName returns the unique identifier for this event type.
func (DuplicateDetected) EventName() string { return "leads.duplicate_detected" }

// LeadsAssigned is published after a batch assignment succeeded.
type LeadsAssigned struct {
	platformevents.BaseEvent
	LeadIDs  []uuid.UUID
	Assignee string
	Count    int
}

// EventName returns the unique identifier for this event type.
func (LeadsAssigned) EventName() string { return "leads.assigned" }

// LeadArchived is published when a lead is moved to the deleted archive.
type LeadArchived struct {
	platformevents.BaseEvent
	LeadID uuid.UUID
	Reason string
}

// EventName returns the unique identifier for this event type.
func (LeadArchived) EventName() string { return "leads.archived" }

// ColdLeadsReshuffled is published after a reshuffle task returned stale
// leads to the unassigned pool.
type ColdLeadsReshuffled struct {
	platformevents.BaseEvent
	Count int
}

// EventName returns the unique identifier for this event type.
func (ColdLeadsReshuffled) EventName() string { return "rotation.cold_leads_reshuffled" }
