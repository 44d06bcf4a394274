// Package transport defines the request and response DTOs of the leads API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,max=100"`
	Company    string `json:"company" validate:"omitempty,max=200"`
	Stage      string `json:"stage" validate:"omitempty,max=100"`
	AssignedTo string `json:"assignedTo" validate:"omitempty,max=100"`
	Notes      string `json:"notes"`
}

type UpdateLeadRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=100"`
	Company    *string `json:"company" validate:"omitempty,max=200"`
	Stage      *string `json:"stage" validate:"omitempty,max=100"`
	AssignedTo *string `json:"assignedTo" validate:"omitempty,max=100"`
	Notes      *string `json:"notes"`
}

type ListLeadsQuery struct {
	Stage      string `form:"stage"`
	AssignedTo string `form:"assignedTo"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

type LeadResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company"`
	Stage       string    `json:"stage"`
	AssignedTo  string    `json:"assignedTo"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	LastContact time.Time `json:"lastContact"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type LeadListResponse struct {
	Leads    []LeadResponse `json:"leads"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type CreateLeadResponse struct {
	Lead      LeadResponse   `json:"lead"`
	Duplicate *DuplicateInfo `json:"duplicate,omitempty"`
}

type CheckDuplicateRequest struct {
	Phone string `json:"phone" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	// ExcludeID skips one pool entry, so an existing lead can be checked
	// without matching itself.
	ExcludeID uuid.UUID `json:"excludeId"`
}

type DuplicateInfo struct {
	OriginalID   uuid.UUID `json:"originalId"`
	OriginalName string    `json:"originalName"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CheckDuplicateResponse struct {
	IsDuplicate bool           `json:"isDuplicate"`
	Original    *DuplicateInfo `json:"original,omitempty"`
}

type DuplicatePairResponse struct {
	Original  LeadResponse `json:"original"`
	Duplicate LeadResponse `json:"duplicate"`
}

type RecordActionRequest struct {
	NextAction string `json:"nextAction" validate:"required,max=100"`
	Notes      string `json:"notes"`
}

type ActionResponse struct {
	ID         uuid.UUID `json:"id"`
	LeadID     uuid.UUID `json:"leadId"`
	NextAction string    `json:"nextAction"`
	Notes      string    `json:"notes"`
	StageSet   string    `json:"stageSet,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ResolveDuplicateRequest struct {
	Resolution string `json:"resolution" validate:"required,oneof=warn transfer keep_original"`
}

type ResolveDuplicateResponse struct {
	Resolution string       `json:"resolution"`
	Lead       LeadResponse `json:"lead"`
}

type AssignLeadsRequest struct {
	LeadIDs  []uuid.UUID `json:"leadIds" validate:"required,min=1,dive,required"`
	Assignee string      `json:"assignee" validate:"required"`
	// QueueIfBlocked asks for the batch to be scheduled at the next window
	// opening instead of rejected when delayed rotation is in effect.
	QueueIfBlocked bool `json:"queueIfBlocked"`
}

type AssignLeadsResponse struct {
	Assigned int    `json:"assigned"`
	Queued   bool   `json:"queued"`
	Reason   string `json:"reason,omitempty"`
}

type ArchivedLeadResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Company    string    `json:"company"`
	Stage      string    `json:"stage"`
	AssignedTo string    `json:"assignedTo"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
	DeletedAt  time.Time `json:"deletedAt"`
}
