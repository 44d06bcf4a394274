package transport

import (
	"time"

	"github.com/google/uuid"
)

// StageDefinitionRequest creates or updates a single stage definition.
type StageDefinitionRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	NameAr       string `json:"nameAr,omitempty" validate:"max=100"`
	Type         string `json:"type,omitempty" validate:"omitempty,oneof=follow_up meeting proposal reservation rent closing_deals cancel"`
	Color        string `json:"color,omitempty" validate:"max=20"`
	Icon         string `json:"icon,omitempty" validate:"max=50"`
	DisplayOrder int    `json:"displayOrder" validate:"min=0"`
}

// ReplaceStagesRequest swaps the whole definition list at once.
type ReplaceStagesRequest struct {
	Stages []StageDefinitionRequest `json:"stages" validate:"required,min=1,dive"`
}

// StageDefinitionResponse mirrors a persisted stage definition.
type StageDefinitionResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	NameAr       string    `json:"nameAr,omitempty"`
	Type         string    `json:"type,omitempty"`
	Color        string    `json:"color,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
