package transport

// SettingsResponse mirrors the rotation settings singleton.
type SettingsResponse struct {
	AllowAssignRotation      bool   `json:"allowAssignRotation"`
	DelayAssignRotation      bool   `json:"delayAssignRotation"`
	WorkFrom                 string `json:"workFrom"`
	WorkTo                   string `json:"workTo"`
	ReshuffleColdLeads       bool   `json:"reshuffleColdLeads"`
	ReshuffleColdLeadsNumber int    `json:"reshuffleColdLeadsNumber"`
}

// UpdateSettingsRequest replaces the rotation settings singleton.
type UpdateSettingsRequest struct {
	AllowAssignRotation      bool   `json:"allowAssignRotation"`
	DelayAssignRotation      bool   `json:"delayAssignRotation"`
	WorkFrom                 string `json:"workFrom" validate:"required,hhmm"`
	WorkTo                   string `json:"workTo" validate:"required,hhmm"`
	ReshuffleColdLeads       bool   `json:"reshuffleColdLeads"`
	ReshuffleColdLeadsNumber int    `json:"reshuffleColdLeadsNumber" validate:"min=0"`
}

// ReshuffleResponse reports the outcome of a reshuffle enqueue request.
type ReshuffleResponse struct {
	Enqueued bool   `json:"enqueued"`
	Reason   string `json:"reason,omitempty"`
}
