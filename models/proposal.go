package models

import (
	"time"

	"github.com/google/uuid"
)

// ProposalStatus is an advisory workflow label. Any status may follow any other.
type ProposalStatus string

const (
	StatusDraft    ProposalStatus = "Draft"
	StatusSent     ProposalStatus = "Sent"
	StatusAccepted ProposalStatus = "Accepted"
	StatusRejected ProposalStatus = "Rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ProposalStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// DefaultClientName is used when a proposal is created without a client name.
const DefaultClientName = "New Client"

// Proposal represents a client proposal and the line items it owns
type Proposal struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	ClientName      string         `json:"client_name"`
	RawInput        string         `json:"raw_input"`
	RefinedMarkdown string         `json:"refined_markdown"`
	Status          ProposalStatus `json:"status"`
	TotalAmount     float64        `json:"total_amount"`
	LineItems       []LineItem     `json:"lineItems"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// LineItem is a priced unit of work within a proposal.
// ID is nil for items that have not been persisted yet.
type LineItem struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	ProposalID  *uuid.UUID `json:"proposal_id,omitempty"`
	Description string     `json:"description"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
}

// ProposalPatch carries a partial update. Nil fields are left unchanged.
// A non-nil LineItems replaces the whole line item set.
type ProposalPatch struct {
	ClientName      *string
	RawInput        *string
	RefinedMarkdown *string
	Status          *ProposalStatus
	TotalAmount     *float64
	LineItems       *[]LineItem
}
