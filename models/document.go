package models

import (
	"time"

	"github.com/google/uuid"
)

// Document represents a rendered PDF of a proposal kept in file storage
type Document struct {
	ID          uuid.UUID `json:"id"`
	ProposalID  uuid.UUID `json:"proposal_id"`
	Theme       string    `json:"theme"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
