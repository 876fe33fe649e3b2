package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account and its generation entitlement state
type User struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // Never serialize password hash
	CompanyName     *string   `json:"company_name"`
	LogoURL         *string   `json:"logo_url"`
	CustomAPIKey    *string   `json:"-"`
	GenerationCount int       `json:"generation_count"`
	AverageRate     *float64  `json:"average_rate"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasCustomKey reports whether the user has stored their own generation credential
func (u *User) HasCustomKey() bool {
	return u.CustomAPIKey != nil && *u.CustomAPIKey != ""
}

// UserSettings is a partial update of the user-editable settings
type UserSettings struct {
	CustomAPIKey *string
	AverageRate  *float64
}
