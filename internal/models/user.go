package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a Heartview account stored in PostgreSQL. Accounts are created either
// by password signup or on first Kakao login (ProviderID set). Never deleted by
// this service.
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Provider    string    `json:"provider,omitempty"`
	ProviderID  string    `json:"provider_id,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Region      string    `json:"region,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}
