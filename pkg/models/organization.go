package models

import (
	"time"
)

// Organization is an authoring group that owns profiles.
type Organization struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	CollaborationURL string    `json:"collaboration_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
