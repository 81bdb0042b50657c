package models

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry is a marketing waitlist signup from the public site.
type WaitlistEntry struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
}
