package types

import (
	"github.com/google/uuid"
	"time"
)

type NotificationKind string

const (
	NotificationContactSubmitted NotificationKind = "contact_submitted"
)

// NotificationJob 以 JSON 形式存放在 Redis 队列中
type NotificationJob struct {
	ID   uuid.UUID        `json:"id"`
	Kind NotificationKind `json:"kind"`

	ContactID   uint      `json:"contactId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Company     string    `json:"company,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	ProjectType string    `json:"projectType"`
	Budget      string    `json:"budget"`
	Timeline    string    `json:"timeline"`
	IsSpam      bool      `json:"isSpam"`
	SubmittedAt time.Time `json:"submittedAt"`
}
