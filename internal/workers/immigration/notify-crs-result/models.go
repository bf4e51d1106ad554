// internal/workers/immigration/notify-crs-result/models.go
package notifycrsresult

import (
	"time"

	"immigration-workers/internal/crs"
)

type Recipient struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Input struct {
	RequestID    string      `json:"requestId"`
	UserID       string      `json:"userId"`
	AssessmentID string      `json:"assessmentId,omitempty"`
	Assessment   *crs.Result `json:"assessment"`
	Recipient    *Recipient  `json:"recipient,omitempty"`
}

type Output struct {
	NotificationID string    `json:"notificationId"`
	Status         string    `json:"status"`
	Channels       []string  `json:"channels"`
	SentAt         time.Time `json:"sentAt"`
}

// Statuses
const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
