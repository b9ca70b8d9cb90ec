package model

import "time"

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

type ForwardStatus string

const (
	ForwardStatusPending ForwardStatus = "pending"
	ForwardStatusSent    ForwardStatus = "sent"
	ForwardStatusDead    ForwardStatus = "dead"
)

// AttributionForward is an outbox row: one per paid order, delivered to the
// attribution service by the background poller.
type AttributionForward struct {
	ID            uint          `gorm:"primaryKey"`
	OrderID       uint          `gorm:"uniqueIndex;not null"`
	Payload       []byte        `gorm:"not null"`
	Status        ForwardStatus `gorm:"size:16;index;not null;default:pending"`
	Attempts      int           `gorm:"not null;default:0"`
	NextAttemptAt time.Time     `gorm:"index"`
	LastError     string        `gorm:"size:1024"`
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AllModels is the AutoMigrate set.
func AllModels() []any {
	return []any{
		&Order{},
		&OrderItem{},
		&WebhookEvent{},
		&AttributionForward{},
	}
}
