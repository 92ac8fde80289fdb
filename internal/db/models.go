package db

import (
	"time"

	"gorm.io/datatypes"
)

// Moderator is one member of the moderator tier.
type Moderator struct {
	UserID    string    `gorm:"primaryKey;size:64"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Moderator) TableName() string { return "moderators" }

// ReminderLog is an audit row for a fired reminder. The scheduler's
// in-memory dedup never reads this table; it exists for operators.
type ReminderLog struct {
	ID      uint      `gorm:"primaryKey;autoIncrement"`
	EventID string    `gorm:"size:128;index:idx_reminder_event_offset"`
	Offset  string    `gorm:"size:8;index:idx_reminder_event_offset;column:reminder_offset"`
	SentAt  time.Time `gorm:"index"`
	Details datatypes.JSON
}

func (ReminderLog) TableName() string { return "reminder_logs" }
