package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dugout/internal/db"
)

// GormStore backs the moderator set with the moderators table.
type GormStore struct {
	gdb *gorm.DB
}

func NewGormStore(conn *db.DB) *GormStore {
	return &GormStore{gdb: conn.Gorm}
}

func (s *GormStore) Add(ctx context.Context, userID string) error {
	return s.gdb.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Moderator{UserID: userID}).Error
}

func (s *GormStore) Remove(ctx context.Context, userID string) (bool, error) {
	res := s.gdb.WithContext(ctx).Delete(&db.Moderator{UserID: userID})
	return res.RowsAffected > 0, res.Error
}

func (s *GormStore) IsModerator(ctx context.Context, userID string) (bool, error) {
	var m db.Moderator
	err := s.gdb.WithContext(ctx).First(&m, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *GormStore) List(ctx context.Context) ([]string, error) {
	var mods []db.Moderator
	if err := s.gdb.WithContext(ctx).Order("user_id").Find(&mods).Error; err != nil {
		return nil, err
	}
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.UserID
	}
	return out, nil
}

// ReminderAudit records fired reminders to the reminder_logs table.
type ReminderAudit struct {
	gdb *gorm.DB
}

func NewReminderAudit(conn *db.DB) *ReminderAudit {
	return &ReminderAudit{gdb: conn.Gorm}
}

func (a *ReminderAudit) RecordReminder(ctx context.Context, eventID, offset, message string, sentAt time.Time) error {
	details, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return err
	}
	return a.gdb.WithContext(ctx).Create(&db.ReminderLog{
		EventID: eventID,
		Offset:  offset,
		SentAt:  sentAt,
		Details: datatypes.JSON(details),
	}).Error
}
