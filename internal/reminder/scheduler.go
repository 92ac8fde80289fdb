// Package reminder emits pre-game notifications on a fixed poll cadence.
package reminder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"dugout/internal/models"
)

// Offsets at which a reminder fires. Each (event, offset) pair fires at
// most once per process lifetime.
const (
	Offset24h = "24h"
	Offset15m = "15m"
)

type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]models.Event, error)
}

type Sender interface {
	Send(ctx context.Context, text string) error
}

// FactSource supplies the trivia line appended to 15-minute reminders.
type FactSource interface {
	Fact() string
}

// ForecastSource supplies the weather line appended to 24-hour reminders.
type ForecastSource interface {
	Forecast(ctx context.Context, ev models.Event) (string, error)
}

// AuditRecorder persists a record of each fired reminder. It is advisory
// only; dedup never consults it.
type AuditRecorder interface {
	RecordReminder(ctx context.Context, eventID, offset, message string, sentAt time.Time) error
}

// Scheduler checks the timeline each tick and fires 24-hour and
// 15-minute reminders inside the configured local-hour window.
type Scheduler struct {
	Timeline SnapshotSource
	Sender   Sender
	Facts    FactSource     // optional
	Weather  ForecastSource // optional
	Audit    AuditRecorder  // optional

	TeamName  string
	TeamEmoji string
	StartHour int
	EndHour   int

	Now    func() time.Time
	Logger *zap.Logger

	mu    sync.Mutex
	fired map[string]time.Time
}

// Tick runs one scheduler pass. Errors are returned for the caller to
// log; the next tick starts clean regardless.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()

	// Half-open window: EndHour itself is quiet time.
	if hour := now.Hour(); hour < s.StartHour || hour >= s.EndHour {
		return nil
	}

	// Always a fresh snapshot. A cached timeline once sent reminders for
	// games that had been rescheduled away.
	events, err := s.Timeline.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reminder snapshot: %w", err)
	}

	for _, ev := range events {
		if !ev.Time.Known {
			s.logger().Info("skipping reminder, game time is TBD",
				zap.String("event", ev.ID),
				zap.String("date", ev.Date.Format("2006-01-02")))
			continue
		}
		start, _ := ev.StartAt()
		until := start.Sub(now)
		if until <= 0 {
			continue
		}

		if until > 23*time.Hour && until <= 24*time.Hour {
			s.fire(ctx, ev, Offset24h, now)
		}
		if until <= 15*time.Minute {
			s.fire(ctx, ev, Offset15m, now)
		}
	}

	s.prune(now)
	return nil
}

// fire sends one reminder unless the (event, offset) pair already fired.
// The pair is marked only after a successful send so a transport blip
// retries on the next tick.
func (s *Scheduler) fire(ctx context.Context, ev models.Event, offset string, now time.Time) {
	key := ev.ID + "|" + offset

	s.mu.Lock()
	if _, done := s.fired[key]; done {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	var message string
	switch offset {
	case Offset24h:
		message = s.render24h(ctx, ev)
	case Offset15m:
		message = s.render15m()
	default:
		return
	}

	if err := s.Sender.Send(ctx, message); err != nil {
		s.logger().Warn("reminder send failed, will retry next tick",
			zap.String("event", ev.ID),
			zap.String("offset", offset),
			zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.fired == nil {
		s.fired = make(map[string]time.Time)
	}
	s.fired[key] = ev.Date
	s.mu.Unlock()

	s.logger().Info("reminder sent",
		zap.String("event", ev.ID),
		zap.String("offset", offset))

	if s.Audit != nil {
		if err := s.Audit.RecordReminder(ctx, ev.ID, offset, message, now); err != nil {
			s.logger().Warn("reminder audit write failed", zap.Error(err))
		}
	}
}

func (s *Scheduler) render24h(ctx context.Context, ev models.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏰ Game Reminder! 24 hours until:\n\n%s %s\n", s.TeamEmoji, ev.Matchup(s.TeamName))
	fmt.Fprintf(&b, "📅 %s at %s\n", ev.Date.Format("Monday, January 2"), ev.Time.String())
	fmt.Fprintf(&b, "📍 %s\n", ev.LocationLink())

	if open := ev.Unassigned(); len(open) > 0 {
		names := make([]string, len(open))
		for i, r := range open {
			names[i] = string(r)
		}
		fmt.Fprintf(&b, "\n🙋 Still needed: %s\n", strings.Join(names, ", "))
	}

	if s.Weather != nil {
		if line, err := s.Weather.Forecast(ctx, ev); err == nil && line != "" {
			b.WriteString("\n" + line + "\n")
		}
	}
	return b.String()
}

func (s *Scheduler) render15m() string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚾ Game starting in 15 minutes! %s\n\n", s.TeamEmoji)
	if s.Facts != nil {
		b.WriteString(s.Facts.Fact())
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "⚾ Let's go %s! %s", s.TeamName, s.TeamEmoji)
	return b.String()
}

// prune drops fired keys for events more than a day in the past so the
// map does not grow over a long season.
func (s *Scheduler) prune(now time.Time) {
	cutoff := now.AddDate(0, 0, -1)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, date := range s.fired {
		if date.Before(cutoff) {
			delete(s.fired, key)
		}
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scheduler) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
