// Package dispatcher turns parsed commands into responses and state
// mutations, enforcing the permission tiers.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"dugout/internal/client/groupme"
	"dugout/internal/models"
	"dugout/internal/schedule"
	"dugout/internal/store"
)

const (
	deniedAdminMsg     = "🔒 Only the team admin can do that."
	deniedModeratorMsg = "🔒 Only team moderators can do that."
	notConfiguredMsg   = "⚙️ Message management isn't configured for this group."
	upstreamErrMsg     = "😅 Sorry, I couldn't reach the schedule right now. Try again in a bit!"
)

// Caller identifies who issued a command.
type Caller struct {
	UserID string
	Name   string
}

type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]models.Event, error)
}

// RosterWriter is the volunteer write-back half of the roster
// collaborator.
type RosterWriter interface {
	UpdateAssignment(ctx context.Context, date time.Time, role models.Role, person string) error
}

// MessageManager is the optional list/delete capability of the delivery
// collaborator.
type MessageManager interface {
	CanManageMessages() bool
	ListMessages(ctx context.Context, limit int) ([]models.MessageInfo, error)
	DeleteMessage(ctx context.Context, messageID string) error
}

// FactSource supplies the team-spirit response.
type FactSource interface {
	Fact() string
}

// ForecastSource enriches next-game answers when weather is enabled.
type ForecastSource interface {
	Forecast(ctx context.Context, ev models.Event) (string, error)
}

// Dispatcher executes commands against the timeline and the stores.
type Dispatcher struct {
	Timeline   SnapshotSource
	Roster     RosterWriter
	Messages   MessageManager
	Moderators store.ModeratorStore
	Facts      FactSource     // optional
	Weather    ForecastSource // optional

	TeamName    string
	TeamEmoji   string
	BotName     string
	AdminUserID string

	Now    func() time.Time
	Logger *zap.Logger
}

// Dispatch runs one command and renders the response. Permission
// denials return fixed text and mutate nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd models.Command, caller Caller) (string, error) {
	switch cmd.Kind {
	case models.CmdUnknown, models.CmdConversational:
		return cmd.Reply, nil

	case models.CmdHelp:
		return d.helpText(), nil

	case models.CmdTeamSpirit:
		if d.Facts != nil {
			return d.Facts.Fact(), nil
		}
		return fmt.Sprintf("%s Let's go %s! ⚾", d.TeamEmoji, d.TeamName), nil

	case models.CmdNextGames:
		return d.nextGames(ctx, cmd.Count)

	case models.CmdGameDetail:
		return d.gameDetail(ctx, cmd.Field)

	case models.CmdVolunteerStatus:
		return d.volunteerStatus(ctx, cmd.Date)

	case models.CmdVolunteerSignup:
		return d.volunteerUpsert(ctx, cmd, caller)

	case models.CmdVolunteerRemove:
		if ok, msg := d.requireModerator(ctx, caller); !ok {
			return msg, nil
		}
		return d.volunteerRemove(ctx, cmd)

	case models.CmdModeratorAdd:
		if caller.UserID != d.AdminUserID {
			return deniedAdminMsg, nil
		}
		if err := d.Moderators.Add(ctx, cmd.User); err != nil {
			return "", fmt.Errorf("add moderator: %w", err)
		}
		return "✅ Moderator added.", nil

	case models.CmdModeratorRemove:
		if caller.UserID != d.AdminUserID {
			return deniedAdminMsg, nil
		}
		removed, err := d.Moderators.Remove(ctx, cmd.User)
		if err != nil {
			return "", fmt.Errorf("remove moderator: %w", err)
		}
		if !removed {
			return "🤔 That user wasn't a moderator.", nil
		}
		return "✅ Moderator removed.", nil

	case models.CmdModeratorList:
		mods, err := d.Moderators.List(ctx)
		if err != nil {
			return "", fmt.Errorf("list moderators: %w", err)
		}
		if len(mods) == 0 {
			return "No moderators configured. The admin can add one with 'add moderator @name'.", nil
		}
		return "🛡️ Moderators:\n" + strings.Join(mods, "\n"), nil

	case models.CmdMessageList:
		if ok, msg := d.requireModerator(ctx, caller); !ok {
			return msg, nil
		}
		return d.listMessages(ctx, cmd.Count)

	case models.CmdMessageDelete:
		if ok, msg := d.requireModerator(ctx, caller); !ok {
			return msg, nil
		}
		return d.deleteMessage(ctx, cmd.MessageID)

	case models.CmdMessageClean:
		if ok, msg := d.requireModerator(ctx, caller); !ok {
			return msg, nil
		}
		return d.cleanMessages(ctx, cmd.Count)
	}

	return d.helpText(), nil
}

// requireModerator gates moderator-tier commands: the admin passes, so
// does any moderator-set member.
func (d *Dispatcher) requireModerator(ctx context.Context, caller Caller) (bool, string) {
	if caller.UserID == d.AdminUserID {
		return true, ""
	}
	ok, err := d.Moderators.IsModerator(ctx, caller.UserID)
	if err != nil {
		d.logger().Warn("moderator lookup failed", zap.Error(err))
		return false, deniedModeratorMsg
	}
	if !ok {
		return false, deniedModeratorMsg
	}
	return true, ""
}

func (d *Dispatcher) nextGames(ctx context.Context, count int) (string, error) {
	events, err := d.upcoming(ctx)
	if err != nil {
		return upstreamErrMsg, nil
	}
	if len(events) == 0 {
		return "📅 No upcoming games on the schedule!", nil
	}
	if count < 1 {
		count = 1
	}
	if count > len(events) {
		count = len(events)
	}

	var b strings.Builder
	if count == 1 {
		fmt.Fprintf(&b, "⚾ Next game:\n\n")
	} else {
		fmt.Fprintf(&b, "⚾ Next %d games:\n\n", count)
	}
	for i := 0; i < count; i++ {
		b.WriteString(d.renderEvent(ctx, events[i], i == 0))
		if i < count-1 {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func (d *Dispatcher) gameDetail(ctx context.Context, field string) (string, error) {
	events, err := d.upcoming(ctx)
	if err != nil {
		return upstreamErrMsg, nil
	}
	if len(events) == 0 {
		return "📅 No upcoming games on the schedule!", nil
	}
	ev := events[0]

	switch field {
	case "time":
		return fmt.Sprintf("🕐 Next game is %s at %s.", ev.Date.Format("Monday, January 2"), ev.Time.String()), nil
	case "location", "where":
		return fmt.Sprintf("📍 Next game is at %s.", ev.LocationLink()), nil
	case "home":
		return fmt.Sprintf("🏟️ Next game venue: %s.", ev.Venue.String()), nil
	case "snacks", "livestream", "scoreboard", "pitch count", "pitchcount":
		role, _ := roleForField(field)
		if name, ok := ev.Assignments[role]; ok {
			return fmt.Sprintf("🙋 %s has %s for the next game. Thanks!", name, role), nil
		}
		return fmt.Sprintf("🙋 Nobody has %s yet for the next game. Volunteers welcome!", role), nil
	}
	return d.renderEvent(ctx, ev, true), nil
}

func roleForField(field string) (models.Role, bool) {
	switch field {
	case "snacks":
		return models.RoleSnacks, true
	case "livestream":
		return models.RoleLivestream, true
	case "scoreboard":
		return models.RoleScoreboard, true
	case "pitch count", "pitchcount":
		return models.RolePitchCount, true
	}
	return "", false
}

func (d *Dispatcher) volunteerStatus(ctx context.Context, date *time.Time) (string, error) {
	events, err := d.upcoming(ctx)
	if err != nil {
		return upstreamErrMsg, nil
	}
	ev, ok := pickEvent(events, date)
	if !ok {
		return "📅 No game found for that date.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Volunteers for %s (%s):\n", ev.Date.Format("Monday, January 2"), ev.Matchup(d.TeamName))
	for _, role := range ev.Roles {
		if name, filled := ev.Assignments[role]; filled {
			fmt.Fprintf(&b, "✅ %s: %s\n", role, name)
		} else {
			fmt.Fprintf(&b, "❌ %s: needed!\n", role)
		}
	}
	return b.String(), nil
}

// volunteerUpsert writes the assignment through to the roster. Last
// writer wins on a taken role; the previous name is simply replaced.
func (d *Dispatcher) volunteerUpsert(ctx context.Context, cmd models.Command, caller Caller) (string, error) {
	person := strings.TrimSpace(cmd.Person)
	if person == "" {
		person = caller.Name
	}
	if person == "" {
		return "🙋 Tell me your name and I'll sign you up!", nil
	}

	events, err := d.upcoming(ctx)
	if err != nil {
		return upstreamErrMsg, nil
	}
	ev, ok := pickEvent(events, cmd.Date)
	if !ok {
		return "📅 No game found for that date.", nil
	}

	if !roleRequired(ev, cmd.Role) {
		return fmt.Sprintf("ℹ️ No %s needed for the %s game (we're home, the booth runs the scoreboard).",
			cmd.Role, ev.Date.Format("January 2")), nil
	}

	if err := d.Roster.UpdateAssignment(ctx, ev.Date, cmd.Role, person); err != nil {
		d.logger().Warn("volunteer write failed",
			zap.String("event", ev.ID),
			zap.String("role", string(cmd.Role)),
			zap.Error(err))
		return upstreamErrMsg, nil
	}

	return fmt.Sprintf("🎉 %s is signed up for %s on %s! Thank you! %s",
		person, cmd.Role, ev.Date.Format("Monday, January 2"), d.TeamEmoji), nil
}

func (d *Dispatcher) volunteerRemove(ctx context.Context, cmd models.Command) (string, error) {
	events, err := d.upcoming(ctx)
	if err != nil {
		return upstreamErrMsg, nil
	}
	ev, ok := pickEvent(events, cmd.Date)
	if !ok {
		return "📅 No game found for that date.", nil
	}
	if err := d.Roster.UpdateAssignment(ctx, ev.Date, cmd.Role, ""); err != nil {
		d.logger().Warn("volunteer clear failed", zap.Error(err))
		return upstreamErrMsg, nil
	}
	return fmt.Sprintf("✅ Cleared %s for %s.", cmd.Role, ev.Date.Format("Monday, January 2")), nil
}

func (d *Dispatcher) listMessages(ctx context.Context, limit int) (string, error) {
	if d.Messages == nil || !d.Messages.CanManageMessages() {
		return notConfiguredMsg, nil
	}
	msgs, err := d.Messages.ListMessages(ctx, limit*4)
	if err != nil {
		if errors.Is(err, groupme.ErrNotConfigured) {
			return notConfiguredMsg, nil
		}
		return upstreamErrMsg, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📜 Recent bot messages:\n")
	shown := 0
	for _, m := range msgs {
		if !d.authoredByBot(m) {
			continue
		}
		preview := m.Text
		if len(preview) > 40 {
			preview = preview[:40] + "…"
		}
		preview = strings.ReplaceAll(preview, "\n", " ")
		fmt.Fprintf(&b, "%s - %s\n", m.ID, preview)
		shown++
		if shown >= limit {
			break
		}
	}
	if shown == 0 {
		return "📜 No recent bot messages found.", nil
	}
	return b.String(), nil
}

func (d *Dispatcher) deleteMessage(ctx context.Context, messageID string) (string, error) {
	if d.Messages == nil || !d.Messages.CanManageMessages() {
		return notConfiguredMsg, nil
	}
	owned, err := d.verifyAuthorship(ctx, messageID)
	if err != nil {
		return upstreamErrMsg, nil
	}
	if !owned {
		return "🔒 I can only delete my own messages.", nil
	}
	if err := d.Messages.DeleteMessage(ctx, messageID); err != nil {
		return upstreamErrMsg, nil
	}
	return "🗑️ Message deleted.", nil
}

// cleanMessages deletes up to count recent bot messages. A failed
// verification or delete counts against the failure tally and the batch
// keeps going.
func (d *Dispatcher) cleanMessages(ctx context.Context, count int) (string, error) {
	if d.Messages == nil || !d.Messages.CanManageMessages() {
		return notConfiguredMsg, nil
	}
	msgs, err := d.Messages.ListMessages(ctx, count*4)
	if err != nil {
		if errors.Is(err, groupme.ErrNotConfigured) {
			return notConfiguredMsg, nil
		}
		return upstreamErrMsg, nil
	}

	deleted, failed := 0, 0
	for _, m := range msgs {
		if deleted >= count {
			break
		}
		if !d.authoredByBot(m) {
			continue
		}
		if err := d.Messages.DeleteMessage(ctx, m.ID); err != nil {
			d.logger().Warn("clean: delete failed", zap.String("message_id", m.ID), zap.Error(err))
			failed++
			continue
		}
		deleted++
	}
	return fmt.Sprintf("🧹 Cleaned %d messages, %d failed.", deleted, failed), nil
}

func (d *Dispatcher) verifyAuthorship(ctx context.Context, messageID string) (bool, error) {
	msgs, err := d.Messages.ListMessages(ctx, 100)
	if err != nil {
		return false, err
	}
	for _, m := range msgs {
		if m.ID == messageID {
			return d.authoredByBot(m), nil
		}
	}
	return false, nil
}

func (d *Dispatcher) authoredByBot(m models.MessageInfo) bool {
	if m.SenderType != "bot" {
		return false
	}
	return d.BotName == "" || strings.EqualFold(m.Name, d.BotName)
}

func (d *Dispatcher) renderEvent(ctx context.Context, ev models.Event, withWeather bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", d.TeamEmoji, ev.Matchup(d.TeamName))
	fmt.Fprintf(&b, "📅 %s at %s\n", ev.Date.Format("Monday, January 2"), ev.Time.String())
	fmt.Fprintf(&b, "📍 %s\n", ev.LocationLink())

	if open := ev.Unassigned(); len(open) > 0 {
		names := make([]string, len(open))
		for i, r := range open {
			names[i] = string(r)
		}
		fmt.Fprintf(&b, "🙋 Volunteers needed: %s\n", strings.Join(names, ", "))
	}

	if withWeather && d.Weather != nil {
		if line, err := d.Weather.Forecast(ctx, ev); err == nil && line != "" {
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func (d *Dispatcher) upcoming(ctx context.Context) ([]models.Event, error) {
	events, err := d.Timeline.Snapshot(ctx)
	if err != nil {
		d.logger().Warn("timeline snapshot failed", zap.Error(err))
		return nil, err
	}
	return schedule.Upcoming(events, d.now()), nil
}

// pickEvent selects the event a command targets: the next upcoming game
// by default, or the first game on the requested date.
func pickEvent(events []models.Event, date *time.Time) (models.Event, bool) {
	if date == nil {
		if len(events) == 0 {
			return models.Event{}, false
		}
		return events[0], true
	}
	for _, ev := range events {
		if ev.Date.Year() == date.Year() && ev.Date.Month() == date.Month() && ev.Date.Day() == date.Day() {
			return ev, true
		}
	}
	return models.Event{}, false
}

func roleRequired(ev models.Event, role models.Role) bool {
	for _, r := range ev.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (d *Dispatcher) helpText() string {
	return fmt.Sprintf(`%s I'm %s! Here's what I can do:

⚾ Schedule
  • "next game" or "next 3 games"
  • "what time is the game?" / "where are we playing?"

🙋 Volunteers
  • "I've got snacks" (optionally with a date: "for Saturday")
  • "show volunteers"
  • roles: snacks, livestream, scoreboard, pitch count

🛡️ Moderators (admin)
  • "add moderator @name" / "remove moderator @name" / "list moderators"

🧹 Messages (moderators)
  • "list messages" / "delete message <id>" / "clean 5 messages"

🎉 Or just say "let's go %s!"`, d.TeamEmoji, d.BotName, d.TeamName)
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}
