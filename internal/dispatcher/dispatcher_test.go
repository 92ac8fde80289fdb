package dispatcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"dugout/internal/models"
	"dugout/internal/store"
)

type fixedTimeline struct {
	events []models.Event
}

func (f fixedTimeline) Snapshot(context.Context) ([]models.Event, error) {
	return f.events, nil
}

type recordingRoster struct {
	calls []string
}

func (r *recordingRoster) UpdateAssignment(_ context.Context, date time.Time, role models.Role, person string) error {
	r.calls = append(r.calls, date.Format("2006-01-02")+"|"+string(role)+"|"+person)
	return nil
}

type fakeMessages struct {
	configured bool
	messages   []models.MessageInfo
	deleted    []string
	failIDs    map[string]bool
	listCalls  int
}

func (f *fakeMessages) CanManageMessages() bool { return f.configured }

func (f *fakeMessages) ListMessages(context.Context, int) ([]models.MessageInfo, error) {
	f.listCalls++
	return f.messages, nil
}

func (f *fakeMessages) DeleteMessage(_ context.Context, id string) error {
	if f.failIDs[id] {
		return context.DeadlineExceeded
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func futureEvent(now time.Time, days int, venue models.Venue) models.Event {
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, days)
	gt := models.GameTime{Known: true, Hour: 17, Minute: 30, Raw: "5:30 PM"}
	return models.Event{
		ID:          models.EventID(date, gt, "Miller Field"),
		Date:        date,
		Time:        gt,
		Location:    "Miller Field",
		Venue:       venue,
		Roles:       models.RequiredRoles(venue),
		Assignments: map[models.Role]string{},
	}
}

func newDispatcher(t *testing.T, events []models.Event) (*Dispatcher, *recordingRoster, *fakeMessages) {
	t.Helper()
	mods, err := store.NewFileStore(t.TempDir() + "/mods.json")
	if err != nil {
		t.Fatalf("moderator store: %v", err)
	}
	roster := &recordingRoster{}
	msgs := &fakeMessages{configured: true}
	d := &Dispatcher{
		Timeline:    fixedTimeline{events: events},
		Roster:      roster,
		Messages:    msgs,
		Moderators:  mods,
		TeamName:    "Pirates",
		TeamEmoji:   "🏴‍☠️",
		BotName:     "PirateBot",
		AdminUserID: "admin-1",
		Now: func() time.Time {
			return time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
		},
	}
	return d, roster, msgs
}

func TestDispatchVolunteerUpsert(t *testing.T) {
	now := time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
	ev := futureEvent(now, 3, models.VenueAway)
	d, roster, _ := newDispatcher(t, []models.Event{ev})

	cmd := models.Command{Kind: models.CmdVolunteerSignup, Role: models.RoleSnacks, Person: "Hobbs"}
	resp, err := d.Dispatch(context.Background(), cmd, Caller{UserID: "u1", Name: "Dana"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(roster.calls) != 1 || !strings.Contains(roster.calls[0], "snacks|Hobbs") {
		t.Fatalf("roster calls = %v", roster.calls)
	}
	if !strings.Contains(resp, "Hobbs") {
		t.Fatalf("response should name the volunteer: %q", resp)
	}

	// Same role again from someone else: last writer wins, no refusal.
	cmd.Person = ""
	resp, err = d.Dispatch(context.Background(), cmd, Caller{UserID: "u2", Name: "Sam"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(roster.calls) != 2 || !strings.Contains(roster.calls[1], "snacks|Sam") {
		t.Fatalf("upsert should replace, calls = %v", roster.calls)
	}
	if !strings.Contains(resp, "Sam") {
		t.Fatalf("caller name should be the fallback person: %q", resp)
	}
}

func TestDispatchScoreboardNotNeededAtHome(t *testing.T) {
	now := time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
	ev := futureEvent(now, 3, models.VenueHome)
	d, roster, _ := newDispatcher(t, []models.Event{ev})

	cmd := models.Command{Kind: models.CmdVolunteerSignup, Role: models.RoleScoreboard}
	resp, err := d.Dispatch(context.Background(), cmd, Caller{UserID: "u1", Name: "Dana"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(roster.calls) != 0 {
		t.Fatalf("home-game scoreboard signup must not write: %v", roster.calls)
	}
	if !strings.Contains(resp, "scoreboard") {
		t.Fatalf("response should explain the role isn't needed: %q", resp)
	}
}

func TestDispatchCleanFromModerator(t *testing.T) {
	now := time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
	d, _, msgs := newDispatcher(t, []models.Event{futureEvent(now, 3, models.VenueHome)})
	msgs.messages = []models.MessageInfo{
		{ID: "1", Text: "bot says hi", Name: "PirateBot", SenderType: "bot"},
		{ID: "2", Text: "from a human", Name: "Dana", SenderType: "user"},
		{ID: "3", Text: "bot again", Name: "PirateBot", SenderType: "bot"},
		{ID: "4", Text: "bot stuck", Name: "PirateBot", SenderType: "bot"},
	}
	msgs.failIDs = map[string]bool{"4": true}

	if err := d.Moderators.Add(context.Background(), "mod-1"); err != nil {
		t.Fatalf("add moderator: %v", err)
	}

	cmd := models.Command{Kind: models.CmdMessageClean, Count: 5}
	resp, err := d.Dispatch(context.Background(), cmd, Caller{UserID: "mod-1", Name: "Mod"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(resp, "Cleaned 2 messages, 1 failed") {
		t.Fatalf("clean summary = %q", resp)
	}
	// The human message was never touched.
	for _, id := range msgs.deleted {
		if id == "2" {
			t.Fatalf("clean deleted a non-bot message")
		}
	}
}

func TestDispatchDeleteDeniedForNonModerator(t *testing.T) {
	now := time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
	d, _, msgs := newDispatcher(t, []models.Event{futureEvent(now, 3, models.VenueHome)})
	msgs.messages = []models.MessageInfo{{ID: "111111111111", Name: "PirateBot", SenderType: "bot"}}

	cmd := models.Command{Kind: models.CmdMessageDelete, MessageID: "111111111111"}
	resp, err := d.Dispatch(context.Background(), cmd, Caller{UserID: "random", Name: "Nobody"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp != deniedModeratorMsg {
		t.Fatalf("response = %q, want denial", resp)
	}
	if msgs.listCalls != 0 || len(msgs.deleted) != 0 {
		t.Fatalf("denied command reached the collaborator: list=%d deleted=%v", msgs.listCalls, msgs.deleted)
	}
}

func TestDispatchMessageMgmtDegradesWhenUnconfigured(t *testing.T) {
	now := time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
	d, _, msgs := newDispatcher(t, []models.Event{futureEvent(now, 3, models.VenueHome)})
	msgs.configured = false

	cmd := models.Command{Kind: models.CmdMessageList, Count: 10}
	resp, err := d.Dispatch(context.Background(), cmd, Caller{UserID: "admin-1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp != notConfiguredMsg {
		t.Fatalf("response = %q, want %q", resp, notConfiguredMsg)
	}
}

func TestDispatchModeratorAddAdminOnly(t *testing.T) {
	now := time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
	d, _, _ := newDispatcher(t, []models.Event{futureEvent(now, 3, models.VenueHome)})

	cmd := models.Command{Kind: models.CmdModeratorAdd, User: "new-mod"}
	resp, err := d.Dispatch(context.Background(), cmd, Caller{UserID: "not-admin"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp != deniedAdminMsg {
		t.Fatalf("non-admin add = %q, want denial", resp)
	}
	if ok, _ := d.Moderators.IsModerator(context.Background(), "new-mod"); ok {
		t.Fatalf("denied add still mutated the store")
	}

	resp, err = d.Dispatch(context.Background(), cmd, Caller{UserID: "admin-1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if ok, _ := d.Moderators.IsModerator(context.Background(), "new-mod"); !ok {
		t.Fatalf("admin add did not take effect (resp %q)", resp)
	}
}

func TestDispatchNextGames(t *testing.T) {
	now := time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
	events := []models.Event{
		futureEvent(now, 2, models.VenueHome),
		futureEvent(now, 5, models.VenueAway),
		futureEvent(now, 9, models.VenueHome),
	}
	events[0].Summary = "Vs Cardinals - Miller Field (Pirates - Smith)"
	d, _, _ := newDispatcher(t, events)

	resp, err := d.Dispatch(context.Background(),
		models.Command{Kind: models.CmdNextGames, Count: 2}, Caller{UserID: "u1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(resp, "Next 2 games") {
		t.Fatalf("header missing: %q", resp)
	}
	if !strings.Contains(resp, "Cardinals") {
		t.Fatalf("matchup missing: %q", resp)
	}
	if !strings.Contains(resp, "maps.google.com") {
		t.Fatalf("location link missing: %q", resp)
	}
	if !strings.Contains(resp, "Volunteers needed") {
		t.Fatalf("open roles missing: %q", resp)
	}
}

func TestDispatchVolunteerStatusByDate(t *testing.T) {
	now := time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
	ev := futureEvent(now, 3, models.VenueAway)
	ev.Assignments[models.RoleSnacks] = "Dana"
	d, _, _ := newDispatcher(t, []models.Event{ev})

	date := ev.Date
	resp, err := d.Dispatch(context.Background(),
		models.Command{Kind: models.CmdVolunteerStatus, Date: &date}, Caller{UserID: "u1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(resp, "✅ snacks: Dana") {
		t.Fatalf("filled role missing: %q", resp)
	}
	if !strings.Contains(resp, "❌ scoreboard: needed!") {
		t.Fatalf("away game should need scoreboard: %q", resp)
	}

	missing := now.AddDate(0, 0, 30)
	resp, err = d.Dispatch(context.Background(),
		models.Command{Kind: models.CmdVolunteerStatus, Date: &missing}, Caller{UserID: "u1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(resp, "No game found") {
		t.Fatalf("missing date response = %q", resp)
	}
}

func TestDispatchUnknownEchoesReply(t *testing.T) {
	now := time.Date(2026, 4, 8, 12, 0, 0, 0, time.Local)
	d, _, _ := newDispatcher(t, []models.Event{futureEvent(now, 3, models.VenueHome)})

	resp, err := d.Dispatch(context.Background(),
		models.Unknown("⚾ witty fallback"), Caller{UserID: "u1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp != "⚾ witty fallback" {
		t.Fatalf("unknown reply = %q", resp)
	}
}
