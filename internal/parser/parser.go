package parser

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"dugout/internal/models"
)

const (
	defaultListCount  = 10
	defaultCleanCount = 5
)

// Parser classifies inbound chat text into commands. Classification is
// an ordered rule table evaluated first-match-wins; the order is part of
// the contract: admin and moderator syntax, then message management,
// then legacy slash commands, then conversational triggers, then
// natural-language heuristics, then Unknown.
type Parser struct {
	BotName  string
	TeamName string
	// Now is injected so date phrases resolve deterministically in tests.
	Now func() time.Time
	// Rng picks witty fallback replies. Nil degrades to a fixed reply.
	Rng     *rand.Rand
	Context *ContextStore
}

func New(botName, teamName string) *Parser {
	return &Parser{
		BotName:  botName,
		TeamName: teamName,
		Now:      time.Now,
		Rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		Context:  NewContextStore(3 * time.Minute),
	}
}

// Addressed reports whether the message should be processed at all:
// either the bot is mentioned, or the sender has a live volunteer
// session and the text reads like a confident follow-up.
func (p *Parser) Addressed(msg models.Inbound) bool {
	if p.mentioned(msg.Text) {
		return true
	}
	if p.Context == nil || !p.Context.Active(msg.UserID) {
		return false
	}
	return volunteerConfidence(strings.ToLower(msg.Text), true, false) >= 60
}

// Parse is total: any input, including empty or binary garbage, yields a
// Command. It never panics.
func (p *Parser) Parse(msg models.Inbound) models.Command {
	now := p.now()
	text := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(text)
	cleaned := strings.TrimSpace(strings.ReplaceAll(lower, p.mentionToken(), ""))

	if cleaned == "" {
		return models.Command{Kind: models.CmdHelp}
	}

	// (1) Admin and moderator syntax.
	if cmd, ok := p.parseAdmin(cleaned, msg); ok {
		return cmd
	}
	// (2) Message management.
	if cmd, ok := parseMessageManagement(cleaned); ok {
		return cmd
	}
	// (3) Legacy slash commands.
	if cmd, ok := p.parseSlash(cleaned, msg, now); ok {
		return cmd
	}
	// (4) Conversational triggers.
	if reply := conversationalReply(cleaned); reply != "" {
		return models.Command{Kind: models.CmdConversational, Reply: reply}
	}
	// (5) Natural-language heuristics.
	if cmd, ok := p.parseNatural(cleaned, msg, now); ok {
		return cmd
	}
	// (6) Fallback.
	return models.Unknown(wittyReply(p.Rng))
}

func (p *Parser) parseAdmin(text string, msg models.Inbound) (models.Command, bool) {
	switch {
	case strings.Contains(text, "add moderator") || strings.Contains(text, "add mod "):
		return p.moderatorCommand(models.CmdModeratorAdd, msg), true
	case strings.Contains(text, "remove moderator") || strings.Contains(text, "remove mod "):
		return p.moderatorCommand(models.CmdModeratorRemove, msg), true
	case strings.Contains(text, "list moderator") || strings.Contains(text, "show moderator"):
		return models.Command{Kind: models.CmdModeratorList}, true
	case strings.Contains(text, "assign ") && strings.Contains(text, " to "):
		return parseAssign(text), true
	case strings.Contains(text, "remove ") && strings.Contains(text, " from "):
		return parseRemoveVolunteer(text), true
	}
	return models.Command{}, false
}

// moderatorCommand requires an explicit mention attachment; GroupMe
// display names are ambiguous, user IDs are not.
func (p *Parser) moderatorCommand(kind models.CommandKind, msg models.Inbound) models.Command {
	target := ""
	for _, a := range msg.Attachments {
		if a.Type == "mentions" {
			for _, id := range a.UserIDs {
				if id != "" {
					target = id
					break
				}
			}
		}
	}
	if target == "" {
		return models.Unknown("⚾ Please @mention the person so I know exactly who you mean.")
	}
	return models.Command{Kind: kind, User: target}
}

func parseAssign(text string) models.Command {
	words := strings.Fields(text)
	toIdx := indexOf(words, "to")
	if toIdx <= 1 || toIdx+1 >= len(words) {
		return models.Unknown("⚾ Try 'assign <name> to <role>'.")
	}
	role, ok := matchRole(strings.Join(words[toIdx+1:], " "))
	if !ok {
		return models.Unknown("⚾ I don't know that role. Roles are snacks, livestream, scoreboard, and pitch count.")
	}
	return models.Command{
		Kind:   models.CmdVolunteerSignup,
		Role:   role,
		Person: titleCase(strings.Join(words[1:toIdx], " ")),
	}
}

func parseRemoveVolunteer(text string) models.Command {
	words := strings.Fields(text)
	fromIdx := indexOf(words, "from")
	if fromIdx <= 1 || fromIdx+1 >= len(words) {
		return models.Unknown("⚾ Try 'remove <name> from <role>'.")
	}
	role, ok := matchRole(strings.Join(words[fromIdx+1:], " "))
	if !ok {
		return models.Unknown("⚾ I don't know that role. Roles are snacks, livestream, scoreboard, and pitch count.")
	}
	return models.Command{
		Kind:   models.CmdVolunteerRemove,
		Role:   role,
		Person: titleCase(strings.Join(words[1:fromIdx], " ")),
	}
}

func parseMessageManagement(text string) (models.Command, bool) {
	hasMessages := strings.Contains(text, "message")
	switch {
	case hasMessages && strings.Contains(text, "list"):
		return models.Command{Kind: models.CmdMessageList, Count: firstInt(text, defaultListCount)}, true
	case hasMessages && strings.Contains(text, "delete"):
		id := findMessageID(text)
		if id == "" {
			return models.Unknown(missingIDMsg), true
		}
		return models.Command{Kind: models.CmdMessageDelete, MessageID: id}, true
	case hasMessages && strings.Contains(text, "clean"):
		return models.Command{Kind: models.CmdMessageClean, Count: firstInt(text, defaultCleanCount)}, true
	}
	return models.Command{}, false
}

func (p *Parser) parseSlash(text string, msg models.Inbound, now time.Time) (models.Command, bool) {
	if !strings.HasPrefix(text, "/") {
		return models.Command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(fields) == 0 {
		return models.Command{Kind: models.CmdHelp}, true
	}
	switch fields[0] {
	case "next", "games", "schedule":
		return models.Command{Kind: models.CmdNextGames, Count: firstInt(text, 1)}, true
	case "volunteer":
		rest := strings.Join(fields[1:], " ")
		role, ok := matchRole(rest)
		if !ok {
			return models.Unknown("⚾ What would you like to volunteer for? (snacks, livestream, scoreboard, or pitch count)"), true
		}
		return models.Command{
			Kind:   models.CmdVolunteerSignup,
			Role:   role,
			Date:   extractDate(rest, now),
			Person: msg.Name,
		}, true
	case "volunteers", "status":
		return models.Command{Kind: models.CmdVolunteerStatus, Date: extractDate(text, now)}, true
	case "help", "commands":
		return models.Command{Kind: models.CmdHelp}, true
	}
	return models.Unknown(wittyReply(p.Rng)), true
}

func (p *Parser) parseNatural(text string, msg models.Inbound, now time.Time) (models.Command, bool) {
	// Status queries outrank signups: "who's got snacks" and "show
	// volunteers" both carry role words, but they ask, they don't offer.
	if isVolunteerQuery(text) {
		return models.Command{Kind: models.CmdVolunteerStatus, Date: extractDate(text, now)}, true
	}
	if isVolunteerPhrase(text) && !isQuestion(text) {
		return p.volunteerFromText(text, msg, now), true
	}
	if isGameQuery(text) {
		if field := gameDetailField(text); field != "" {
			return models.Command{Kind: models.CmdGameDetail, Field: field}, true
		}
		return models.Command{Kind: models.CmdNextGames, Count: gameCount(text)}, true
	}
	if isTeamSpirit(text, p.TeamName) {
		return models.Command{Kind: models.CmdTeamSpirit}, true
	}
	if isHelpPhrase(text) {
		return models.Command{Kind: models.CmdHelp}, true
	}
	return models.Command{}, false
}

func (p *Parser) volunteerFromText(text string, msg models.Inbound, now time.Time) models.Command {
	role, ok := matchRole(text)
	if !ok {
		if p.Context != nil && msg.UserID != "" {
			p.Context.Set(msg.UserID, msg.Name, true)
		}
		name := msg.Name
		if name == "" {
			name = "friend"
		}
		return models.Unknown("🏴‍☠️ Thanks " + name + "! What would you like to volunteer for? (snacks, livestream, scoreboard, or pitch count)")
	}
	if p.Context != nil && msg.UserID != "" {
		p.Context.Clear(msg.UserID)
	}
	person := extractPersonName(msg.Text)
	if person == "" {
		person = msg.Name
	}
	return models.Command{
		Kind:   models.CmdVolunteerSignup,
		Role:   role,
		Date:   extractDate(text, now),
		Person: person,
	}
}

var roleSynonyms = []struct {
	keywords []string
	role     models.Role
}{
	{[]string{"snacks", "snack", "food", "treats"}, models.RoleSnacks},
	{[]string{"livestream", "streaming", "stream", "live"}, models.RoleLivestream},
	{[]string{"scoreboard", "scoring", "score", "gamechanger", "game changer"}, models.RoleScoreboard},
	{[]string{"pitch count", "pitchcount", "pitches", "pitch"}, models.RolePitchCount},
}

func matchRole(text string) (models.Role, bool) {
	text = strings.ToLower(text)
	for _, m := range roleSynonyms {
		for _, kw := range m.keywords {
			if strings.Contains(text, kw) {
				return m.role, true
			}
		}
	}
	return "", false
}

func isVolunteerPhrase(text string) bool {
	for _, kw := range []string{
		"i've got", "i'll bring", "i can do", "i can bring", "put me down",
		"sign me up", "i'll do", "i'll take", "count me in", "i got",
		"i'm doing", "volunteer", "will bring", "have got", "has got",
	} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	// A bare role word with no question counts as a signup attempt.
	_, hasRole := matchRole(text)
	return hasRole
}

func isQuestion(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	for _, q := range []string{"who", "what", "when", "where", "which"} {
		if hasWord(text, q) || strings.HasPrefix(text, q+"'s") {
			return true
		}
	}
	return false
}

func isVolunteerQuery(text string) bool {
	query := false
	for _, kw := range []string{"who", "who's", "volunteers", "needed", "need", "open", "assignments", "available"} {
		if strings.Contains(text, kw) {
			query = true
			break
		}
	}
	if !query {
		return false
	}
	if _, hasRole := matchRole(text); hasRole {
		return true
	}
	return strings.Contains(text, "volunteer")
}

func isGameQuery(text string) bool {
	for _, kw := range []string{"next game", "when", "what time", "where", "location", "schedule", "upcoming", "games"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isTeamSpirit(text, teamName string) bool {
	if strings.Contains(text, "let's go") || strings.Contains(text, "lets go") {
		return true
	}
	team := strings.ToLower(teamName)
	if team != "" && strings.Contains(text, "go "+team) {
		return true
	}
	for _, kw := range []string{"spirit", "hype", "fact"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isHelpPhrase(text string) bool {
	for _, kw := range []string{"help", "commands", "what can you do"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func gameCount(text string) int {
	words := strings.Fields(text)
	for i, w := range words {
		if n, err := strconv.Atoi(w); err == nil && n > 0 {
			if i+1 < len(words) && strings.Contains(words[i+1], "game") {
				return capCount(n)
			}
		}
	}
	numberWords := map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	}
	for w, n := range numberWords {
		if hasWord(text, w) && strings.Contains(text, "game") {
			return n
		}
	}
	return 1
}

func capCount(n int) int {
	if n > 10 {
		return 3
	}
	return n
}

// gameDetailField picks out a single attribute the user asked about, so
// "what time is the game" answers with the time rather than the full card.
func gameDetailField(text string) string {
	for _, f := range []string{"time", "location", "where", "home", "snacks", "livestream", "scoreboard", "pitch count", "pitchcount"} {
		if strings.Contains(text, f) {
			return f
		}
	}
	return ""
}

// extractPersonName pulls a display name out of the raw (cased) text.
// "snacks for Saturday John" and "livestream - Dana" both carry a name;
// pronouns and the mention token never count.
func extractPersonName(raw string) string {
	excluded := map[string]bool{
		"i": true, "i've": true, "i'll": true, "i'm": true,
		"we": true, "we've": true, "we'll": true, "we're": true,
		"you": true, "you've": true, "you'll": true,
		"he": true, "she": true, "they": true, "it": true,
	}
	words := strings.Fields(raw)

	take := func(from int) string {
		var parts []string
		for _, w := range words[from:] {
			r := []rune(w)
			if len(r) == 0 || !isUpper(r[0]) || strings.HasPrefix(w, "@") {
				break
			}
			if excluded[strings.ToLower(strings.Trim(w, "'"))] {
				continue
			}
			wd := strings.ToLower(strings.Trim(w, ".,!?"))
			if _, isDay := weekdayNames[wd]; isDay || wd == "today" || wd == "tomorrow" {
				continue
			}
			parts = append(parts, strings.Trim(w, ".,!?"))
		}
		return strings.Join(parts, " ")
	}

	for i, w := range words {
		lw := strings.ToLower(w)
		if (lw == "for" || w == "-") && i+1 < len(words) {
			if name := take(i + 1); name != "" {
				return name
			}
		}
	}
	for i, w := range words {
		r := []rune(w)
		if len(r) > 1 && isUpper(r[0]) && !strings.HasPrefix(w, "@") && !excluded[strings.ToLower(w)] {
			if name := take(i); name != "" {
				return name
			}
		}
	}
	return ""
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// volunteerConfidence scores how likely a non-mention follow-up is a
// volunteer statement. Mirrors the webhook gate in Addressed.
func volunteerConfidence(text string, hasContext, mentioned bool) int {
	score := 0
	if mentioned {
		score += 50
	}
	if hasContext {
		score += 30
	}
	for _, v := range []string{"i'll do", "i've got", "i can do", "i'll bring", "put me down", "sign me up", "i got", "i will do"} {
		if strings.Contains(text, v) {
			score += 40
			break
		}
	}
	for _, v := range []string{"will do", "can do", "doing", "bringing"} {
		if strings.Contains(text, v) {
			score += 20
			break
		}
	}
	if isQuestion(text) {
		score -= 30
	}
	for _, n := range []string{"can't", "won't", "not doing", "unable"} {
		if strings.Contains(text, n) {
			return 0
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

func (p *Parser) mentioned(text string) bool {
	return strings.Contains(strings.ToLower(text), p.mentionToken())
}

func (p *Parser) mentionToken() string {
	return "@" + strings.ToLower(p.BotName)
}

func (p *Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func firstInt(text string, def int) int {
	for _, w := range strings.Fields(text) {
		if n, err := strconv.Atoi(w); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// findMessageID returns the first long all-digit token; GroupMe message
// IDs are numeric and well past ten digits.
func findMessageID(text string) string {
	for _, w := range strings.Fields(text) {
		if len(w) > 10 && allDigits(w) {
			return w
		}
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func indexOf(words []string, target string) int {
	for i, w := range words {
		if w == target {
			return i
		}
	}
	return -1
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		r := []rune(p)
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}
