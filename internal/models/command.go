package models

import "time"

type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdNextGames
	CmdGameDetail
	CmdVolunteerSignup
	CmdVolunteerRemove
	CmdVolunteerStatus
	CmdModeratorAdd
	CmdModeratorRemove
	CmdModeratorList
	CmdMessageList
	CmdMessageDelete
	CmdMessageClean
	CmdTeamSpirit
	CmdHelp
	CmdConversational
)

// Command is the tagged result of intent parsing. Kind selects which of
// the remaining fields carry meaning.
type Command struct {
	Kind      CommandKind
	Count     int
	Role      Role
	Field     string
	Date      *time.Time
	Person    string
	User      string
	MessageID string
	// Reply holds the canned response for CmdConversational and the
	// human-readable reason for CmdUnknown.
	Reply string
}

func Unknown(reason string) Command {
	return Command{Kind: CmdUnknown, Reply: reason}
}
