package models

// Attachment mirrors the GroupMe webhook attachment shape. Mention
// attachments carry the user IDs referenced in the text.
type Attachment struct {
	Type    string   `json:"type"`
	UserIDs []string `json:"user_ids"`
	Loci    [][]int  `json:"loci"`
}

// Inbound is one webhook callback payload.
type Inbound struct {
	Text        string       `json:"text"`
	SenderType  string       `json:"sender_type"`
	Name        string       `json:"name"`
	UserID      string       `json:"user_id"`
	Attachments []Attachment `json:"attachments"`
}

// MentionedUserID returns the first user referenced via a mention
// attachment, or "" when the message mentions nobody.
func (m Inbound) MentionedUserID() string {
	for _, a := range m.Attachments {
		if a.Type == "mentions" && len(a.UserIDs) > 0 {
			return a.UserIDs[0]
		}
	}
	return ""
}

// MessageInfo is one entry from the group message history API.
type MessageInfo struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Name       string `json:"name"`
	UserID     string `json:"user_id"`
	SenderType string `json:"sender_type"`
	CreatedAt  int64  `json:"created_at"`
}
