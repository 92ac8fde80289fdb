package parser

import (
	"math/rand"
	"strings"
)

const (
	fearReply    = "🏴‍☠️ No need to fear! I'm just here to help with baseball. ⚾"
	humorReply   = "⚾ Humor setting: TARS level. 75% honesty. 🤖"
	thanksReply  = "🏴‍☠️ You're welcome! Happy to help. ⚾"
	greetReply   = "🏴‍☠️ Hi! I help with schedules and volunteers. ⚾"
	missingIDMsg = "⚾ Please provide a message ID to delete. Use 'list messages' to see message IDs."
)

var wittyReplies = []string{
	"🏴‍☠️ Ahoy! I'm not quite sure what you're asking, but I'm here to help! Try asking about the next game or volunteer to bring snacks! 🍪",
	"⚾ Hmm, that's a new one! Maybe ask me 'when's the next game?' or 'I've got snacks'? 🤔",
	"🏴‍☠️ I'm still learning pirate speak! Try asking me about games, volunteers, or team spirit! 🏴‍☠️",
	"⚾ Not quite sure what you mean, matey! Ask me about upcoming games or volunteer roles! 🏴‍☠️",
	"🏴‍☠️ Shiver me timbers! That's a puzzler. Try 'next game', 'I've got snacks', or a hearty cheer! ⚾",
	"⚾ Arrr, I'm not sure what ye be sayin'! Ask about the next game or volunteer to help out! 🏴‍☠️",
	"📱 Autocorrect failing you again? Try 'next game' or 'show volunteers'! 🙄",
}

// conversationalReply maps trigger keywords to a canned response, or
// returns "" when the text carries no conversational trigger.
func conversationalReply(text string) string {
	switch {
	case strings.Contains(text, "scared") || strings.Contains(text, "fear"):
		return fearReply
	case strings.Contains(text, "thank"):
		return thanksReply
	case strings.Contains(text, "funny") || strings.Contains(text, "lol"):
		return humorReply
	case strings.Contains(text, "hello") || hasWord(text, "hi"):
		return greetReply
	}
	return ""
}

func wittyReply(rng *rand.Rand) string {
	if rng == nil {
		return wittyReplies[0]
	}
	return wittyReplies[rng.Intn(len(wittyReplies))]
}

func hasWord(text, word string) bool {
	for _, w := range strings.Fields(text) {
		if strings.Trim(w, ".,!?") == word {
			return true
		}
	}
	return false
}
