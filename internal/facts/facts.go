// Package facts serves team trivia lines for reminders and cheers.
package facts

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// customFacts is the shape of the optional facts file.
type customFacts struct {
	TeamName string   `json:"team_name"`
	Facts    []string `json:"facts"`
}

// Provider hands out one random fact per call. Disabled providers return
// a fixed cheer so callers never need a nil check.
type Provider struct {
	teamName  string
	teamEmoji string
	enabled   bool
	custom    []string
	rng       *rand.Rand
}

func NewProvider(teamName, teamEmoji string, enabled bool, factsFile string, logger *zap.Logger) *Provider {
	p := &Provider{
		teamName:  teamName,
		teamEmoji: teamEmoji,
		enabled:   enabled,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if factsFile == "" {
		return p
	}
	data, err := os.ReadFile(factsFile)
	if err != nil {
		logger.Warn("team facts file unreadable, using builtin facts",
			zap.String("path", factsFile), zap.Error(err))
		return p
	}
	var cf customFacts
	if err := json.Unmarshal(data, &cf); err != nil {
		logger.Warn("team facts file malformed, using builtin facts",
			zap.String("path", factsFile), zap.Error(err))
		return p
	}
	p.custom = cf.Facts
	return p
}

func (p *Provider) Fact() string {
	if !p.enabled {
		return fmt.Sprintf("%s Let's go team! ⚾", p.teamEmoji)
	}
	if len(p.custom) > 0 {
		return p.custom[p.rng.Intn(len(p.custom))]
	}
	return p.builtinFact()
}

func (p *Provider) builtinFact() string {
	pool, ok := builtinFacts[strings.ToLower(p.teamName)]
	if !ok {
		pool = genericFacts
	}
	return pool[p.rng.Intn(len(pool))]
}

var builtinFacts = map[string][]string{
	"pirates": {
		"🏴‍☠️ The Pittsburgh Pirates were the first professional sports team to win a championship via walk-off home run in 1960!",
		"⚾ The Pirates were the first MLB team to field an all-minority starting lineup on September 1, 1971!",
		"🏴‍☠️ Roberto Clemente was the first Latino player to reach 3,000 hits and was inducted into the Baseball Hall of Fame in 1973!",
		"⚾ Three Rivers Stadium was home to the Pirates from 1970-2000 and hosted the 1979 World Series championship!",
		"🏴‍☠️ The Pirates' 'We Are Family' team of 1979 came back from a 3-1 deficit to win the World Series!",
		"⚾ PNC Park opened in 2001 and is consistently ranked as one of the most beautiful ballparks in baseball!",
		"🏴‍☠️ Honus Wagner, the 'Flying Dutchman', played shortstop for the Pirates and led them to their first World Series title in 1909!",
		"⚾ The Pirates were founded in 1881, making them one of the oldest franchises in Major League Baseball!",
		"🏴‍☠️ The team is called 'Pirates' because they 'pirated' a player from another team in 1891!",
		"⚾ The Pirates have won 5 World Series championships: 1909, 1925, 1960, 1971, and 1979!",
	},
	"yankees": {
		"🗽 The New York Yankees have won 27 World Series championships, more than any other MLB team!",
		"⚾ Babe Ruth hit 714 home runs in his career, with 659 of them as a Yankee!",
		"🗽 The Yankees' pinstripe uniforms have been iconic since 1912!",
		"⚾ Yankee Stadium is known as 'The House That Ruth Built' and opened in 1923!",
		"🗽 Derek Jeter played his entire 20-year career with the Yankees and got 3,465 hits!",
		"⚾ Joe DiMaggio's 56-game hitting streak in 1941 is still an MLB record!",
	},
	"red sox": {
		"🧦 The Boston Red Sox won their first World Series in 1903!",
		"⚾ Fenway Park opened in 1912 and is the oldest ballpark in Major League Baseball!",
		"🧦 The Green Monster at Fenway is 37 feet tall and one of baseball's most iconic features!",
		"⚾ Ted Williams was the last player to bat over .400 in a season, hitting .406 in 1941!",
		"🧦 The Red Sox broke the 'Curse of the Bambino' by winning the 2004 World Series!",
	},
	"cubs": {
		"🐻 The Chicago Cubs broke a 108-year championship drought by winning the 2016 World Series!",
		"⚾ Wrigley Field opened in 1914 and is the second-oldest ballpark in MLB!",
		"🐻 The Cubs' ivy-covered outfield walls at Wrigley are iconic!",
		"⚾ Ernie Banks, 'Mr. Cub', hit 512 home runs all with the Cubs!",
		"🐻 The Cubs were founded in 1876, making them one of the oldest teams in baseball!",
	},
}

var genericFacts = []string{
	"⚾ A regulation baseball has exactly 108 stitches!",
	"⚾ The fastest recorded pitch in MLB history was 105.8 mph by Aroldis Chapman in 2010!",
	"⚾ Baseball games have no clock, making it one of the few major sports where the game ends when it ends!",
	"⚾ The first recorded baseball game was played in 1846 in Hoboken, New Jersey!",
	"⚾ An MLB baseball is used for an average of just 5 to 7 pitches before being replaced!",
}
