package config

import "testing"

func validConfig() Config {
	return Config{
		GroupMe: GroupMeConfig{BotID: "b1", BotName: "PirateBot"},
		Sheets:  SheetsConfig{SpreadsheetID: "sheet1", APIKey: "key"},
		Team:    TeamConfig{AdminUserID: "admin"},
		Reminder: ReminderConfig{
			StartHour: 9,
			EndHour:   21,
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing bot id", func(c *Config) { c.GroupMe.BotID = "" }},
		{"missing bot name", func(c *Config) { c.GroupMe.BotName = "" }},
		{"missing spreadsheet", func(c *Config) { c.Sheets.SpreadsheetID = "" }},
		{"no sheets credential", func(c *Config) {
			c.Sheets.APIKey = ""
			c.Sheets.ServiceAccountJSON = ""
		}},
		{"missing admin", func(c *Config) { c.Team.AdminUserID = "" }},
		{"inverted window", func(c *Config) {
			c.Reminder.StartHour = 21
			c.Reminder.EndHour = 9
		}},
		{"empty window", func(c *Config) {
			c.Reminder.StartHour = 9
			c.Reminder.EndHour = 9
		}},
		{"window past midnight", func(c *Config) { c.Reminder.EndHour = 25 }},
		{"negative start", func(c *Config) { c.Reminder.StartHour = -1 }},
	}
	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestServiceAccountSatisfiesSheetsCredential(t *testing.T) {
	cfg := validConfig()
	cfg.Sheets.APIKey = ""
	cfg.Sheets.ServiceAccountJSON = "/etc/dugout/sa.json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("service account credential rejected: %v", err)
	}
}

func TestMessageManagementConfigured(t *testing.T) {
	cfg := validConfig()
	if cfg.MessageManagementConfigured() {
		t.Fatalf("unconfigured message management reported configured")
	}
	cfg.GroupMe.AccessToken = "tok"
	cfg.GroupMe.GroupID = "g1"
	if !cfg.MessageManagementConfigured() {
		t.Fatalf("configured message management reported unconfigured")
	}
}
