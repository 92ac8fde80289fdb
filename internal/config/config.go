package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Team     TeamConfig     `mapstructure:"team"`
	GroupMe  GroupMeConfig  `mapstructure:"groupme"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Facts    FactsConfig    `mapstructure:"facts"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig is optional. An empty DSN means moderators are kept in the
// flat-file store and no reminder audit rows are written.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type TeamConfig struct {
	Name        string `mapstructure:"name"`
	Emoji       string `mapstructure:"emoji"`
	AdminUserID string `mapstructure:"admin_user_id"`
}

// GroupMeConfig carries the bot posting identity plus the optional
// access-token/group pair that unlocks message list/delete.
type GroupMeConfig struct {
	BotID       string        `mapstructure:"bot_id"`
	BotName     string        `mapstructure:"bot_name"`
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	GroupID     string        `mapstructure:"group_id"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SheetsConfig struct {
	SpreadsheetID      string        `mapstructure:"spreadsheet_id"`
	APIKey             string        `mapstructure:"api_key"`
	ServiceAccountJSON string        `mapstructure:"service_account_json"`
	BaseURL            string        `mapstructure:"base_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// CalendarConfig points at an optional ICS feed. An empty URL is a
// legitimate "no secondary source" state, not an error.
type CalendarConfig struct {
	ICSURL  string        `mapstructure:"ics_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ReminderConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Interval  string `mapstructure:"interval"`
	StartHour int    `mapstructure:"start_hour"`
	EndHour   int    `mapstructure:"end_hour"`
}

type WeatherConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type FactsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DUGOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":18080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("team.name", "Team")
	v.SetDefault("team.emoji", "⚾")
	v.SetDefault("groupme.base_url", "https://api.groupme.com/v3")
	v.SetDefault("groupme.timeout", "10s")
	v.SetDefault("sheets.base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("sheets.timeout", "15s")
	v.SetDefault("calendar.ics_url", "")
	v.SetDefault("calendar.timeout", "15s")
	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.interval", "@every 5m")
	v.SetDefault("reminder.start_hour", 9)
	v.SetDefault("reminder.end_hour", 21)
	v.SetDefault("weather.enabled", false)
	v.SetDefault("weather.timeout", "10s")
	v.SetDefault("facts.enabled", true)
	v.SetDefault("facts.file", "")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects configurations the process must not start with.
// The reminder window is checked here so a bad window is a startup
// failure rather than a silently mute scheduler.
func (c Config) Validate() error {
	if c.GroupMe.BotID == "" {
		return fmt.Errorf("config: groupme.bot_id is required")
	}
	if c.GroupMe.BotName == "" {
		return fmt.Errorf("config: groupme.bot_name is required")
	}
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("config: sheets.spreadsheet_id is required")
	}
	if c.Sheets.APIKey == "" && c.Sheets.ServiceAccountJSON == "" {
		return fmt.Errorf("config: sheets.api_key or sheets.service_account_json is required")
	}
	if c.Team.AdminUserID == "" {
		return fmt.Errorf("config: team.admin_user_id is required")
	}
	if c.Reminder.StartHour < 0 || c.Reminder.StartHour >= c.Reminder.EndHour || c.Reminder.EndHour > 24 {
		return fmt.Errorf("config: reminder window must satisfy 0 <= start_hour < end_hour <= 24, got [%d, %d)",
			c.Reminder.StartHour, c.Reminder.EndHour)
	}
	return nil
}

// MessageManagementConfigured reports whether the optional GroupMe
// list/delete capability can be used.
func (c Config) MessageManagementConfigured() bool {
	return c.GroupMe.AccessToken != "" && c.GroupMe.GroupID != ""
}
