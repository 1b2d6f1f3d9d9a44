// Package config loads application settings from the environment.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Placeholder values commonly left behind by .env templates. They are
// treated the same as an unset variable.
var placeholders = map[string]struct{}{
	"your-token-here":       {},
	"your-gitlab-token":     {},
	"your-project-id":       {},
	"your-group-id":         {},
	"your-webhook-url-here": {},
	"changeme":              {},
}

// Config holds every environment-sourced setting. It is constructed
// once by Load and passed by reference into the components that need
// it; there is no ambient global state.
type Config struct {
	GitLabToken          string
	GitLabURL            string
	ProjectID            string
	GroupID              string
	TeamMembers          []string
	TeamsWebhookURL      string
	NotificationsEnabled bool
	WeightRulesRaw       string
}

// Load reads a .env file when present (best effort) and then the
// process environment. Missing optional values produce warnings, never
// errors.
func Load(logger *zap.Logger) *Config {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	cfg := &Config{
		GitLabToken:          getenv("GITLAB_TOKEN", ""),
		GitLabURL:            strings.TrimRight(getenv("GITLAB_URL", "https://gitlab.com"), "/"),
		ProjectID:            getenv("PROJECT_ID", ""),
		GroupID:              getenv("GROUP_ID", ""),
		TeamsWebhookURL:      getenv("TEAMS_WEBHOOK_URL", ""),
		NotificationsEnabled: parseBool(getenv("NOTIFICATIONS_ENABLED", "false")),
		WeightRulesRaw:       getenv("MR_WEIGHT_RULES", ""),
	}
	for _, member := range strings.Split(getenv("TEAM_MEMBERS", ""), ",") {
		member = strings.TrimSpace(member)
		if member != "" {
			cfg.TeamMembers = append(cfg.TeamMembers, member)
		}
	}

	cfg.validate(logger)
	return cfg
}

func (c *Config) validate(logger *zap.Logger) {
	if c.GitLabToken == "" {
		logger.Warn("no GITLAB_TOKEN configured; live data collection is unavailable")
	}
	if c.ProjectID == "" && c.GroupID == "" {
		logger.Warn("no PROJECT_ID or GROUP_ID configured; live data collection is unavailable")
	}
	if len(c.TeamMembers) == 0 {
		logger.Warn("no TEAM_MEMBERS configured; using example team")
		c.TeamMembers = []string{"john.doe", "jane.smith", "alice.johnson", "bob.wilson"}
	}
	if c.NotificationsEnabled && c.TeamsWebhookURL == "" {
		logger.Warn("notifications enabled but TEAMS_WEBHOOK_URL is not set")
	}
	logger.Info("configuration loaded",
		zap.Int("team_members", len(c.TeamMembers)),
		zap.Bool("has_token", c.GitLabToken != ""),
		zap.Bool("notifications_enabled", c.NotificationsEnabled),
	)
}

// HasValidSource reports whether the configuration is complete enough
// to collect live data: a token plus a project or group identifier.
func (c *Config) HasValidSource() bool {
	return c.GitLabToken != "" && (c.ProjectID != "" || c.GroupID != "")
}

// IsTeamMember reports whether username belongs to the configured team.
func (c *Config) IsTeamMember(username string) bool {
	for _, member := range c.TeamMembers {
		if member == username {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if _, ok := placeholders[strings.ToLower(value)]; ok {
		return fallback
	}
	return value
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
