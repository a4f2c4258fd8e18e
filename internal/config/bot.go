package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	pkgconfig "github.com/DepSpiel/telegram-pidrgpt/internal/pkg/config"
)

// BotProfile represents an optional bot profile loaded from a YAML file.
// Values set here override the corresponding environment configuration;
// empty fields leave the env-derived value in place.
type BotProfile struct {
	Bot struct {
		DryRun   bool   `yaml:"dry_run"`
		Schedule string `yaml:"schedule"`
		Timezone string `yaml:"timezone"`
		Telegram struct {
			ChatIDs   []string `yaml:"chat_ids"`
			ParseMode string   `yaml:"parse_mode"`
		} `yaml:"telegram"`
	} `yaml:"bot"`
}

// LoadBotProfile loads a bot profile from a YAML file.
// The path parameter is expected to come from a trusted source (command-line argument or hardcoded default).
func LoadBotProfile(path string) (*BotProfile, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var profile BotProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateBotProfile(&profile); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &profile, nil
}

// validateBotProfile validates the loaded profile. Optional fields are only
// checked when present so a minimal profile stays valid.
func validateBotProfile(profile *BotProfile) error {
	if profile.Bot.Schedule != "" {
		if err := pkgconfig.ValidateCronSchedule(profile.Bot.Schedule); err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
	}

	if profile.Bot.Timezone != "" {
		if err := pkgconfig.ValidateTimezone(profile.Bot.Timezone); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}

	switch profile.Bot.Telegram.ParseMode {
	case "", "Markdown", "MarkdownV2", "HTML":
	default:
		return fmt.Errorf("parse_mode must be Markdown, MarkdownV2 or HTML, got %q", profile.Bot.Telegram.ParseMode)
	}

	for i, chatID := range profile.Bot.Telegram.ChatIDs {
		if strings.TrimSpace(chatID) == "" {
			return fmt.Errorf("chat_ids[%d] is empty", i)
		}
	}

	return nil
}

// IsDryRun reports whether the profile requests dry-run publishing.
func (p *BotProfile) IsDryRun() bool {
	return p.Bot.DryRun
}

// GetSchedule returns the cron schedule override, or empty if not set.
func (p *BotProfile) GetSchedule() string {
	return p.Bot.Schedule
}

// GetTimezone returns the timezone override, or empty if not set.
func (p *BotProfile) GetTimezone() string {
	return p.Bot.Timezone
}

// GetChatIDs returns the Telegram chat targets, or empty if not set.
func (p *BotProfile) GetChatIDs() []string {
	return p.Bot.Telegram.ChatIDs
}

// GetParseMode returns the Telegram parse mode override, or empty if not set.
func (p *BotProfile) GetParseMode() string {
	return p.Bot.Telegram.ParseMode
}
