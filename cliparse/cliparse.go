// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Zero participant policies
const (
	ZeroParticipantsReject = "reject"
	ZeroParticipantsAllow  = "allow"
)

const defaultReactions = "thumbsup,fire,chart_with_upwards_trend"

type Config struct {
	SlackBotToken string
	SlackAppToken string

	Port         int
	DatabaseURL  string
	DatabaseType string
	ArchiveSalt  string

	QuestionsFile         string
	DefaultTopN           int
	ReactionKinds         []string
	ZeroParticipantPolicy string
	SlackRatePerSec       float64
	LogLevel              string
}

// SlogLevel maps LogLevel onto slog, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseFlags validates flags and fills the rest from the environment. A .env
// file in the working directory is loaded first if present; real environment
// variables win over it.
func ParseFlags(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	var reactions string

	fs := flag.NewFlagSet("retrobot", flag.ContinueOnError)

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SlackBotToken, "bot-token", "", "Slack bot token xoxb-... (prefer env)")
	fs.StringVar(&cfg.SlackAppToken, "app-token", "", "Slack app-level token xapp-... (prefer env)")
	fs.StringVar(&cfg.ArchiveSalt, "archive-salt", "", "Salt for anonymous archive pseudonyms (prefer env)")

	// Ops HTTP and archive
	fs.IntVar(&cfg.Port, "p", 0, "Ops HTTP port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Archive database URL (empty disables the archive)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Behaviour
	fs.StringVar(&cfg.QuestionsFile, "questions", "", "YAML file with question sets")
	fs.IntVar(&cfg.DefaultTopN, "top", 0, "Default number of top answers per question")
	fs.StringVar(&reactions, "reactions", "", "Comma separated reactions seeded on voting messages")
	fs.StringVar(&cfg.ZeroParticipantPolicy, "zero-participants", "", "reject or allow a session nobody could be DMed for")
	fs.Float64Var(&cfg.SlackRatePerSec, "slack-rate", 0, "Slack API calls per second")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	envString(&cfg.SlackBotToken, "SLACK_BOT_TOKEN", "")
	if cfg.SlackBotToken == "" {
		return Config{}, errors.New("SLACK_BOT_TOKEN required")
	}
	envString(&cfg.SlackAppToken, "SLACK_APP_TOKEN", "")
	if cfg.SlackAppToken == "" {
		return Config{}, errors.New("SLACK_APP_TOKEN required (socket mode)")
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	envString(&cfg.DatabaseURL, "DATABASE_URL", "")
	envString(&cfg.DatabaseType, "DATABASE_TYPE", "sqlite")
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q", cfg.DatabaseType)
	}
	envString(&cfg.ArchiveSalt, "ARCHIVE_SALT", "")
	if cfg.DatabaseURL != "" && cfg.ArchiveSalt == "" {
		return Config{}, errors.New("ARCHIVE_SALT required when DATABASE_URL is set")
	}

	envString(&cfg.QuestionsFile, "QUESTIONS_FILE", "")

	if cfg.DefaultTopN == 0 {
		if topStr := os.Getenv("DEFAULT_TOP_N"); topStr != "" {
			top, err := strconv.Atoi(topStr)
			if err != nil {
				return Config{}, errors.New("invalid DEFAULT_TOP_N env variable")
			}
			cfg.DefaultTopN = top
		} else {
			cfg.DefaultTopN = 3
		}
	}
	if cfg.DefaultTopN < 1 {
		return Config{}, errors.New("default top N must be at least 1")
	}

	envString(&reactions, "REACTION_KINDS", defaultReactions)
	cfg.ReactionKinds = splitList(reactions)
	if len(cfg.ReactionKinds) == 0 {
		return Config{}, errors.New("at least one reaction kind required")
	}

	envString(&cfg.ZeroParticipantPolicy, "ZERO_PARTICIPANT_POLICY", ZeroParticipantsReject)
	switch cfg.ZeroParticipantPolicy {
	case ZeroParticipantsReject, ZeroParticipantsAllow:
	default:
		return Config{}, fmt.Errorf("ZERO_PARTICIPANT_POLICY must be %q or %q", ZeroParticipantsReject, ZeroParticipantsAllow)
	}

	if cfg.SlackRatePerSec == 0 {
		if rateStr := os.Getenv("SLACK_RATE_PER_SEC"); rateStr != "" {
			rate, err := strconv.ParseFloat(rateStr, 64)
			if err != nil {
				return Config{}, errors.New("invalid SLACK_RATE_PER_SEC env variable")
			}
			cfg.SlackRatePerSec = rate
		} else {
			cfg.SlackRatePerSec = 1
		}
	}

	envString(&cfg.LogLevel, "LOG_LEVEL", "info")

	return cfg, nil
}

// envString fills an unset value from the environment, then from def.
func envString(dst *string, key, def string) {
	if *dst != "" {
		return
	}
	*dst = os.Getenv(key)
	if *dst == "" {
		*dst = def
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
