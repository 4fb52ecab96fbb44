// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first when present.

# CLI Flags and Environment Variables

	-bot-token          SLACK_BOT_TOKEN          required
	-app-token          SLACK_APP_TOKEN          required, socket mode
	-p                  PORT                     ops HTTP port (default 3318)
	-d                  DATABASE_URL             archive database, empty disables it
	-t                  DATABASE_TYPE            sqlite (default) or postgres
	-archive-salt       ARCHIVE_SALT             required when DATABASE_URL is set
	-questions          QUESTIONS_FILE           YAML question sets
	-top                DEFAULT_TOP_N            default 3
	-reactions          REACTION_KINDS           default thumbsup,fire,chart_with_upwards_trend
	-zero-participants  ZERO_PARTICIPANT_POLICY  reject (default) or allow
	-slack-rate         SLACK_RATE_PER_SEC       default 1
	-log-level          LOG_LEVEL                default info

CLI flags take precedence over environment variables.

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: cfg.SlogLevel()})))
*/
package cliparse
