// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for retrobot.

retrobot runs team retrospectives in Slack. A moderator mentions the bot in
a channel to start a session, every human member is asked the questions in a
DM, and once everyone is done (or the moderator says so) the answers are
posted back to the channel for emoji voting. A summary ranks them.

# Starting the Bot

	SLACK_BOT_TOKEN=xoxb-... SLACK_APP_TOKEN=xapp-... go run .

The bot connects over Slack socket mode, so no public URL is needed. A small
ops HTTP server listens on PORT (default 3318) for health, status, history
and Prometheus metrics.

# Configuration

Required settings:

  - SLACK_BOT_TOKEN: bot token with chat:write, reactions:write,
    channels:history, users:read and im:write scopes
  - SLACK_APP_TOKEN: app-level token with connections:write

Optional settings:

  - DATABASE_URL / DATABASE_TYPE: archive summaries to sqlite or postgres
  - ARCHIVE_SALT: required with DATABASE_URL
  - QUESTIONS_FILE: YAML question sets replacing the built-in ones

See package cliparse for the full list.

# Architecture

  - retro: turns mentions and DMs into session transitions
  - session: the active session and its voting phase
  - conversation: per-participant DM progress
  - voting: vote weights, ranking and summary text
  - command, questions: parsing moderator commands and question sets
  - slackbot: Slack Web API client and socket mode loop
  - db, auth: summary archive with anonymous pseudonyms
  - router, handlers, middleware, metrics: ops HTTP surface
  - apperr, models, cliparse: shared errors, types and configuration

See package documentation for each component.
*/
package main
