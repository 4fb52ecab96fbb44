// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package slackbot connects the retro coordinator to Slack.
//
// Client implements the chat ports over the Web API and rate limits every
// call. Bot runs the socket mode loop, acknowledges each envelope and routes
// mentions, direct messages and the "Start over" button to a Handler.
package slackbot
