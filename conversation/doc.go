// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package conversation tracks each participant's progress through the
question DMs.

State holds one answer bucket per question. Participants append any number
of answers to the current bucket, advance with "done", and may restart from
the first question at any time. Completing invokes the
CompletionFunc passed to Advance exactly once with the flattened answers.
*/
package conversation
