// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

// =============================================================================
// FAILURE TRACKER
// =============================================================================

// BreakerThreshold is the number of accumulated consecutive tool failures
// that halts further model consultation for the current burst.
const BreakerThreshold = 5

// TallyFailures computes the running consecutive-failure count from the
// conversation and the prior count.
//
// A human message as the most recent turn resets the count to 0
// unconditionally: a new human request forgives prior tool failures.
//
// Otherwise the history is scanned backward, counting tool results that
// carry the failure marker, until the ai message that opened the current
// burst. Fresh failures accumulate on top of the prior count. When the
// burst produced no fresh failures and the most recent message is a
// successful tool result, the count resets to 0.
//
// The reset is last-message-wins: a successful tool result forgives only
// when it is the most recent message, not when it is interleaved with
// failures earlier in the same burst.
func TallyFailures(messages []Message, prior int) int {
	if len(messages) == 0 {
		return prior
	}

	last := messages[len(messages)-1]
	if last.Role == RoleHuman {
		return 0
	}

	newErrors := 0
scan:
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		switch {
		case msg.Role == RoleTool && msg.IsError():
			newErrors++
		case msg.Role == RoleAI && msg.HasToolCalls():
			break scan
		}
	}

	if newErrors > 0 {
		return prior + newErrors
	}
	if last.Role == RoleTool && !last.IsError() {
		return 0
	}
	return prior
}

// BreakerTripped reports whether the failure count has reached the
// threshold at which the model must not be consulted again this burst.
func BreakerTripped(count int) bool {
	return count >= BreakerThreshold
}
