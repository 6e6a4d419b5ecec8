/*-------------------------------------------------------------------------
 *
 * intent.go
 *    Keyword routing for conversational agent messages
 *
 * Classification is a fixed rule table over the lowercased message, not
 * NLP. Rules are checked in order and the first match wins; anything
 * unmatched falls through to help.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/intent/intent.go
 *
 *-------------------------------------------------------------------------
 */

package intent

import (
	"regexp"
	"strings"
)

/* Action is the routing outcome for one chat message */
type Action int

const (
	ActionHelp Action = iota
	ActionLockout
	ActionPing
	ActionElevation
)

func (a Action) String() string {
	switch a {
	case ActionLockout:
		return "lockout"
	case ActionPing:
		return "ping"
	case ActionElevation:
		return "elevation"
	default:
		return "help"
	}
}

/* lockoutMarkers match mid-sentence; the leading space on some entries
 * avoids firing on substrings of unrelated words ("authorization"). */
var lockoutMarkers = []string{" lockout", "sign in", "signin", "login", "auth "}

var elevationVerbs = []string{"request", "assign", "create"}

var upnPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

/* Classify maps a raw chat message to an action */
func Classify(message string) Action {
	text := strings.ToLower(strings.TrimSpace(message))

	if strings.HasPrefix(text, "lockout") || containsAny(text, lockoutMarkers) {
		return ActionLockout
	}
	if strings.Contains(text, "tenant") || strings.Contains(text, "ping") {
		return ActionPing
	}
	if strings.Contains(text, "pim") && containsAny(text, elevationVerbs) {
		return ActionElevation
	}
	return ActionHelp
}

/* ExtractUPN returns the first email-shaped token in text, or "" */
func ExtractUPN(text string) string {
	return upnPattern.FindString(text)
}

/* HelpText is the fallback reply for unclassifiable messages */
const HelpText = "Try: 'check lockout for user@contoso.com', 'ping tenant', or " +
	"'request pim for user@contoso.com' with context " +
	"{role_name_or_id, scope, duration_minutes, manager_upn, justification, simulate}."

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
