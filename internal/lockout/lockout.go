/*-------------------------------------------------------------------------
 *
 * lockout.go
 *    Sign-in triage summary for a single user
 *
 * Distills recent sign-in events into a status verdict and per-app
 * counters so a helpdesk operator can tell at a glance whether a user
 * is blocked, recovering, or fine. No directory writes happen here.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/lockout/lockout.go
 *
 *-------------------------------------------------------------------------
 */

package lockout

import (
	"context"
	"fmt"
	"sort"

	"github.com/accessdesk/AccessAgent/internal/directory"
	"github.com/accessdesk/AccessAgent/internal/metrics"
)

/* Status verdicts, in rough order of severity */
const (
	StatusOK              = "ok"
	StatusOKAfterFailures = "ok_after_failures"
	StatusMixedSuccess    = "mixed_success"
	StatusBlocked         = "blocked"
)

const (
	topAppEntries    = 5
	topErrorEntries  = 5
	maxPoliciesShown = 10
)

/* CountEntry pairs a label with an occurrence count */
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

/* ErrorEntry pairs a sign-in error code with an occurrence count */
type ErrorEntry struct {
	Code  int `json:"code"`
	Count int `json:"count"`
}

/* Summary is the triage report for one user's recent sign-ins */
type Summary struct {
	UPN                     string       `json:"upn"`
	LookbackHours           int          `json:"lookback_hours"`
	InteractiveOnly         bool         `json:"interactive_only"`
	Status                  string       `json:"status"`
	LastFailureTime         string       `json:"last_failure_time,omitempty"`
	LastSuccessTime         string       `json:"last_success_time,omitempty"`
	SuccessCount            int          `json:"success_count"`
	FailureCount            int          `json:"failure_count"`
	AppsSuccessTop          []CountEntry `json:"apps_success_top"`
	AppsFailureTop          []CountEntry `json:"apps_failure_top"`
	ConditionalAccessStatus []CountEntry `json:"conditional_access_status"`
	TopErrors               []ErrorEntry `json:"top_errors"`
	PoliciesHit             []string     `json:"policies_hit"`
	Recommendation          string       `json:"recommendation"`
}

/* SignInSource provides recent sign-in events for a user */
type SignInSource interface {
	SignIns(ctx context.Context, upn string, lookbackHours int, interactiveOnly bool) ([]directory.SignInEvent, error)
}

type Checker struct {
	source SignInSource
}

func NewChecker(source SignInSource) *Checker {
	return &Checker{source: source}
}

/* Check summarizes sign-in activity for upn over the lookback window.
 * lookbackHours is clamped to [1, 168]. */
func (c *Checker) Check(ctx context.Context, upn string, lookbackHours int, interactiveOnly bool) (*Summary, error) {
	if upn == "" {
		return nil, fmt.Errorf("upn is required")
	}
	if lookbackHours < 1 {
		lookbackHours = 1
	}
	if lookbackHours > 168 {
		lookbackHours = 168
	}

	events, err := c.source.SignIns(ctx, upn, lookbackHours, interactiveOnly)
	if err != nil {
		return nil, fmt.Errorf("lockout check failed for upn='%s': %w", upn, err)
	}

	s := &Summary{
		UPN:             upn,
		LookbackHours:   lookbackHours,
		InteractiveOnly: interactiveOnly,
	}

	appSuccess := map[string]int{}
	appFailure := map[string]int{}
	errorCodes := map[int]int{}
	caStatus := map[string]int{}
	policySet := map[string]bool{}

	for _, e := range events {
		app := e.AppDisplayName
		if app == "" {
			app = "Unknown"
		}
		if e.ConditionalAccessStatus != "" && e.ConditionalAccessStatus != "none" {
			caStatus[e.ConditionalAccessStatus]++
		}

		/* ISO-8601 timestamps compare correctly as strings */
		if e.Status.ErrorCode != 0 {
			errorCodes[e.Status.ErrorCode]++
			appFailure[app]++
			if e.CreatedDateTime > s.LastFailureTime {
				s.LastFailureTime = e.CreatedDateTime
			}
		} else {
			appSuccess[app]++
			if e.CreatedDateTime > s.LastSuccessTime {
				s.LastSuccessTime = e.CreatedDateTime
			}
		}

		for _, p := range e.AppliedConditionalAccessPolicies {
			if p.DisplayName != "" {
				policySet[p.DisplayName] = true
			}
		}
	}

	for _, n := range appSuccess {
		s.SuccessCount += n
	}
	for _, n := range appFailure {
		s.FailureCount += n
	}
	s.AppsSuccessTop = topCounts(appSuccess, topAppEntries)
	s.AppsFailureTop = topCounts(appFailure, topAppEntries)
	s.ConditionalAccessStatus = topCounts(caStatus, len(caStatus))
	s.TopErrors = topErrors(errorCodes, topErrorEntries)

	for name := range policySet {
		s.PoliciesHit = append(s.PoliciesHit, name)
	}
	sort.Strings(s.PoliciesHit)
	if len(s.PoliciesHit) > maxPoliciesShown {
		s.PoliciesHit = s.PoliciesHit[:maxPoliciesShown]
	}

	switch {
	case s.FailureCount == 0 && s.SuccessCount > 0:
		s.Status = StatusOK
	case s.SuccessCount > 0 && s.FailureCount > 0:
		if s.LastSuccessTime != "" && (s.LastFailureTime == "" || s.LastSuccessTime > s.LastFailureTime) {
			s.Status = StatusOKAfterFailures
		} else {
			s.Status = StatusMixedSuccess
		}
	default:
		s.Status = StatusBlocked
	}

	if s.Status == StatusOK || s.Status == StatusOKAfterFailures {
		s.Recommendation = "No action. Recent successes observed."
	} else {
		s.Recommendation = "Review app assignment/licensing or device/risk posture; see top_errors/apps_failure_top."
	}

	metrics.InfoWithContext(ctx, "Lockout check completed", map[string]interface{}{
		"upn":       upn,
		"status":    s.Status,
		"successes": s.SuccessCount,
		"failures":  s.FailureCount,
	})
	return s, nil
}

/* topCounts ranks a counter map by count desc, then label asc for
 * deterministic output, keeping at most limit entries. */
func topCounts(m map[string]int, limit int) []CountEntry {
	out := make([]CountEntry, 0, len(m))
	for label, count := range m {
		out = append(out, CountEntry{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func topErrors(m map[int]int, limit int) []ErrorEntry {
	out := make([]ErrorEntry, 0, len(m))
	for code, count := range m {
		out = append(out, ErrorEntry{Code: code, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
