/*-------------------------------------------------------------------------
 *
 * lockout_test.go
 *    Tests for sign-in triage summaries
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/lockout/lockout_test.go
 *
 *-------------------------------------------------------------------------
 */

package lockout

import (
	"context"
	"fmt"
	"testing"

	"github.com/accessdesk/AccessAgent/internal/directory"
)

type fakeSource struct {
	events      []directory.SignInEvent
	err         error
	gotUPN      string
	gotLookback int
	gotIntOnly  bool
}

func (f *fakeSource) SignIns(_ context.Context, upn string, lookbackHours int, interactiveOnly bool) ([]directory.SignInEvent, error) {
	f.gotUPN = upn
	f.gotLookback = lookbackHours
	f.gotIntOnly = interactiveOnly
	return f.events, f.err
}

func event(ts, app string, errorCode int, caStatus string, policies ...string) directory.SignInEvent {
	var e directory.SignInEvent
	e.CreatedDateTime = ts
	e.AppDisplayName = app
	e.Status.ErrorCode = errorCode
	e.ConditionalAccessStatus = caStatus
	for _, p := range policies {
		e.AppliedConditionalAccessPolicies = append(e.AppliedConditionalAccessPolicies, struct {
			DisplayName string `json:"displayName"`
		}{DisplayName: p})
	}
	return e
}

func TestCheckStatusVerdicts(t *testing.T) {
	tests := []struct {
		name   string
		events []directory.SignInEvent
		want   string
	}{
		{
			"all success",
			[]directory.SignInEvent{
				event("2026-08-30T08:00:00Z", "Outlook", 0, "success"),
				event("2026-08-30T09:00:00Z", "Teams", 0, "success"),
			},
			StatusOK,
		},
		{
			"recovered after failures",
			[]directory.SignInEvent{
				event("2026-08-30T08:00:00Z", "Outlook", 50053, "failure"),
				event("2026-08-30T09:00:00Z", "Outlook", 0, "success"),
			},
			StatusOKAfterFailures,
		},
		{
			"still failing after success",
			[]directory.SignInEvent{
				event("2026-08-30T08:00:00Z", "Outlook", 0, "success"),
				event("2026-08-30T09:00:00Z", "Outlook", 50053, "failure"),
			},
			StatusMixedSuccess,
		},
		{
			"failures only",
			[]directory.SignInEvent{
				event("2026-08-30T08:00:00Z", "Outlook", 50126, "failure"),
			},
			StatusBlocked,
		},
		{
			"no events at all",
			nil,
			StatusBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(&fakeSource{events: tt.events})
			s, err := c.Check(context.Background(), "alice@contoso.com", 24, true)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if s.Status != tt.want {
				t.Errorf("Status = %q, want %q", s.Status, tt.want)
			}
		})
	}
}

func TestCheckSummaryDetail(t *testing.T) {
	src := &fakeSource{events: []directory.SignInEvent{
		event("2026-08-30T08:00:00Z", "Outlook", 50053, "failure", "Require MFA"),
		event("2026-08-30T08:10:00Z", "Outlook", 50053, "failure", "Require MFA"),
		event("2026-08-30T08:20:00Z", "Teams", 50126, "failure", "Block legacy auth"),
		event("2026-08-30T09:00:00Z", "", 0, "none"),
	}}
	c := NewChecker(src)

	s, err := c.Check(context.Background(), "alice@contoso.com", 24, true)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if s.FailureCount != 3 || s.SuccessCount != 1 {
		t.Errorf("counts = %d failures / %d successes, want 3/1", s.FailureCount, s.SuccessCount)
	}
	if s.LastFailureTime != "2026-08-30T08:20:00Z" {
		t.Errorf("LastFailureTime = %q", s.LastFailureTime)
	}
	if s.LastSuccessTime != "2026-08-30T09:00:00Z" {
		t.Errorf("LastSuccessTime = %q", s.LastSuccessTime)
	}

	if len(s.TopErrors) != 2 || s.TopErrors[0].Code != 50053 || s.TopErrors[0].Count != 2 {
		t.Errorf("TopErrors = %+v, want 50053 x2 first", s.TopErrors)
	}
	if len(s.AppsFailureTop) != 2 || s.AppsFailureTop[0].Label != "Outlook" {
		t.Errorf("AppsFailureTop = %+v, want Outlook first", s.AppsFailureTop)
	}
	/* blank app names are normalized */
	if len(s.AppsSuccessTop) != 1 || s.AppsSuccessTop[0].Label != "Unknown" {
		t.Errorf("AppsSuccessTop = %+v, want a single Unknown entry", s.AppsSuccessTop)
	}

	/* "none" conditional access statuses are excluded */
	total := 0
	for _, e := range s.ConditionalAccessStatus {
		total += e.Count
	}
	if total != 3 {
		t.Errorf("conditional access events counted = %d, want 3", total)
	}

	if len(s.PoliciesHit) != 2 || s.PoliciesHit[0] != "Block legacy auth" {
		t.Errorf("PoliciesHit = %v, want sorted unique names", s.PoliciesHit)
	}

	if s.Status != StatusOKAfterFailures {
		t.Errorf("Status = %q, want %q", s.Status, StatusOKAfterFailures)
	}
	if s.Recommendation != "No action. Recent successes observed." {
		t.Errorf("Recommendation = %q", s.Recommendation)
	}
}

func TestCheckLookbackClamping(t *testing.T) {
	src := &fakeSource{}
	c := NewChecker(src)

	if _, err := c.Check(context.Background(), "alice@contoso.com", 0, false); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if src.gotLookback != 1 {
		t.Errorf("lookback = %d, want clamp to 1", src.gotLookback)
	}

	if _, err := c.Check(context.Background(), "alice@contoso.com", 500, false); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if src.gotLookback != 168 {
		t.Errorf("lookback = %d, want clamp to 168", src.gotLookback)
	}
}

func TestCheckErrors(t *testing.T) {
	c := NewChecker(&fakeSource{err: fmt.Errorf("graph request failed: status=429")})

	if _, err := c.Check(context.Background(), "", 24, true); err == nil {
		t.Error("Check() with empty upn should fail")
	}
	if _, err := c.Check(context.Background(), "alice@contoso.com", 24, true); err == nil {
		t.Error("Check() should surface source errors")
	}
}
