/*-------------------------------------------------------------------------
 *
 * guardrail_test.go
 *    Tests for guardrail package
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 *-------------------------------------------------------------------------
 */

package guardrail

import (
	"errors"
	"testing"
)

func testPolicy() Policy {
	return Policy{
		MinDurationMinutes: 15,
		MaxDurationMinutes: 240,
		AllowedScopes:      []string{"/", "/administrativeUnits/engineering"},
	}
}

func baseRequest() ElevationRequest {
	return ElevationRequest{
		PrincipalUPN:    "alice@contoso.com",
		Role:            "Helpdesk Administrator",
		Scope:           "/",
		DurationMinutes: 120,
		Justification:   "OPS-1432 temp access",
		RequireTicket:   true,
	}
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		wantErr  error
	}{
		{"below minimum", 14, ErrDurationOutOfRange},
		{"at minimum", 15, nil},
		{"in range", 120, nil},
		{"at maximum", 240, nil},
		{"above maximum", 241, ErrDurationOutOfRange},
		{"zero", 0, ErrDurationOutOfRange},
		{"negative", -30, ErrDurationOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			req.DurationMinutes = tt.duration
			_, err := Validate(req, testPolicy())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateScope(t *testing.T) {
	tests := []struct {
		name    string
		scope   string
		wantErr error
	}{
		{"tenant root", "/", nil},
		{"allowed unit", "/administrativeUnits/engineering", nil},
		{"not allowed", "/administrativeUnits/finance", ErrScopeNotAllowed},
		{"empty", "", ErrScopeNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			req.Scope = tt.scope
			_, err := Validate(req, testPolicy())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTicketReference(t *testing.T) {
	tests := []struct {
		name          string
		justification string
		requireTicket bool
		wantErr       error
	}{
		{"ops key", "OPS-1234 needed", true, nil},
		{"lowercase ops key", "ops-1234 needed", true, nil},
		{"sec key", "SEC-99 incident follow-up", true, nil},
		{"inc token", "INC0012345 on call", true, nil},
		{"chg token", "per CHG-77", true, nil},
		{"word ticket", "see ticket in queue", true, nil},
		{"no reference", "temporary access please", true, ErrMissingTicketReference},
		{"empty justification", "", true, ErrMissingTicketReference},
		{"no reference, not required", "temporary access please", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			req.Justification = tt.justification
			req.RequireTicket = tt.requireTicket
			_, err := Validate(req, testPolicy())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCheckOrder(t *testing.T) {
	/* Duration is checked before scope, scope before ticket */
	req := baseRequest()
	req.DurationMinutes = 5
	req.Scope = "/nowhere"
	req.Justification = "no reference"

	_, err := Validate(req, testPolicy())
	if !errors.Is(err, ErrDurationOutOfRange) {
		t.Fatalf("Validate() error = %v, want duration rejection first", err)
	}

	req.DurationMinutes = 60
	_, err = Validate(req, testPolicy())
	if !errors.Is(err, ErrScopeNotAllowed) {
		t.Fatalf("Validate() error = %v, want scope rejection second", err)
	}
}

func TestValidateSimulatePassesGuardrails(t *testing.T) {
	req := baseRequest()
	req.Simulate = true

	validated, err := Validate(req, testPolicy())
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if !validated.Simulate {
		t.Fatal("Validate() dropped the simulate flag")
	}

	/* Guardrails apply uniformly to simulated requests */
	req.DurationMinutes = 999
	if _, err := Validate(req, testPolicy()); !errors.Is(err, ErrDurationOutOfRange) {
		t.Fatalf("Validate() error = %v, want duration rejection for simulated request", err)
	}
}
