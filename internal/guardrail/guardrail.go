/*-------------------------------------------------------------------------
 *
 * guardrail.go
 *    Guardrail validation for elevation requests
 *
 * Pure policy checks applied to every elevation request before a ticket
 * or ledger entry exists. No I/O happens here.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/guardrail/guardrail.go
 *
 *-------------------------------------------------------------------------
 */

package guardrail

import (
	"errors"
	"fmt"
	"strings"
)

/* Rejection sentinels, matchable with errors.Is */
var (
	ErrDurationOutOfRange     = errors.New("duration out of range")
	ErrScopeNotAllowed        = errors.New("scope not allowed")
	ErrMissingTicketReference = errors.New("missing ticket reference")
)

/* ticketMarkers are the recognized ticket-reference tokens, matched
 * case-insensitively inside the justification text. */
var ticketMarkers = []string{"ops-", "sec-", "iac-", "ticket", "inc", "chg"}

/* ElevationRequest is a proposed time-boxed elevation */
type ElevationRequest struct {
	PrincipalUPN    string `json:"principal_upn"`
	Role            string `json:"role_name_or_id"`
	Scope           string `json:"scope"`
	DurationMinutes int    `json:"duration_minutes"`
	Justification   string `json:"justification"`
	RequireTicket   bool   `json:"require_ticket"`
	Simulate        bool   `json:"simulate"`
}

/* Policy bounds what an elevation request may ask for */
type Policy struct {
	MinDurationMinutes int
	MaxDurationMinutes int
	AllowedScopes      []string
}

/* ValidatedRequest is an ElevationRequest that passed every guardrail */
type ValidatedRequest struct {
	ElevationRequest
}

/* Validate applies the guardrail checks in order, stopping at the first
 * failure. Simulated requests are held to the same checks; simulation
 * only changes downstream execution. */
func Validate(req ElevationRequest, policy Policy) (*ValidatedRequest, error) {
	if req.DurationMinutes < policy.MinDurationMinutes || req.DurationMinutes > policy.MaxDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be between %d and %d minutes, got %d",
			ErrDurationOutOfRange, policy.MinDurationMinutes, policy.MaxDurationMinutes, req.DurationMinutes)
	}

	if !scopeAllowed(req.Scope, policy.AllowedScopes) {
		return nil, fmt.Errorf("%w: scope '%s' is not in the allowlist", ErrScopeNotAllowed, req.Scope)
	}

	if req.RequireTicket && !HasTicketReference(req.Justification) {
		return nil, fmt.Errorf("%w: justification must include a ticket reference (e.g. OPS-1234) when require_ticket is set",
			ErrMissingTicketReference)
	}

	return &ValidatedRequest{ElevationRequest: req}, nil
}

/* HasTicketReference reports whether text contains a recognized ticket token */
func HasTicketReference(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range ticketMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func scopeAllowed(scope string, allowed []string) bool {
	for _, s := range allowed {
		if s == scope {
			return true
		}
	}
	return false
}
