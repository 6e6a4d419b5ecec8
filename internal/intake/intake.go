/*-------------------------------------------------------------------------
 *
 * intake.go
 *    Elevation request intake
 *
 * Validates an elevation request against the guardrail policy, opens a
 * correlation ticket, records the pending request, and pushes approval
 * prompts to the configured channels. Ticket creation is the one hard
 * dependency: a request with no ticket is never recorded. Notification
 * delivery is best effort and reported back in the receipt.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/intake/intake.go
 *
 *-------------------------------------------------------------------------
 */

package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/accessdesk/AccessAgent/internal/guardrail"
	"github.com/accessdesk/AccessAgent/internal/ledger"
	"github.com/accessdesk/AccessAgent/internal/metrics"
	"github.com/accessdesk/AccessAgent/internal/notify"
	"github.com/accessdesk/AccessAgent/internal/ticketing"
)

/* ErrTicketingUnavailable marks a failed ticket creation; the request is
 * not recorded when this is returned. */
var ErrTicketingUnavailable = errors.New("ticketing unavailable")

/* ErrMissingManager is returned when no manager identity accompanies the
 * request; without one nobody could ever approve it. */
var ErrMissingManager = errors.New("manager_upn is required")

/* NotifyOutcome reports per-channel prompt delivery */
type NotifyOutcome struct {
	Slack notify.Delivery `json:"slack"`
	Teams notify.Delivery `json:"teams"`
}

/* Receipt is what the requester gets back at intake */
type Receipt struct {
	TicketKey  string        `json:"ticket"`
	RequestID  string        `json:"request_id"`
	ApproveURL string        `json:"approve_url"`
	DenyURL    string        `json:"deny_url"`
	Notify     NotifyOutcome `json:"notify"`
}

/* TicketCreator opens correlation tickets */
type TicketCreator interface {
	CreateIssue(ctx context.Context, summary, description, issueType string, labels []string) (*ticketing.Issue, error)
}

/* Notifier pushes approval prompts and builds click links */
type Notifier interface {
	BuildApprovalLinks(requestID, ticket, approverUPN string) notify.Links
	SendSlackApproval(ctx context.Context, requestID, ticket, title, details, approverUPN string) notify.Delivery
	SendTeamsApproval(ctx context.Context, requestID, ticket, title, details, approverUPN string) notify.Delivery
}

type Service struct {
	policy    guardrail.Policy
	ledger    *ledger.Ledger
	ticketing TicketCreator
	notifier  Notifier
}

func NewService(policy guardrail.Policy, l *ledger.Ledger, ticketing TicketCreator, notifier Notifier) *Service {
	return &Service{
		policy:    policy,
		ledger:    l,
		ticketing: ticketing,
		notifier:  notifier,
	}
}

/* Submit runs the full intake sequence for one elevation request */
func (s *Service) Submit(ctx context.Context, req guardrail.ElevationRequest, managerUPN string) (*Receipt, error) {
	if managerUPN == "" {
		return nil, ErrMissingManager
	}

	validated, err := guardrail.Validate(req, s.policy)
	if err != nil {
		metrics.RecordIntake("rejected")
		return nil, err
	}

	summary := fmt.Sprintf("[PIM Request] %s → %s for %dm (Scope %s)",
		req.PrincipalUPN, req.Role, req.DurationMinutes, req.Scope)
	description := fmt.Sprintf(
		"*Manager*: %s\n*User*: %s\n*Requested Role*: %s\n*Scope*: %s\n*Duration*: %d minutes\n*Justification*: %s\n\n"+
			"Plan:\n"+
			"1) On approval, create ELIGIBLE PIM assignment (time-boxed)\n"+
			"2) Comment assignment result back to this ticket\n"+
			"3) Activation follows PIM role settings (MFA/approval/ticket enforced)",
		managerUPN, req.PrincipalUPN, req.Role, req.Scope, req.DurationMinutes, req.Justification)

	issue, err := s.ticketing.CreateIssue(ctx, summary, description, "Task", []string{"PIM", "IDENTITY", "APPROVAL_REQUIRED"})
	if err != nil {
		metrics.RecordIntake("ticketing_failed")
		return nil, fmt.Errorf("%w: %v", ErrTicketingUnavailable, err)
	}

	/* Prefix the justification with the ticket key so the grant audit
	 * trail carries the correlation. */
	validated.Justification = fmt.Sprintf("%s: %s", issue.Key, validated.Justification)

	requestID := s.ledger.Create(*validated, issue.Key, managerUPN)
	ctx = metrics.WithLogContext(ctx, "", requestID, issue.Key)

	title := fmt.Sprintf("PIM approval needed for %s", req.PrincipalUPN)
	details := fmt.Sprintf("Role: %s\nScope: %s\nDuration: %dm\nTicket: %s\nManager: %s",
		req.Role, req.Scope, req.DurationMinutes, issue.Key, managerUPN)

	outcome := NotifyOutcome{
		Slack: s.notifier.SendSlackApproval(ctx, requestID, issue.Key, title, details, managerUPN),
		Teams: s.notifier.SendTeamsApproval(ctx, requestID, issue.Key, title, details, managerUPN),
	}
	links := s.notifier.BuildApprovalLinks(requestID, issue.Key, managerUPN)

	metrics.RecordIntake("accepted")
	metrics.InfoWithContext(ctx, "Elevation request recorded", map[string]interface{}{
		"principal": req.PrincipalUPN,
		"role":      req.Role,
		"manager":   managerUPN,
		"duration":  req.DurationMinutes,
	})

	return &Receipt{
		TicketKey:  issue.Key,
		RequestID:  requestID,
		ApproveURL: links.ApproveURL,
		DenyURL:    links.DenyURL,
		Notify:     outcome,
	}, nil
}
