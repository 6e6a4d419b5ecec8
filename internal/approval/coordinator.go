/*-------------------------------------------------------------------------
 *
 * coordinator.go
 *    Approval resolution for pending elevation requests
 *
 * Single resolution path shared by both approval channels. The channels
 * authenticate their callers differently but must never diverge in how
 * a request is resolved, so all of steps lookup/verify/consume/execute
 * live here and only here.
 *
 * The ledger entry is consumed before the privileged grant executes.
 * This is what makes resolution at-most-once: of two concurrent callers
 * only one wins the consume, the other observes not-found. A failed
 * execution does not restore the entry; the request must be re-initiated
 * from scratch.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/approval/coordinator.go
 *
 *-------------------------------------------------------------------------
 */

package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/accessdesk/AccessAgent/internal/directory"
	"github.com/accessdesk/AccessAgent/internal/ledger"
	"github.com/accessdesk/AccessAgent/internal/metrics"
)

/* Resolution errors, matchable with errors.Is */
var (
	ErrNotFound         = errors.New("request not found")
	ErrTicketMismatch   = errors.New("ticket mismatch")
	ErrApproverMismatch = errors.New("only the recorded manager can approve this request")
	ErrExecutionFailed  = errors.New("grant execution failed")
)

/* Decision is a manager's verdict on a pending request */
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

/* StatusDenied marks a deny resolution */
const StatusDenied = "denied"

/* ParseDecision normalizes a caller-supplied decision string */
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(DecisionApprove):
		return DecisionApprove, nil
	case string(DecisionDeny):
		return DecisionDeny, nil
	default:
		return "", fmt.Errorf("invalid decision '%s': must be approve or deny", s)
	}
}

/* Resolution is the terminal outcome of a pending request */
type Resolution struct {
	Status    string                 `json:"status"`
	RequestID string                 `json:"request_id"`
	Ticket    string                 `json:"ticket"`
	Approver  string                 `json:"approver"`
	Result    *directory.GrantResult `json:"result,omitempty"`
}

/* GrantExecutor executes privileged grants against the directory */
type GrantExecutor interface {
	ExecuteGrant(ctx context.Context, p directory.GrantPayload) (*directory.GrantResult, error)
}

/* TicketCommenter posts best-effort closure comments */
type TicketCommenter interface {
	Comment(ctx context.Context, issueKey, body string) error
}

type Coordinator struct {
	ledger    *ledger.Ledger
	executor  GrantExecutor
	ticketing TicketCommenter
}

/* NewCoordinator creates the shared approval coordinator */
func NewCoordinator(l *ledger.Ledger, executor GrantExecutor, ticketing TicketCommenter) *Coordinator {
	return &Coordinator{
		ledger:    l,
		executor:  executor,
		ticketing: ticketing,
	}
}

/* Resolve applies a manager decision to a pending request.
 *
 * A deny does not verify the caller identity: possession of a channel
 * credential is sufficient to close a request, never to approve it.
 * Approval requires the recorded manager UPN, compared case-insensitively. */
func (c *Coordinator) Resolve(ctx context.Context, id, ticketClaim string, decision Decision, approverUPN string) (*Resolution, error) {
	entry, ok := c.ledger.Get(id)
	if !ok || entry.Kind != ledger.KindElevationGrant {
		return nil, fmt.Errorf("%w: id='%s'", ErrNotFound, id)
	}

	if entry.TicketKey != ticketClaim {
		return nil, fmt.Errorf("%w: request '%s' is not correlated with ticket '%s'", ErrTicketMismatch, id, ticketClaim)
	}

	if decision == DecisionApprove && !strings.EqualFold(approverUPN, entry.ManagerUPN) {
		return nil, fmt.Errorf("%w: approver='%s'", ErrApproverMismatch, approverUPN)
	}

	/* The consume must precede execution; losing the race reports the
	 * request as already gone. */
	entry, ok = c.ledger.Consume(id)
	if !ok {
		return nil, fmt.Errorf("%w: id='%s'", ErrNotFound, id)
	}

	ctx = metrics.WithLogContext(ctx, "", entry.ID, entry.TicketKey)

	if decision == DecisionDeny {
		c.comment(ctx, entry.TicketKey,
			fmt.Sprintf("Manager %s denied approval. Request %s closed.", approverUPN, entry.ID))
		metrics.InfoWithContext(ctx, "Elevation request denied", map[string]interface{}{
			"approver": approverUPN,
		})
		return &Resolution{
			Status:    StatusDenied,
			RequestID: entry.ID,
			Ticket:    entry.TicketKey,
			Approver:  approverUPN,
		}, nil
	}

	payload := directory.GrantPayload{
		PrincipalUPN:    entry.Payload.PrincipalUPN,
		Role:            entry.Payload.Role,
		Scope:           entry.Payload.Scope,
		DurationMinutes: entry.Payload.DurationMinutes,
		Justification:   entry.Payload.Justification,
		Simulate:        entry.Payload.Simulate,
	}

	result, err := c.executor.ExecuteGrant(ctx, payload)
	if err != nil {
		c.comment(ctx, entry.TicketKey, fmt.Sprintf("Error creating eligible assignment: %v", err))
		metrics.ErrorWithContext(ctx, "Grant execution failed after approval", err, map[string]interface{}{
			"approver": approverUPN,
		})
		return nil, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}

	detail := ""
	if pretty, jerr := json.MarshalIndent(result, "", "  "); jerr == nil {
		detail = "\n\nResult:\n" + string(pretty)
	}
	c.comment(ctx, entry.TicketKey,
		fmt.Sprintf("Approved by %s. Eligible assignment created.%s", approverUPN, detail))
	metrics.InfoWithContext(ctx, "Elevation request approved", map[string]interface{}{
		"approver": approverUPN,
		"status":   result.Status,
	})

	return &Resolution{
		Status:    result.Status,
		RequestID: entry.ID,
		Ticket:    entry.TicketKey,
		Approver:  approverUPN,
		Result:    result,
	}, nil
}

/* comment is best-effort; ticketing failure never changes the outcome */
func (c *Coordinator) comment(ctx context.Context, ticketKey, body string) {
	if err := c.ticketing.Comment(ctx, ticketKey, body); err != nil {
		metrics.WarnWithContext(ctx, "Ticket comment failed", map[string]interface{}{
			"ticket": ticketKey,
			"error":  err.Error(),
		})
	}
}
