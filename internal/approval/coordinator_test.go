/*-------------------------------------------------------------------------
 *
 * coordinator_test.go
 *    Tests for approval resolution
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/approval/coordinator_test.go
 *
 *-------------------------------------------------------------------------
 */

package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/accessdesk/AccessAgent/internal/directory"
	"github.com/accessdesk/AccessAgent/internal/guardrail"
	"github.com/accessdesk/AccessAgent/internal/ledger"
)

type fakeExecutor struct {
	mu       sync.Mutex
	calls    int32
	err      error
	payloads []directory.GrantPayload
}

func (f *fakeExecutor) ExecuteGrant(_ context.Context, p directory.GrantPayload) (*directory.GrantResult, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &directory.GrantResult{
		Status:          directory.StatusEligibleCreated,
		RequestID:       "sched-req-1",
		Scope:           p.Scope,
		DurationMinutes: p.DurationMinutes,
	}, nil
}

type fakeTicketer struct {
	mu       sync.Mutex
	comments []string
	err      error
}

func (f *fakeTicketer) Comment(_ context.Context, key, body string) error {
	f.mu.Lock()
	f.comments = append(f.comments, key+": "+body)
	f.mu.Unlock()
	return f.err
}

func pendingRequest(t *testing.T, l *ledger.Ledger) string {
	t.Helper()
	payload := guardrail.ValidatedRequest{
		ElevationRequest: guardrail.ElevationRequest{
			PrincipalUPN:    "alice@contoso.com",
			Role:            "Global Reader",
			Scope:           "/",
			DurationMinutes: 60,
			Justification:   "OPS-1: patching prod",
		},
	}
	return l.Create(payload, "OPS-1", "boss@contoso.com")
}

func TestResolveApprove(t *testing.T) {
	l := ledger.New(30 * time.Minute)
	exec := &fakeExecutor{}
	tick := &fakeTicketer{}
	c := NewCoordinator(l, exec, tick)

	id := pendingRequest(t, l)

	res, err := c.Resolve(context.Background(), id, "OPS-1", DecisionApprove, "BOSS@contoso.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Status != directory.StatusEligibleCreated {
		t.Errorf("Status = %q, want %q", res.Status, directory.StatusEligibleCreated)
	}
	if res.Result == nil || res.Result.RequestID != "sched-req-1" {
		t.Errorf("Result = %+v, want schedule request id sched-req-1", res.Result)
	}
	if exec.calls != 1 {
		t.Errorf("executor calls = %d, want 1", exec.calls)
	}
	if exec.payloads[0].PrincipalUPN != "alice@contoso.com" || exec.payloads[0].DurationMinutes != 60 {
		t.Errorf("unexpected grant payload: %+v", exec.payloads[0])
	}
	if l.Len() != 0 {
		t.Errorf("ledger still holds %d entries after resolution", l.Len())
	}
	if len(tick.comments) != 1 || !strings.Contains(tick.comments[0], "Approved by") {
		t.Errorf("comments = %v, want a single approval comment", tick.comments)
	}

	/* second delivery of the same approval must not re-execute */
	if _, err := c.Resolve(context.Background(), id, "OPS-1", DecisionApprove, "boss@contoso.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Resolve() error = %v, want ErrNotFound", err)
	}
	if exec.calls != 1 {
		t.Errorf("executor calls after replay = %d, want 1", exec.calls)
	}
}

func TestResolveDeny(t *testing.T) {
	l := ledger.New(30 * time.Minute)
	exec := &fakeExecutor{}
	tick := &fakeTicketer{}
	c := NewCoordinator(l, exec, tick)

	id := pendingRequest(t, l)

	/* deny does not check the caller against the recorded manager */
	res, err := c.Resolve(context.Background(), id, "OPS-1", DecisionDeny, "someone-else@contoso.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Status != StatusDenied {
		t.Errorf("Status = %q, want %q", res.Status, StatusDenied)
	}
	if exec.calls != 0 {
		t.Errorf("executor calls = %d, want 0 on deny", exec.calls)
	}
	if l.Len() != 0 {
		t.Errorf("ledger still holds %d entries after deny", l.Len())
	}
	if len(tick.comments) != 1 || !strings.Contains(tick.comments[0], "denied approval") {
		t.Errorf("comments = %v, want a single denial comment", tick.comments)
	}
}

func TestResolveGuards(t *testing.T) {
	l := ledger.New(30 * time.Minute)
	exec := &fakeExecutor{}
	tick := &fakeTicketer{}
	c := NewCoordinator(l, exec, tick)

	id := pendingRequest(t, l)

	tests := []struct {
		name     string
		id       string
		ticket   string
		decision Decision
		approver string
		wantErr  error
	}{
		{"unknown id", "req_0_abc123", "OPS-1", DecisionApprove, "boss@contoso.com", ErrNotFound},
		{"ticket mismatch", id, "OPS-999", DecisionApprove, "boss@contoso.com", ErrTicketMismatch},
		{"wrong approver", id, "OPS-1", DecisionApprove, "intruder@contoso.com", ErrApproverMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Resolve(context.Background(), tt.id, tt.ticket, tt.decision, tt.approver)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if exec.calls != 0 {
		t.Errorf("executor calls = %d, want 0 after rejected resolutions", exec.calls)
	}
	if _, ok := l.Get(id); !ok {
		t.Error("rejected resolutions must leave the entry pending")
	}
}

func TestResolveExecutionFailure(t *testing.T) {
	l := ledger.New(30 * time.Minute)
	exec := &fakeExecutor{err: fmt.Errorf("graph request failed: status=403")}
	tick := &fakeTicketer{}
	c := NewCoordinator(l, exec, tick)

	id := pendingRequest(t, l)

	_, err := c.Resolve(context.Background(), id, "OPS-1", DecisionApprove, "boss@contoso.com")
	if !errors.Is(err, ErrExecutionFailed) {
		t.Fatalf("Resolve() error = %v, want ErrExecutionFailed", err)
	}

	/* the entry is consumed even though execution failed */
	if _, ok := l.Get(id); ok {
		t.Error("entry must not be restored after a failed execution")
	}
	if len(tick.comments) != 1 || !strings.Contains(tick.comments[0], "Error creating eligible assignment") {
		t.Errorf("comments = %v, want a single failure comment", tick.comments)
	}
}

func TestResolveConcurrentApprovals(t *testing.T) {
	l := ledger.New(30 * time.Minute)
	exec := &fakeExecutor{}
	tick := &fakeTicketer{}
	c := NewCoordinator(l, exec, tick)

	id := pendingRequest(t, l)

	const callers = 16
	var wg sync.WaitGroup
	var wins, misses int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Resolve(context.Background(), id, "OPS-1", DecisionApprove, "boss@contoso.com")
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, ErrNotFound):
				atomic.AddInt32(&misses, 1)
			default:
				t.Errorf("unexpected Resolve() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("winning resolutions = %d, want exactly 1", wins)
	}
	if misses != callers-1 {
		t.Errorf("not-found resolutions = %d, want %d", misses, callers-1)
	}
	if exec.calls != 1 {
		t.Errorf("executor calls = %d, want exactly 1", exec.calls)
	}
}

func TestResolveTicketCommentFailureIsBestEffort(t *testing.T) {
	l := ledger.New(30 * time.Minute)
	exec := &fakeExecutor{}
	tick := &fakeTicketer{err: fmt.Errorf("jira unreachable")}
	c := NewCoordinator(l, exec, tick)

	id := pendingRequest(t, l)

	res, err := c.Resolve(context.Background(), id, "OPS-1", DecisionApprove, "boss@contoso.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want comment failure swallowed", err)
	}
	if res.Status != directory.StatusEligibleCreated {
		t.Errorf("Status = %q, want %q", res.Status, directory.StatusEligibleCreated)
	}
}

func TestParseDecision(t *testing.T) {
	if d, err := ParseDecision(" Approve "); err != nil || d != DecisionApprove {
		t.Errorf("ParseDecision(Approve) = %v, %v", d, err)
	}
	if d, err := ParseDecision("DENY"); err != nil || d != DecisionDeny {
		t.Errorf("ParseDecision(DENY) = %v, %v", d, err)
	}
	if _, err := ParseDecision("maybe"); err == nil {
		t.Error("ParseDecision(maybe) should fail")
	}
}
