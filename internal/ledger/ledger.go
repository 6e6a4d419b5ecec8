/*-------------------------------------------------------------------------
 *
 * ledger.go
 *    In-memory pending elevation request ledger
 *
 * Holds pending requests between intake and approval. Entries live until
 * they are consumed by a resolution or exceed the TTL; there is no
 * persistence and no background sweeper, expiry is applied lazily before
 * every read. All operations are safe under concurrent callers.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/ledger/ledger.go
 *
 *-------------------------------------------------------------------------
 */

package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/accessdesk/AccessAgent/internal/guardrail"
	"github.com/accessdesk/AccessAgent/internal/metrics"
)

/* KindElevationGrant is the only request kind currently recorded */
const KindElevationGrant = "elevation_grant"

/* PendingRequest is one awaiting-approval ledger entry. ManagerUPN is set
 * once at creation and is the only identity allowed to approve. */
type PendingRequest struct {
	ID         string                     `json:"request_id"`
	Kind       string                     `json:"kind"`
	TicketKey  string                     `json:"ticket"`
	ManagerUPN string                     `json:"manager_upn"`
	Payload    guardrail.ValidatedRequest `json:"payload"`
	CreatedAt  time.Time                  `json:"created_at"`
}

type Ledger struct {
	entries map[string]*PendingRequest
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

/* New creates a ledger with the given pending-request TTL */
func New(ttl time.Duration) *Ledger {
	return &Ledger{
		entries: make(map[string]*PendingRequest),
		ttl:     ttl,
		now:     time.Now,
	}
}

/* SetClock overrides the ledger clock; test use only */
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

/* Create stores a new pending request and returns its fresh identifier.
 * An identifier colliding with a live entry means the generator is
 * broken, which is not a recoverable condition. */
func (l *Ledger) Create(payload guardrail.ValidatedRequest, ticketKey, managerUPN string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()

	now := l.now()
	id := newRequestID(now)
	if _, exists := l.entries[id]; exists {
		panic(fmt.Sprintf("ledger: generated request id %q collides with a live entry", id))
	}

	l.entries[id] = &PendingRequest{
		ID:         id,
		Kind:       KindElevationGrant,
		TicketKey:  ticketKey,
		ManagerUPN: managerUPN,
		Payload:    payload,
		CreatedAt:  now,
	}
	metrics.SetPendingRequests(len(l.entries))
	return id
}

/* Get returns the pending request for id, or false if it is absent or
 * has exceeded the TTL. Expired entries are indistinguishable from
 * never-created ones. */
func (l *Ledger) Get(id string) (*PendingRequest, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()

	entry, ok := l.entries[id]
	if !ok {
		return nil, false
	}
	copied := *entry
	return &copied, true
}

/* Consume atomically removes and returns the entry for id. Exactly one
 * concurrent caller wins; every other caller sees false. */
func (l *Ledger) Consume(id string) (*PendingRequest, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()

	entry, ok := l.entries[id]
	if !ok {
		return nil, false
	}
	delete(l.entries, id)
	metrics.SetPendingRequests(len(l.entries))
	return entry, true
}

/* Remove deletes the entry for id if present; removing an absent id is a
 * no-op. */
func (l *Ledger) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, id)
	metrics.SetPendingRequests(len(l.entries))
}

/* SweepExpired drops every entry older than the TTL */
func (l *Ledger) SweepExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()
}

/* Len returns the current number of live entries */
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()
	return len(l.entries)
}

func (l *Ledger) sweepLocked() {
	now := l.now()
	expired := 0
	for id, entry := range l.entries {
		if now.Sub(entry.CreatedAt) > l.ttl {
			delete(l.entries, id)
			expired++
		}
	}
	if expired > 0 {
		metrics.RecordExpiredRequests(expired)
		metrics.SetPendingRequests(len(l.entries))
	}
}

/* newRequestID builds an opaque, collision-resistant request identifier */
func newRequestID(now time.Time) string {
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), uuid.NewString()[:6])
}
