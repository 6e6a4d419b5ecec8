/*-------------------------------------------------------------------------
 *
 * handlers.go
 *    API handlers for AccessAgent
 *
 * Provides HTTP handlers for the conversational agent endpoint, the
 * structured elevation intake, both approval channels, and health.
 *
 * The two approval channels authenticate differently (shared-secret
 * bearer for the webhook, static token query parameter for the click
 * links) but hand off to the same coordinator, so a request resolved on
 * one channel is gone on the other.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/api/handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/accessdesk/AccessAgent/internal/approval"
	"github.com/accessdesk/AccessAgent/internal/directory"
	"github.com/accessdesk/AccessAgent/internal/guardrail"
	"github.com/accessdesk/AccessAgent/internal/intake"
	"github.com/accessdesk/AccessAgent/internal/intent"
	"github.com/accessdesk/AccessAgent/internal/ledger"
	"github.com/accessdesk/AccessAgent/internal/lockout"
	"github.com/accessdesk/AccessAgent/internal/metrics"
	"github.com/accessdesk/AccessAgent/internal/validation"
)

const defaultChatDurationMinutes = 120

/* Request bodies are small; anything bigger is malformed or hostile */
const maxBodySize = 64 * 1024

/* TenantPinger verifies directory reachability */
type TenantPinger interface {
	Ping(ctx context.Context) (*directory.TenantInfo, error)
}

/* Resolver applies approval decisions */
type Resolver interface {
	Resolve(ctx context.Context, id, ticketClaim string, decision approval.Decision, approverUPN string) (*approval.Resolution, error)
}

/* LockoutChecker summarizes recent sign-in activity */
type LockoutChecker interface {
	Check(ctx context.Context, upn string, lookbackHours int, interactiveOnly bool) (*lockout.Summary, error)
}

/* Submitter runs elevation intake */
type Submitter interface {
	Submit(ctx context.Context, req guardrail.ElevationRequest, managerUPN string) (*intake.Receipt, error)
}

type Handlers struct {
	intake          Submitter
	resolver        Resolver
	lockout         LockoutChecker
	pinger          TenantPinger
	ledger          *ledger.Ledger
	approvalSecret  string
	clickToken      string
	defaultSimulate bool
}

func NewHandlers(intakeSvc Submitter, resolver Resolver, lockoutChecker LockoutChecker, pinger TenantPinger, l *ledger.Ledger, approvalSecret, clickToken string, defaultSimulate bool) *Handlers {
	return &Handlers{
		intake:          intakeSvc,
		resolver:        resolver,
		lockout:         lockoutChecker,
		pinger:          pinger,
		ledger:          l,
		approvalSecret:  approvalSecret,
		clickToken:      clickToken,
		defaultSimulate: defaultSimulate,
	}
}

/* Health reports liveness plus directory reachability for triage */
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{OK: true}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if info, err := h.pinger.Ping(ctx); err != nil {
		resp.Error = err.Error()
	} else {
		resp.GraphOK = true
		resp.Tenant = info.TenantDisplayName
		resp.TenantID = info.TenantID
	}

	respondJSON(w, http.StatusOK, resp)
}

/* Chat routes a free-text agent message to the matching operation */
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, r.URL.Path, r.Method, nil))
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "chat request parsing failed", err, requestID, r.URL.Path, r.Method, map[string]interface{}{
			"body_size": len(bodyBytes),
		}))
		return
	}

	h.ledger.SweepExpired()

	switch intent.Classify(req.Message) {
	case intent.ActionLockout:
		h.chatLockout(w, r, req, requestID)
	case intent.ActionPing:
		h.chatPing(w, r, requestID)
	case intent.ActionElevation:
		h.chatElevation(w, r, req, requestID)
	default:
		respondJSON(w, http.StatusOK, ChatResponse{Reply: intent.HelpText, RequestID: requestID})
	}
}

func (h *Handlers) chatLockout(w http.ResponseWriter, r *http.Request, req ChatRequest, requestID string) {
	upn := intent.ExtractUPN(req.Message)
	if upn == "" {
		respondJSON(w, http.StatusOK, ChatResponse{
			Reply:     "Need a user UPN. Try: check lockout for alice@contoso.com",
			RequestID: requestID,
		})
		return
	}

	summary, err := h.lockout.Check(r.Context(), upn, 24, true)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "lockout check failed", err, requestID, r.URL.Path, r.Method, map[string]interface{}{
			"upn": upn,
		}))
		return
	}

	reply := fmt.Sprintf("Sign-in status for %s: %s. Failures=%d Successes=%d.",
		upn, summary.Status, summary.FailureCount, summary.SuccessCount)
	respondJSON(w, http.StatusOK, ChatResponse{Reply: reply, Data: summary, RequestID: requestID})
}

func (h *Handlers) chatPing(w http.ResponseWriter, r *http.Request, requestID string) {
	info, err := h.pinger.Ping(r.Context())
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "tenant ping failed", err, requestID, r.URL.Path, r.Method, nil))
		return
	}

	reply := fmt.Sprintf("Tenant: %s (%s).", info.TenantDisplayName, info.TenantID)
	respondJSON(w, http.StatusOK, ChatResponse{Reply: reply, Data: info, RequestID: requestID})
}

func (h *Handlers) chatElevation(w http.ResponseWriter, r *http.Request, req ChatRequest, requestID string) {
	fields := req.Context
	if fields == nil {
		fields = map[string]interface{}{}
	}

	upn := intent.ExtractUPN(req.Message)
	role := stringField(fields, "role_name_or_id")
	if role == "" {
		role = stringField(fields, "role_id")
	}
	managerUPN := stringField(fields, "manager_upn")

	var missing []string
	if upn == "" {
		missing = append(missing, "user upn in message")
	}
	if role == "" {
		missing = append(missing, "role_name_or_id (or role_id)")
	}
	if managerUPN == "" {
		missing = append(missing, "manager_upn")
	}
	if len(missing) > 0 {
		respondJSON(w, http.StatusOK, ChatResponse{
			Reply: "Missing: " + strings.Join(missing, ", ") +
				". Include role_name_or_id (or role_id), scope, duration_minutes, manager_upn, justification in context.",
			RequestID: requestID,
		})
		return
	}

	elevation := guardrail.ElevationRequest{
		PrincipalUPN:    upn,
		Role:            role,
		Scope:           stringFieldDefault(fields, "scope", "/"),
		DurationMinutes: intFieldDefault(fields, "duration_minutes", defaultChatDurationMinutes),
		Justification:   stringFieldDefault(fields, "justification", "PIM eligibility requested by manager"),
		RequireTicket:   true,
		Simulate:        boolFieldDefault(fields, "simulate", h.defaultSimulate),
	}

	receipt, err := h.intake.Submit(r.Context(), elevation, managerUPN)
	if err != nil {
		h.respondIntakeError(w, r, err, requestID)
		return
	}

	reply := fmt.Sprintf("PIM ticket %s created. Waiting for manager approval. "+
		"Use Approve/Deny buttons in Slack/Teams if configured, or call /approvals/elevation.", receipt.TicketKey)
	respondJSON(w, http.StatusOK, ChatResponse{Reply: reply, Data: receipt, RequestID: requestID})
}

/* SubmitElevation is the structured intake endpoint */
func (h *Handlers) SubmitElevation(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, r.URL.Path, r.Method, nil))
		return
	}

	var req ElevationSubmission
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "elevation request parsing failed", err, requestID, r.URL.Path, r.Method, map[string]interface{}{
			"body_size": len(bodyBytes),
		}))
		return
	}

	if err := validateSubmission(&req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "elevation request validation failed", err, requestID, r.URL.Path, r.Method, nil))
		return
	}

	receipt, err := h.intake.Submit(r.Context(), req.ElevationRequest, req.ManagerUPN)
	if err != nil {
		h.respondIntakeError(w, r, err, requestID)
		return
	}

	reply := fmt.Sprintf("Ticket %s created. Request %s pending approval.", receipt.TicketKey, receipt.RequestID)
	respondJSON(w, http.StatusCreated, ElevationResponse{Reply: reply, Data: receipt})
}

func validateSubmission(req *ElevationSubmission) error {
	req.PrincipalUPN = validation.NormalizeUPN(req.PrincipalUPN)
	req.ManagerUPN = validation.NormalizeUPN(req.ManagerUPN)
	if err := validation.ValidateUPN(req.PrincipalUPN, "principal_upn"); err != nil {
		return err
	}
	if err := validation.ValidateUPN(req.ManagerUPN, "manager_upn"); err != nil {
		return err
	}
	if err := validation.ValidateRequired(req.Role, "role_name_or_id"); err != nil {
		return err
	}
	return validation.ValidateMaxLength(req.Justification, "justification", 2048)
}

func (h *Handlers) respondIntakeError(w http.ResponseWriter, r *http.Request, err error, requestID string) {
	status := http.StatusBadRequest
	message := "elevation request rejected"
	if errors.Is(err, intake.ErrTicketingUnavailable) {
		status = http.StatusBadGateway
		message = "failed to create ticket"
	}
	respondError(w, NewErrorWithContext(status, message, err, requestID, r.URL.Path, r.Method, nil))
}

/* ResolveWebhook is the programmatic approval channel. The caller holds
 * the approval shared secret; the approver identity travels in the body. */
func (h *Handlers) ResolveWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	secret, ok := bearerToken(r)
	if !ok || subtle.ConstantTimeCompare([]byte(secret), []byte(h.approvalSecret)) != 1 {
		metrics.RecordResolution("webhook", "unknown", "unauthorized")
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return
	}

	var body ApprovalBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "approval body parsing failed", err, requestID, r.URL.Path, r.Method, nil))
		return
	}

	decision := approval.DecisionDeny
	if body.Approved {
		decision = approval.DecisionApprove
	}

	h.resolve(w, r, "webhook", body.RequestID, body.Ticket, decision, body.ApproverUPN, requestID)
}

/* ResolveClick is the link-based approval channel backing the Slack and
 * Teams buttons. Unlike the webhook, clicks verify the approver identity
 * for denials too: the identity is baked into the link, and an anonymous
 * token-holder should not be able to close someone else's request. */
func (h *Handlers) ResolveClick(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	q := r.URL.Query()

	if subtle.ConstantTimeCompare([]byte(q.Get("token")), []byte(h.clickToken)) != 1 {
		metrics.RecordResolution("click", "unknown", "unauthorized")
		respondError(w, WrapError(NewError(http.StatusUnauthorized, "unauthorized click token", nil), requestID))
		return
	}

	decision, err := approval.ParseDecision(q.Get("decision"))
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "invalid decision", err, requestID, r.URL.Path, r.Method, nil))
		return
	}

	id := q.Get("request_id")
	approverUPN := q.Get("approver_upn")

	if entry, ok := h.ledger.Get(id); ok && !strings.EqualFold(approverUPN, entry.ManagerUPN) {
		metrics.RecordResolution("click", string(decision), "approver_mismatch")
		respondError(w, NewErrorWithContext(http.StatusForbidden, "only the recorded manager can approve/deny this request", nil, requestID, r.URL.Path, r.Method, nil))
		return
	}

	h.resolve(w, r, "click", id, q.Get("ticket"), decision, approverUPN, requestID)
}

func (h *Handlers) resolve(w http.ResponseWriter, r *http.Request, channel, id, ticket string, decision approval.Decision, approverUPN, requestID string) {
	res, err := h.resolver.Resolve(r.Context(), id, ticket, decision, approverUPN)
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrNotFound):
			metrics.RecordResolution(channel, string(decision), "not_found")
			respondError(w, WrapError(NewError(http.StatusNotFound, "request not found or type mismatch", err), requestID))
		case errors.Is(err, approval.ErrTicketMismatch):
			metrics.RecordResolution(channel, string(decision), "ticket_mismatch")
			respondError(w, NewErrorWithContext(http.StatusBadRequest, "ticket mismatch", err, requestID, r.URL.Path, r.Method, nil))
		case errors.Is(err, approval.ErrApproverMismatch):
			metrics.RecordResolution(channel, string(decision), "approver_mismatch")
			respondError(w, NewErrorWithContext(http.StatusForbidden, "only the recorded manager can approve this request", err, requestID, r.URL.Path, r.Method, nil))
		case errors.Is(err, approval.ErrExecutionFailed):
			metrics.RecordResolution(channel, string(decision), "execution_failed")
			respondError(w, NewErrorWithContext(http.StatusBadRequest, "error creating eligible assignment", err, requestID, r.URL.Path, r.Method, nil))
		default:
			metrics.RecordResolution(channel, string(decision), "error")
			respondError(w, NewErrorWithContext(http.StatusInternalServerError, "approval resolution failed", err, requestID, r.URL.Path, r.Method, nil))
		}
		return
	}

	metrics.RecordResolution(channel, string(decision), res.Status)
	respondJSON(w, http.StatusOK, res)
}

/* context map accessors; chat context values arrive as JSON primitives */

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func stringFieldDefault(m map[string]interface{}, key, def string) string {
	if s := stringField(m, key); s != "" {
		return s
	}
	return def
}

func intFieldDefault(m map[string]interface{}, key string, def int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func boolFieldDefault(m map[string]interface{}, key string, def bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}
