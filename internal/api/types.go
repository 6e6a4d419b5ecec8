/*-------------------------------------------------------------------------
 *
 * types.go
 *    Request and response types for the AccessAgent API
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/api/types.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"github.com/accessdesk/AccessAgent/internal/guardrail"
	"github.com/accessdesk/AccessAgent/internal/intake"
)

/* ChatRequest is a free-text agent message with optional structured
 * context for the elevation flow */
type ChatRequest struct {
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

/* ChatResponse mirrors the conversational reply shape */
type ChatResponse struct {
	Reply     string      `json:"reply"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id"`
}

/* ElevationSubmission is the structured intake body */
type ElevationSubmission struct {
	guardrail.ElevationRequest
	ManagerUPN string `json:"manager_upn"`
}

/* ElevationResponse wraps the intake receipt */
type ElevationResponse struct {
	Reply string          `json:"reply"`
	Data  *intake.Receipt `json:"data"`
}

/* ApprovalBody is the programmatic approval webhook payload */
type ApprovalBody struct {
	RequestID   string `json:"request_id"`
	Ticket      string `json:"ticket"`
	ApproverUPN string `json:"approver_upn"`
	Approved    bool   `json:"approved"`
}

/* HealthResponse reports process and directory reachability */
type HealthResponse struct {
	OK       bool   `json:"ok"`
	GraphOK  bool   `json:"graph_ok"`
	Tenant   string `json:"tenant,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	Error    string `json:"error,omitempty"`
}
