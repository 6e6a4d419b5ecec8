/*-------------------------------------------------------------------------
 *
 * grant.go
 *    Privileged grant execution
 *
 * Builds and submits role-eligibility schedule requests. Simulated
 * payloads never reach the wire; they produce a deterministic fabricated
 * plan so the full approval pipeline can run without side effects.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/directory/grant.go
 *
 *-------------------------------------------------------------------------
 */

package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/accessdesk/AccessAgent/internal/metrics"
)

const eligibilityEndpoint = "/roleManagement/directory/roleEligibilityScheduleRequests"

/* Fabricated identifiers returned by simulated executions */
const (
	simulatedPrincipalID = "00000000-0000-0000-0000-FAKEUSERID0001"
	simulatedRoleDefID   = "00000000-0000-0000-0000-FAKEROLEID0001"
)

/* Grant execution statuses */
const (
	StatusEligibleCreated  = "eligible_created"
	StatusDryRunSimulated  = "dry_run_simulated"
)

/* GrantPayload is the validated execution payload stored in the ledger */
type GrantPayload struct {
	PrincipalUPN    string `json:"principal_upn"`
	Role            string `json:"role_name_or_id"`
	Scope           string `json:"scope"`
	DurationMinutes int    `json:"duration_minutes"`
	Justification   string `json:"justification"`
	Simulate        bool   `json:"simulate"`
}

/* GrantPlan is the request that would be (or was) submitted */
type GrantPlan struct {
	Endpoint string                 `json:"endpoint"`
	Body     map[string]interface{} `json:"body"`
}

/* GrantResult is the outcome of a grant execution */
type GrantResult struct {
	Status           string     `json:"status"`
	RequestID        string     `json:"request_id,omitempty"`
	PrincipalID      string     `json:"principal_id"`
	RoleDefinitionID string     `json:"role_definition_id"`
	Scope            string     `json:"scope"`
	DurationMinutes  int        `json:"duration_minutes"`
	Plan             *GrantPlan `json:"plan,omitempty"`
}

/* ExecuteGrant creates a time-boxed eligible assignment for the payload.
 * Simulate mode fabricates identifiers and returns the plan without any
 * directory call. */
func (c *Client) ExecuteGrant(ctx context.Context, p GrantPayload) (*GrantResult, error) {
	start := time.Now()

	if p.Simulate {
		plan := buildPlan(p, simulatedPrincipalID, simulatedRoleDefID)
		metrics.RecordGrantExecution("simulate", "ok", time.Since(start))
		return &GrantResult{
			Status:           StatusDryRunSimulated,
			PrincipalID:      simulatedPrincipalID,
			RoleDefinitionID: simulatedRoleDefID,
			Scope:            p.Scope,
			DurationMinutes:  p.DurationMinutes,
			Plan:             &plan,
		}, nil
	}

	principalID, err := c.lookupUserID(ctx, p.PrincipalUPN)
	if err != nil {
		metrics.RecordGrantExecution("live", "error", time.Since(start))
		return nil, err
	}
	roleDefID, err := c.resolveRoleDefinitionID(ctx, p.Role)
	if err != nil {
		metrics.RecordGrantExecution("live", "error", time.Since(start))
		return nil, err
	}

	plan := buildPlan(p, principalID, roleDefID)
	body, err := json.Marshal(plan.Body)
	if err != nil {
		metrics.RecordGrantExecution("live", "error", time.Since(start))
		return nil, fmt.Errorf("grant request serialization failed: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "POST", eligibilityEndpoint, bytes.NewReader(body), &created); err != nil {
		metrics.RecordGrantExecution("live", "error", time.Since(start))
		return nil, fmt.Errorf("grant creation failed: %w", err)
	}

	metrics.RecordGrantExecution("live", "ok", time.Since(start))
	return &GrantResult{
		Status:           StatusEligibleCreated,
		RequestID:        created.ID,
		PrincipalID:      principalID,
		RoleDefinitionID: roleDefID,
		Scope:            p.Scope,
		DurationMinutes:  p.DurationMinutes,
	}, nil
}

func buildPlan(p GrantPayload, principalID, roleDefID string) GrantPlan {
	return GrantPlan{
		Endpoint: eligibilityEndpoint,
		Body: map[string]interface{}{
			"action":           "adminAssign",
			"justification":    p.Justification,
			"principalId":      principalID,
			"roleDefinitionId": roleDefID,
			"directoryScopeId": p.Scope,
			"scheduleInfo": map[string]interface{}{
				"startDateTime": nil,
				"expiration": map[string]interface{}{
					"type":     "afterDuration",
					"duration": fmt.Sprintf("PT%dM", p.DurationMinutes),
				},
			},
		},
	}
}
