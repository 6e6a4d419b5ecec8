/*-------------------------------------------------------------------------
 *
 * client.go
 *    HTTP client for the AccessAgent API
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/cli/pkg/client/client.go
 *
 *-------------------------------------------------------------------------
 */

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	secret     string
	httpClient *http.Client
}

/* ChatResult is the conversational reply envelope */
type ChatResult struct {
	Reply     string          `json:"reply"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"request_id"`
}

/* ElevationRequest is the structured intake body */
type ElevationRequest struct {
	PrincipalUPN    string `json:"principal_upn"`
	Role            string `json:"role_name_or_id"`
	Scope           string `json:"scope"`
	DurationMinutes int    `json:"duration_minutes"`
	Justification   string `json:"justification"`
	RequireTicket   bool   `json:"require_ticket"`
	Simulate        bool   `json:"simulate"`
	ManagerUPN      string `json:"manager_upn"`
}

/* Receipt is the intake response payload */
type Receipt struct {
	TicketKey  string `json:"ticket"`
	RequestID  string `json:"request_id"`
	ApproveURL string `json:"approve_url"`
	DenyURL    string `json:"deny_url"`
}

type elevationResponse struct {
	Reply string  `json:"reply"`
	Data  Receipt `json:"data"`
}

/* Resolution is the approval outcome payload */
type Resolution struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Ticket    string          `json:"ticket"`
	Approver  string          `json:"approver"`
	Result    json.RawMessage `json:"result,omitempty"`
}

/* Health is the server health payload */
type Health struct {
	OK       bool   `json:"ok"`
	GraphOK  bool   `json:"graph_ok"`
	Tenant   string `json:"tenant,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

func NewClient(baseURL, apiKey, approvalSecret string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		secret:  approvalSecret,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

/* Chat sends a free-text message to the agent endpoint */
func (c *Client) Chat(message string, context map[string]interface{}) (*ChatResult, error) {
	payload := map[string]interface{}{"message": message}
	if len(context) > 0 {
		payload["context"] = context
	}

	var result ChatResult
	if err := c.doJSON("POST", "/api/v1/agent", c.apiKey, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

/* SubmitElevation posts a structured elevation request */
func (c *Client) SubmitElevation(req ElevationRequest) (*Receipt, error) {
	var resp elevationResponse
	if err := c.doJSON("POST", "/api/v1/elevations", c.apiKey, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

/* Resolve applies a manager decision through the approval webhook */
func (c *Client) Resolve(requestID, ticket, approverUPN string, approved bool) (*Resolution, error) {
	payload := map[string]interface{}{
		"request_id":   requestID,
		"ticket":       ticket,
		"approver_upn": approverUPN,
		"approved":     approved,
	}

	var result Resolution
	if err := c.doJSON("POST", "/approvals/elevation", c.secret, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

/* Health fetches the server health report */
func (c *Client) Health() (*Health, error) {
	var result Health
	if err := c.doJSON("GET", "/health", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) doJSON(method, path, bearer string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s: %s (status %d)", apiErr.Error, apiErr.Message, resp.StatusCode)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
