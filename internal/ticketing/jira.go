/*-------------------------------------------------------------------------
 *
 * jira.go
 *    Jira ticketing client with mock mode
 *
 * Creates and comments on issues correlated 1:1 with elevation requests.
 * Mock mode (the default) fabricates issue keys and logs instead of
 * calling out, so the whole pipeline runs without a Jira instance.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/ticketing/jira.go
 *
 *-------------------------------------------------------------------------
 */

package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/accessdesk/AccessAgent/internal/metrics"
)

/* Issue is a created ticket reference */
type Issue struct {
	Key  string `json:"key"`
	ID   string `json:"id"`
	Mock bool   `json:"mock,omitempty"`
}

/* Config holds the Jira connection settings */
type Config struct {
	BaseURL    string
	User       string
	Token      string
	Project    string
	AssigneeID string
	Mock       bool
	Timeout    time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

/* NewClient creates a ticketing client from config */
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

/* CreateIssue opens a ticket and returns its key */
func (c *Client) CreateIssue(ctx context.Context, summary, description, issueType string, labels []string) (*Issue, error) {
	if c.cfg.Mock {
		key := fmt.Sprintf("MOCK-%s", uuid.NewString()[:8])
		metrics.InfoWithContext(ctx, "Mock issue created", map[string]interface{}{
			"key":     key,
			"summary": summary,
		})
		metrics.RecordTicketOperation("create", "mock")
		return &Issue{Key: key, ID: key, Mock: true}, nil
	}

	fields := map[string]interface{}{
		"project":   map[string]string{"key": c.cfg.Project},
		"summary":   summary,
		"issuetype": map[string]string{"name": issueType},
		"description": description,
	}
	if len(labels) > 0 {
		fields["labels"] = labels
	}
	if c.cfg.AssigneeID != "" {
		fields["assignee"] = map[string]string{"id": c.cfg.AssigneeID}
	}

	var created Issue
	if err := c.post(ctx, "/rest/api/3/issue", map[string]interface{}{"fields": fields}, &created); err != nil {
		metrics.RecordTicketOperation("create", "error")
		return nil, fmt.Errorf("issue creation failed: %w", err)
	}
	metrics.RecordTicketOperation("create", "ok")
	return &created, nil
}

/* Comment adds a comment to an existing issue */
func (c *Client) Comment(ctx context.Context, issueKey, body string) error {
	if c.cfg.Mock {
		preview := body
		if len(preview) > 60 {
			preview = preview[:60]
		}
		metrics.InfoWithContext(ctx, "Mock issue comment added", map[string]interface{}{
			"key":     issueKey,
			"preview": preview,
		})
		metrics.RecordTicketOperation("comment", "mock")
		return nil
	}

	path := fmt.Sprintf("/rest/api/3/issue/%s/comment", issueKey)
	if err := c.post(ctx, path, map[string]string{"body": body}, nil); err != nil {
		metrics.RecordTicketOperation("comment", "error")
		return fmt.Errorf("issue comment failed: key='%s', error=%w", issueKey, err)
	}
	metrics.RecordTicketOperation("comment", "ok")
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	if c.cfg.BaseURL == "" || c.cfg.User == "" || c.cfg.Token == "" {
		return fmt.Errorf("missing JIRA_BASE, JIRA_USER, or JIRA_TOKEN")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("payload serialization failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.User, c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("jira error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("response decoding failed: %w", err)
		}
	}
	return nil
}
