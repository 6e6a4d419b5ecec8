/*-------------------------------------------------------------------------
 *
 * notify.go
 *    Approval prompt notifications
 *
 * Sends Slack and Teams approval prompts with clickable Approve/Deny
 * links. Delivery is always best-effort: an unconfigured or failing
 * webhook is reported as an outcome, never as an error, because chat
 * delivery is observability rather than correctness.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/notify/notify.go
 *
 *-------------------------------------------------------------------------
 */

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/accessdesk/AccessAgent/internal/metrics"
)

/* Links are the clickable approval URLs embedded in prompts */
type Links struct {
	ApproveURL string `json:"approve"`
	DenyURL    string `json:"deny"`
}

/* Delivery is the best-effort outcome of one prompt send */
type Delivery struct {
	Sent   bool   `json:"sent"`
	Status int    `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

/* Config holds webhook destinations and link-building settings */
type Config struct {
	SlackWebhookURL string
	TeamsWebhookURL string
	PublicBaseURL   string
	ClickToken      string
	Timeout         time.Duration
}

type Service struct {
	cfg        Config
	httpClient *http.Client
}

/* NewService creates a notification service */
func NewService(cfg Config) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

/* BuildApprovalLinks constructs the click-channel approve and deny URLs */
func (s *Service) BuildApprovalLinks(requestID, ticket, approverUPN string) Links {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/approvals/elevation/click"

	link := func(decision string) string {
		q := url.Values{}
		q.Set("token", s.cfg.ClickToken)
		q.Set("request_id", requestID)
		q.Set("ticket", ticket)
		q.Set("decision", decision)
		q.Set("approver_upn", approverUPN)
		return base + "?" + q.Encode()
	}

	return Links{ApproveURL: link("approve"), DenyURL: link("deny")}
}

/* SendSlackApproval posts a block-kit approval prompt to Slack */
func (s *Service) SendSlackApproval(ctx context.Context, requestID, ticket, title, details, approverUPN string) Delivery {
	if s.cfg.SlackWebhookURL == "" {
		return Delivery{Sent: false, Reason: "SLACK_WEBHOOK_URL not set"}
	}

	links := s.BuildApprovalLinks(requestID, ticket, approverUPN)
	payload := map[string]interface{}{
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]string{"type": "mrkdwn", "text": fmt.Sprintf("*%s*\n%s", title, details)},
			},
			{
				"type": "actions",
				"elements": []map[string]interface{}{
					{"type": "button", "text": map[string]string{"type": "plain_text", "text": "Approve"}, "url": links.ApproveURL},
					{"type": "button", "text": map[string]string{"type": "plain_text", "text": "Deny"}, "url": links.DenyURL},
				},
			},
		},
	}

	return s.deliver(ctx, "slack", s.cfg.SlackWebhookURL, payload)
}

/* SendTeamsApproval posts a MessageCard approval prompt to Teams */
func (s *Service) SendTeamsApproval(ctx context.Context, requestID, ticket, title, details, approverUPN string) Delivery {
	if s.cfg.TeamsWebhookURL == "" {
		return Delivery{Sent: false, Reason: "TEAMS_WEBHOOK_URL not set"}
	}

	links := s.BuildApprovalLinks(requestID, ticket, approverUPN)
	card := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"summary":    title,
		"themeColor": "0078D7",
		"title":      title,
		"text":       details,
		"potentialAction": []map[string]interface{}{
			{"@type": "OpenUri", "name": "Approve", "targets": []map[string]string{{"os": "default", "uri": links.ApproveURL}}},
			{"@type": "OpenUri", "name": "Deny", "targets": []map[string]string{{"os": "default", "uri": links.DenyURL}}},
		},
	}

	return s.deliver(ctx, "teams", s.cfg.TeamsWebhookURL, card)
}

func (s *Service) deliver(ctx context.Context, channel, webhookURL string, payload interface{}) Delivery {
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordNotification(channel, "error")
		return Delivery{Sent: false, Reason: fmt.Sprintf("payload serialization failed: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		metrics.RecordNotification(channel, "error")
		return Delivery{Sent: false, Reason: fmt.Sprintf("request creation failed: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.WarnWithContext(ctx, "Approval prompt delivery failed", map[string]interface{}{
			"channel": channel,
			"error":   err.Error(),
		})
		metrics.RecordNotification(channel, "error")
		return Delivery{Sent: false, Reason: err.Error()}
	}
	defer resp.Body.Close()

	sent := resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent
	if sent {
		metrics.RecordNotification(channel, "ok")
	} else {
		metrics.RecordNotification(channel, "rejected")
	}
	return Delivery{Sent: sent, Status: resp.StatusCode}
}
