/*-------------------------------------------------------------------------
 *
 * notify_test.go
 *    Tests for notify package
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 *-------------------------------------------------------------------------
 */

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestBuildApprovalLinks(t *testing.T) {
	s := NewService(Config{
		PublicBaseURL: "https://agent.contoso.com/",
		ClickToken:    "clicksecret",
	})

	links := s.BuildApprovalLinks("req_1_abc123", "OPS-7", "mgr@contoso.com")

	for _, tc := range []struct {
		name     string
		link     string
		decision string
	}{
		{"approve", links.ApproveURL, "approve"},
		{"deny", links.DenyURL, "deny"},
	} {
		u, err := url.Parse(tc.link)
		if err != nil {
			t.Fatalf("%s link does not parse: %v", tc.name, err)
		}
		if u.Path != "/approvals/elevation/click" {
			t.Errorf("%s link path = %q", tc.name, u.Path)
		}
		q := u.Query()
		if q.Get("token") != "clicksecret" ||
			q.Get("request_id") != "req_1_abc123" ||
			q.Get("ticket") != "OPS-7" ||
			q.Get("decision") != tc.decision ||
			q.Get("approver_upn") != "mgr@contoso.com" {
			t.Errorf("%s link query = %v", tc.name, q)
		}
	}
}

func TestSendSlackApproval(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewService(Config{
		SlackWebhookURL: srv.URL,
		PublicBaseURL:   "http://127.0.0.1:8001",
		ClickToken:      "clicksecret",
	})

	d := s.SendSlackApproval(context.Background(), "req_1", "OPS-7", "PIM approval needed", "details", "mgr@contoso.com")
	if !d.Sent {
		t.Fatalf("delivery = %+v, want sent", d)
	}
	blocks, _ := payload["blocks"].([]interface{})
	if len(blocks) != 2 {
		t.Fatalf("slack payload has %d blocks, want 2", len(blocks))
	}
}

func TestSendTeamsApproval(t *testing.T) {
	var card map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&card)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewService(Config{
		TeamsWebhookURL: srv.URL,
		PublicBaseURL:   "http://127.0.0.1:8001",
		ClickToken:      "clicksecret",
	})

	d := s.SendTeamsApproval(context.Background(), "req_1", "OPS-7", "PIM approval needed", "details", "mgr@contoso.com")
	if !d.Sent {
		t.Fatalf("delivery = %+v, want sent", d)
	}
	if card["@type"] != "MessageCard" {
		t.Errorf("card @type = %v", card["@type"])
	}
	actions, _ := card["potentialAction"].([]interface{})
	if len(actions) != 2 {
		t.Errorf("card has %d actions, want 2", len(actions))
	}
}

func TestUnconfiguredWebhookIsAnOutcomeNotAnError(t *testing.T) {
	s := NewService(Config{PublicBaseURL: "http://127.0.0.1:8001", ClickToken: "x"})

	if d := s.SendSlackApproval(context.Background(), "r", "t", "a", "b", "m"); d.Sent || d.Reason == "" {
		t.Errorf("slack delivery = %+v, want unsent with reason", d)
	}
	if d := s.SendTeamsApproval(context.Background(), "r", "t", "a", "b", "m"); d.Sent || d.Reason == "" {
		t.Errorf("teams delivery = %+v, want unsent with reason", d)
	}
}

func TestRejectedDelivery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewService(Config{SlackWebhookURL: srv.URL, PublicBaseURL: "http://x", ClickToken: "x"})
	d := s.SendSlackApproval(context.Background(), "r", "t", "a", "b", "m")
	if d.Sent {
		t.Fatal("delivery.Sent = true for 403 response")
	}
	if d.Status != http.StatusForbidden {
		t.Errorf("delivery.Status = %d", d.Status)
	}
}
