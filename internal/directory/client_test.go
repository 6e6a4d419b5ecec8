/*-------------------------------------------------------------------------
 *
 * client_test.go
 *    Tests for directory package
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 *-------------------------------------------------------------------------
 */

package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testPayload() GrantPayload {
	return GrantPayload{
		PrincipalUPN:    "alice@contoso.com",
		Role:            "Helpdesk Administrator",
		Scope:           "/",
		DurationMinutes: 120,
		Justification:   "OPS-1432: temp access",
	}
}

func TestTokenMissingCredentials(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://example.invalid"})
	_, err := c.Ping(context.Background())
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("Ping() error = %v, want ErrAuthFailed", err)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/organization") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]string{{"displayName": "Contoso", "id": "tenant-123"}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, StaticToken: "test-token"})
	info, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if info.TenantDisplayName != "Contoso" || info.TenantID != "tenant-123" || !info.OK {
		t.Fatalf("Ping() = %+v, want Contoso/tenant-123/ok", info)
	}
}

func TestExecuteGrantSimulateNeverCallsDirectory(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, StaticToken: "test-token"})
	p := testPayload()
	p.Simulate = true

	result, err := c.ExecuteGrant(context.Background(), p)
	if err != nil {
		t.Fatalf("ExecuteGrant() error = %v", err)
	}
	if calls != 0 {
		t.Fatalf("simulated execution made %d directory calls, want 0", calls)
	}
	if result.Status != StatusDryRunSimulated {
		t.Errorf("result.Status = %q, want %q", result.Status, StatusDryRunSimulated)
	}
	if result.PrincipalID != simulatedPrincipalID || result.RoleDefinitionID != simulatedRoleDefID {
		t.Errorf("simulated result has unexpected ids: %+v", result)
	}
	if result.Plan == nil || result.Plan.Endpoint != eligibilityEndpoint {
		t.Fatalf("simulated result missing plan: %+v", result)
	}
	exp, ok := result.Plan.Body["scheduleInfo"].(map[string]interface{})["expiration"].(map[string]interface{})
	if !ok || exp["duration"] != "PT120M" {
		t.Errorf("plan expiration = %v, want afterDuration PT120M", exp)
	}
}

func TestExecuteGrantLive(t *testing.T) {
	var posted map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/users/"):
			json.NewEncoder(w).Encode(map[string]string{"id": "user-obj-1"})
		case strings.HasPrefix(r.URL.Path, "/roleManagement/directory/roleDefinitions"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"value": []map[string]string{{"id": "role-def-1", "displayName": "Helpdesk Administrator"}},
			})
		case r.URL.Path == eligibilityEndpoint && r.Method == http.MethodPost:
			json.NewDecoder(r.Body).Decode(&posted)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "sched-req-9"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, StaticToken: "test-token"})
	result, err := c.ExecuteGrant(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("ExecuteGrant() error = %v", err)
	}
	if result.Status != StatusEligibleCreated {
		t.Errorf("result.Status = %q, want %q", result.Status, StatusEligibleCreated)
	}
	if result.RequestID != "sched-req-9" {
		t.Errorf("result.RequestID = %q, want sched-req-9", result.RequestID)
	}
	if result.PrincipalID != "user-obj-1" || result.RoleDefinitionID != "role-def-1" {
		t.Errorf("resolved ids = %q/%q", result.PrincipalID, result.RoleDefinitionID)
	}
	if posted["action"] != "adminAssign" || posted["principalId"] != "user-obj-1" {
		t.Errorf("posted body = %v", posted)
	}
}

func TestExecuteGrantRoleGUIDSkipsLookup(t *testing.T) {
	roleLookups := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/users/"):
			json.NewEncoder(w).Encode(map[string]string{"id": "user-obj-1"})
		case strings.HasPrefix(r.URL.Path, "/roleManagement/directory/roleDefinitions"):
			roleLookups++
			w.WriteHeader(http.StatusInternalServerError)
		case r.URL.Path == eligibilityEndpoint:
			json.NewEncoder(w).Encode(map[string]string{"id": "sched-req-1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, StaticToken: "test-token"})
	p := testPayload()
	p.Role = "11111111-2222-3333-4444-555555555555"

	result, err := c.ExecuteGrant(context.Background(), p)
	if err != nil {
		t.Fatalf("ExecuteGrant() error = %v", err)
	}
	if roleLookups != 0 {
		t.Fatalf("GUID role triggered %d definition lookups, want 0", roleLookups)
	}
	if result.RoleDefinitionID != p.Role {
		t.Errorf("result.RoleDefinitionID = %q, want the GUID back", result.RoleDefinitionID)
	}
}

func TestExecuteGrantSurfacesDirectoryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/users/") {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":"Authorization_RequestDenied"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, StaticToken: "test-token"})
	_, err := c.ExecuteGrant(context.Background(), testPayload())
	if err == nil {
		t.Fatal("ExecuteGrant() expected error")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error %q does not carry the directory status", err)
	}
}
