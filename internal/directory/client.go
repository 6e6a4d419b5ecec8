/*-------------------------------------------------------------------------
 *
 * client.go
 *    Directory service client
 *
 * Microsoft-Graph-shaped client used for tenant ping, principal and role
 * resolution, privileged grant execution, and sign-in activity queries.
 * Authentication uses OAuth2 client credentials with a cached token
 * source; a static token can be injected for tests and local runs.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/directory/client.go
 *
 *-------------------------------------------------------------------------
 */

package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

/* ErrAuthFailed wraps every token acquisition failure */
var ErrAuthFailed = errors.New("directory authentication failed")

var guidPattern = regexp.MustCompile(`^[0-9a-fA-F-]{36}$`)

/* Config holds the directory connection settings */
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BaseURL      string
	AuthorityURL string
	Timeout      time.Duration

	/* StaticToken bypasses client-credentials acquisition; test use */
	StaticToken string
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	staticToken string
	hasCreds    bool
}

/* NewClient creates a directory client from config */
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		staticToken: cfg.StaticToken,
	}

	if cfg.TenantID != "" && cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimRight(cfg.AuthorityURL, "/"), cfg.TenantID),
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		}
		c.tokenSource = cc.TokenSource(context.Background())
		c.hasCreds = true
	}

	return c
}

/* token returns a bearer token, from the static override or the cached
 * client-credentials source. */
func (c *Client) token(ctx context.Context) (string, error) {
	if c.staticToken != "" {
		return c.staticToken, nil
	}
	if !c.hasCreds {
		return "", fmt.Errorf("%w: missing TENANT_ID/CLIENT_ID/CLIENT_SECRET", ErrAuthFailed)
	}
	tok, err := c.tokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	return tok.AccessToken, nil
}

/* TenantInfo is the ping result */
type TenantInfo struct {
	TenantDisplayName string `json:"tenant_display_name"`
	TenantID          string `json:"tenant_id"`
	OK                bool   `json:"ok"`
}

/* Ping verifies directory reachability and returns basic tenant info */
func (c *Client) Ping(ctx context.Context) (*TenantInfo, error) {
	var out struct {
		Value []struct {
			DisplayName string `json:"displayName"`
			ID          string `json:"id"`
		} `json:"value"`
	}
	if err := c.get(ctx, "/organization?$select=displayName,id", &out); err != nil {
		return nil, err
	}
	if len(out.Value) == 0 {
		return nil, fmt.Errorf("directory returned no organization record")
	}
	return &TenantInfo{
		TenantDisplayName: out.Value[0].DisplayName,
		TenantID:          out.Value[0].ID,
		OK:                true,
	}, nil
}

/* lookupUserID resolves a UPN to a directory object id */
func (c *Client) lookupUserID(ctx context.Context, upn string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/users/%s?$select=id", url.PathEscape(upn))
	if err := c.get(ctx, path, &out); err != nil {
		return "", fmt.Errorf("user lookup failed for %s: %w", upn, err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("user lookup failed for %s: empty object id", upn)
	}
	return out.ID, nil
}

/* resolveRoleDefinitionID accepts a role definition GUID or a display name */
func (c *Client) resolveRoleDefinitionID(ctx context.Context, roleNameOrID string) (string, error) {
	if guidPattern.MatchString(roleNameOrID) {
		return roleNameOrID, nil
	}

	var out struct {
		Value []struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
		} `json:"value"`
	}
	filter := url.QueryEscape(fmt.Sprintf("displayName eq '%s'", roleNameOrID))
	path := fmt.Sprintf("/roleManagement/directory/roleDefinitions?$filter=%s&$select=id,displayName", filter)
	if err := c.get(ctx, path, &out); err != nil {
		return "", fmt.Errorf("role definition lookup failed: %w", err)
	}
	if len(out.Value) == 0 {
		return "", fmt.Errorf("no role definition found for displayName='%s'", roleNameOrID)
	}
	return out.Value[0].ID, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("directory request creation failed: path='%s', error=%w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory request failed: path='%s', error=%w", path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("directory error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("directory response decoding failed: path='%s', error=%w", path, err)
		}
	}
	return nil
}
