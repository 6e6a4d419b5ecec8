/*-------------------------------------------------------------------------
 *
 * signins.go
 *    Sign-in activity queries
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/directory/signins.go
 *
 *-------------------------------------------------------------------------
 */

package directory

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

/* SignInEvent is one audit-log sign-in record */
type SignInEvent struct {
	ID                      string `json:"id"`
	CreatedDateTime         string `json:"createdDateTime"`
	UserPrincipalName       string `json:"userPrincipalName"`
	AppDisplayName          string `json:"appDisplayName"`
	IsInteractive           bool   `json:"isInteractive"`
	ConditionalAccessStatus string `json:"conditionalAccessStatus"`
	Status                  struct {
		ErrorCode int `json:"errorCode"`
	} `json:"status"`
	AppliedConditionalAccessPolicies []struct {
		DisplayName string `json:"displayName"`
	} `json:"appliedConditionalAccessPolicies"`
}

/* SignIns fetches recent sign-in events for a UPN over a lookback window */
func (c *Client) SignIns(ctx context.Context, upn string, lookbackHours int, interactiveOnly bool) ([]SignInEvent, error) {
	since := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour).Truncate(time.Second).Format("2006-01-02T15:04:05Z")

	selectFields := strings.Join([]string{
		"id", "createdDateTime", "userPrincipalName", "appDisplayName", "status",
		"isInteractive", "conditionalAccessStatus", "appliedConditionalAccessPolicies",
	}, ",")

	filter := fmt.Sprintf("userPrincipalName eq '%s' and createdDateTime ge %s", upn, since)
	if interactiveOnly {
		filter += " and isInteractive eq true"
	}

	var out struct {
		Value []SignInEvent `json:"value"`
	}
	path := fmt.Sprintf("/auditLogs/signIns?$filter=%s&$select=%s&$top=50", url.QueryEscape(filter), selectFields)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("sign-in query failed for %s: %w", upn, err)
	}
	return out.Value, nil
}
