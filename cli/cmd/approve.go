/*-------------------------------------------------------------------------
 *
 * approve.go
 *    Approval resolution commands
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/cli/cmd/approve.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	resolveTicket   string
	resolveApprover string
)

var approveCmd = &cobra.Command{
	Use:   "approve <request-id>",
	Short: "Approve a pending elevation request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolve(args[0], true)
	},
}

var denyCmd = &cobra.Command{
	Use:   "deny <request-id>",
	Short: "Deny a pending elevation request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolve(args[0], false)
	},
}

func resolve(requestID string, approved bool) error {
	res, err := newClient().Resolve(requestID, resolveTicket, resolveApprover, approved)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(res)
	}

	verdict := okFmt("approved")
	if !approved {
		verdict = warnFmt("denied")
	}
	fmt.Printf("Request %s %s: status=%s ticket=%s\n",
		keyFmt(res.RequestID), verdict, res.Status, keyFmt(res.Ticket))
	if len(res.Result) > 0 {
		pretty, err := json.MarshalIndent(json.RawMessage(res.Result), "", "  ")
		if err == nil {
			fmt.Println(string(pretty))
		}
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{approveCmd, denyCmd} {
		c.Flags().StringVar(&resolveTicket, "ticket", "", "Ticket key the request is correlated with (required)")
		c.Flags().StringVar(&resolveApprover, "approver", "", "Approver UPN (required)")
		c.MarkFlagRequired("ticket")
		c.MarkFlagRequired("approver")
	}
}
