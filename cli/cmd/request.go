/*-------------------------------------------------------------------------
 *
 * request.go
 *    Elevation request command
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/cli/cmd/request.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/accessdesk/AccessAgent/cli/pkg/client"
)

var (
	requestRole          string
	requestScope         string
	requestDuration      int
	requestManager       string
	requestJustification string
	requestSimulate      bool
)

var requestCmd = &cobra.Command{
	Use:   "request <upn>",
	Short: "Raise a time-boxed role eligibility request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		receipt, err := newClient().SubmitElevation(client.ElevationRequest{
			PrincipalUPN:    args[0],
			Role:            requestRole,
			Scope:           requestScope,
			DurationMinutes: requestDuration,
			Justification:   requestJustification,
			RequireTicket:   true,
			Simulate:        requestSimulate,
			ManagerUPN:      requestManager,
		})
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return json.NewEncoder(os.Stdout).Encode(receipt)
		}

		fmt.Printf("%s ticket %s created, request %s pending approval\n",
			okFmt("OK"), keyFmt(receipt.TicketKey), keyFmt(receipt.RequestID))
		fmt.Printf("  approve: %s\n", receipt.ApproveURL)
		fmt.Printf("  deny:    %s\n", receipt.DenyURL)
		return nil
	},
}

func init() {
	requestCmd.Flags().StringVar(&requestRole, "role", "", "Role display name or roleDefinitionId GUID (required)")
	requestCmd.Flags().StringVar(&requestScope, "scope", "/", "Directory scope")
	requestCmd.Flags().IntVar(&requestDuration, "duration", 120, "Eligibility window in minutes")
	requestCmd.Flags().StringVar(&requestManager, "manager", "", "Manager UPN who must approve (required)")
	requestCmd.Flags().StringVar(&requestJustification, "justification", "", "Justification with a ticket reference (required)")
	requestCmd.Flags().BoolVar(&requestSimulate, "simulate", false, "Fabricate directory identifiers instead of calling Graph")
	requestCmd.MarkFlagRequired("role")
	requestCmd.MarkFlagRequired("manager")
	requestCmd.MarkFlagRequired("justification")
}
