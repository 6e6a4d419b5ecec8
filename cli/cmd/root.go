/*-------------------------------------------------------------------------
 *
 * root.go
 *    Root command and global flags for accessagent-cli
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/cli/cmd/root.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/accessdesk/AccessAgent/cli/pkg/client"
)

var (
	apiURL         string
	apiKey         string
	approvalSecret string
	outputFormat   string
)

var (
	okFmt   = color.New(color.FgGreen).SprintFunc()
	warnFmt = color.New(color.FgYellow).SprintFunc()
	errFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
	keyFmt  = color.New(color.FgCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "accessagent-cli",
	Short: "AccessAgent CLI - privileged access requests and approvals",
	Long: `AccessAgent CLI talks to an AccessAgent server to raise time-boxed
Entra ID role eligibility requests and resolve them.

Examples:
  # Check server and directory health
  accessagent-cli ping

  # Triage a user's recent sign-ins
  accessagent-cli lockout alice@contoso.com

  # Raise an elevation request (simulate mode)
  accessagent-cli request alice@contoso.com \
    --role "Helpdesk Administrator" --duration 120 \
    --manager boss@contoso.com --justification "OPS-1432 oncall" --simulate

  # Resolve a pending request
  accessagent-cli approve req_1724999999999_ab12cd --ticket OPS-7 --approver boss@contoso.com
  accessagent-cli deny req_1724999999999_ab12cd --ticket OPS-7 --approver boss@contoso.com
`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", getEnvOrDefault("ACCESSAGENT_URL", "http://localhost:8001"), "AccessAgent API URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", getEnvOrDefault("AGENT_API_KEY", ""), "AccessAgent API key")
	rootCmd.PersistentFlags().StringVar(&approvalSecret, "approval-secret", getEnvOrDefault("APPROVAL_SHARED_SECRET", ""), "Shared secret for the approval channel")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(lockoutCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(denyCmd)
	rootCmd.AddCommand(chatCmd)
}

func newClient() *client.Client {
	return client.NewClient(apiURL, apiKey, approvalSecret)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errFmt("Error:"), err)
		os.Exit(1)
	}
}
