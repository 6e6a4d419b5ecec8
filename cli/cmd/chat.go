/*-------------------------------------------------------------------------
 *
 * chat.go
 *    Free-text agent command
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/cli/cmd/chat.go
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

var chatContext string

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a free-text message to the agent",
	Long: `Send a free-text message to the agent endpoint. The optional
--context flag takes a JSON object and is used by the elevation flow:

  accessagent-cli chat "request pim for alice@contoso.com" \
    --context '{"role_name_or_id":"Helpdesk Administrator","manager_upn":"boss@contoso.com","justification":"OPS-1 oncall","simulate":true}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var context map[string]interface{}
		if chatContext != "" {
			if err := json.Unmarshal([]byte(chatContext), &context); err != nil {
				return fmt.Errorf("invalid --context JSON: %w", err)
			}
		}

		result, err := newClient().Chat(args[0], context)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		fmt.Println(result.Reply)
		if len(result.Data) > 0 {
			pretty, err := json.MarshalIndent(json.RawMessage(result.Data), "", "  ")
			if err == nil {
				fmt.Println(string(pretty))
			}
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatContext, "context", "", "JSON context object for the elevation flow")
}
