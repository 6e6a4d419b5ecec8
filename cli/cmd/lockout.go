/*-------------------------------------------------------------------------
 *
 * lockout.go
 *    Sign-in triage command
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/cli/cmd/lockout.go
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

var lockoutCmd = &cobra.Command{
	Use:   "lockout <upn>",
	Short: "Summarize recent sign-in activity for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newClient().Chat(fmt.Sprintf("check lockout for %s", args[0]), nil)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		fmt.Println(result.Reply)
		if len(result.Data) > 0 {
			var pretty map[string]interface{}
			if err := json.Unmarshal(result.Data, &pretty); err == nil {
				if rec, ok := pretty["recommendation"].(string); ok {
					fmt.Printf("%s %s\n", keyFmt("Recommendation:"), rec)
				}
			}
		}
		return nil
	},
}
