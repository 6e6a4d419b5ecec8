/*-------------------------------------------------------------------------
 *
 * ping.go
 *    Server and directory health command
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/cli/cmd/ping.go
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

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check server and directory reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		health, err := newClient().Health()
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return json.NewEncoder(os.Stdout).Encode(health)
		}

		fmt.Printf("%s server reachable\n", okFmt("OK"))
		if health.GraphOK {
			fmt.Printf("%s directory reachable: %s (%s)\n", okFmt("OK"), health.Tenant, keyFmt(health.TenantID))
		} else {
			fmt.Printf("%s directory unreachable: %s\n", warnFmt("WARN"), health.Error)
		}
		return nil
	},
}
