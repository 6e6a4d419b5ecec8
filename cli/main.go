/*-------------------------------------------------------------------------
 *
 * main.go
 *    Entry point for accessagent-cli
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/cli/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import "github.com/accessdesk/AccessAgent/cli/cmd"

func main() {
	cmd.Execute()
}
