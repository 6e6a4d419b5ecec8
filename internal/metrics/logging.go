/*-------------------------------------------------------------------------
 *
 * logging.go
 *    Structured logging initialization
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/metrics/logging.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var rootLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

/* InitLogging configures the global zerolog logger */
func InitLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(format, "console") {
		rootLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		rootLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

/* Logger returns the root logger */
func Logger() zerolog.Logger {
	return rootLogger
}
