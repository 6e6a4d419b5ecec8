/*-------------------------------------------------------------------------
 *
 * main.go
 *    Main entry point for the AccessAgent server
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/cmd/access-server/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accessdesk/AccessAgent/internal/api"
	"github.com/accessdesk/AccessAgent/internal/approval"
	"github.com/accessdesk/AccessAgent/internal/config"
	"github.com/accessdesk/AccessAgent/internal/directory"
	"github.com/accessdesk/AccessAgent/internal/guardrail"
	"github.com/accessdesk/AccessAgent/internal/intake"
	"github.com/accessdesk/AccessAgent/internal/ledger"
	"github.com/accessdesk/AccessAgent/internal/lockout"
	"github.com/accessdesk/AccessAgent/internal/metrics"
	"github.com/accessdesk/AccessAgent/internal/notify"
	"github.com/accessdesk/AccessAgent/internal/ticketing"
)

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	var (
		showVersion    = flag.Bool("version", false, "Show version information")
		configPath     = flag.String("c", "", "Path to configuration file")
		configPathLong = flag.String("config", "", "Path to configuration file")
		showHelp       = flag.Bool("help", false, "Show help message")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "AccessAgent Server - privileged access request broker for Entra ID\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    Start server with default configuration\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c config.yaml     Start server with custom config file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nConfiguration:\n")
		fmt.Fprintf(os.Stderr, "  Configuration can be provided via:\n")
		fmt.Fprintf(os.Stderr, "  - Command line flag: -c or --config\n")
		fmt.Fprintf(os.Stderr, "  - Environment variable: CONFIG_PATH\n")
		fmt.Fprintf(os.Stderr, "  - Environment variables (see config package for details)\n")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("accessagent version %s\n", version)
		fmt.Printf("Build date: %s\n", buildDate)
		fmt.Printf("Git commit: %s\n", gitCommit)
		os.Exit(0)
	}
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	/* Load configuration */
	cfg := config.DefaultConfig()

	/* Command line flag takes precedence over environment variable */
	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = *configPathLong
	}
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath != "" {
		var err error
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: Failed to load config from %s: %v\n", cfgPath, err)
			os.Exit(1)
		}
	}
	config.LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	metrics.InitLogging(cfg.Logging.Level, cfg.Logging.Format)

	/* Directory client */
	dirClient := directory.NewClient(directory.Config{
		TenantID:     cfg.Directory.TenantID,
		ClientID:     cfg.Directory.ClientID,
		ClientSecret: cfg.Directory.ClientSecret,
		BaseURL:      cfg.Directory.BaseURL,
		AuthorityURL: cfg.Directory.AuthorityURL,
		Timeout:      cfg.Directory.Timeout,
	})

	/* Core services */
	pending := ledger.New(cfg.Ledger.PendingTTL)
	policy := guardrail.Policy{
		MinDurationMinutes: cfg.Guardrail.MinDurationMinutes,
		MaxDurationMinutes: cfg.Guardrail.MaxDurationMinutes,
		AllowedScopes:      cfg.Guardrail.ScopeAllowlist,
	}
	tickets := ticketing.NewClient(ticketing.Config{
		BaseURL:    cfg.Ticketing.BaseURL,
		User:       cfg.Ticketing.User,
		Token:      cfg.Ticketing.Token,
		Project:    cfg.Ticketing.Project,
		AssigneeID: cfg.Ticketing.AssigneeID,
		Mock:       cfg.Ticketing.Mock,
		Timeout:    cfg.Ticketing.Timeout,
	})
	notifier := notify.NewService(notify.Config{
		SlackWebhookURL: cfg.Notify.SlackWebhookURL,
		TeamsWebhookURL: cfg.Notify.TeamsWebhookURL,
		PublicBaseURL:   cfg.Server.PublicBaseURL,
		ClickToken:      cfg.Auth.ClickToken,
		Timeout:         cfg.Notify.Timeout,
	})

	intakeSvc := intake.NewService(policy, pending, tickets, notifier)
	coordinator := approval.NewCoordinator(pending, dirClient, tickets)
	checker := lockout.NewChecker(dirClient)

	/* Setup router */
	handlers := api.NewHandlers(intakeSvc, coordinator, checker, dirClient, pending,
		cfg.Auth.ApprovalSharedSecret, cfg.Auth.ClickToken, cfg.Directory.Simulate)
	router := api.NewRouter(handlers, cfg.Auth.APIKey)

	/* Start server */
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	/* Graceful shutdown */
	go func() {
		fmt.Printf("Server starting on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "FATAL: Server failed to start on %s: %v\n", addr, err)
			os.Exit(1)
		}
	}()

	/* Wait for interrupt signal */
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		fmt.Printf("Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Server exited")
}
