/*-------------------------------------------------------------------------
 *
 * config.go
 *    Configuration for the AccessAgent server
 *
 * Provides the explicit configuration struct consumed by every component
 * constructor. Values come from defaults, an optional YAML file, and
 * environment variable overrides, in that order. Core packages never read
 * the process environment themselves.
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/config/config.go
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Directory DirectoryConfig `yaml:"directory"`
	Guardrail GuardrailConfig `yaml:"guardrail"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Ticketing TicketingConfig `yaml:"ticketing"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	PublicBaseURL string        `yaml:"public_base_url"`
}

type AuthConfig struct {
	APIKey               string `yaml:"api_key"`
	ApprovalSharedSecret string `yaml:"approval_shared_secret"`
	ClickToken           string `yaml:"click_token"`
}

type DirectoryConfig struct {
	TenantID     string        `yaml:"tenant_id"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	BaseURL      string        `yaml:"base_url"`
	AuthorityURL string        `yaml:"authority_url"`
	Timeout      time.Duration `yaml:"timeout"`
	Simulate     bool          `yaml:"simulate"`
}

type GuardrailConfig struct {
	MinDurationMinutes int      `yaml:"min_duration_minutes"`
	MaxDurationMinutes int      `yaml:"max_duration_minutes"`
	ScopeAllowlist     []string `yaml:"scope_allowlist"`
}

type LedgerConfig struct {
	PendingTTL time.Duration `yaml:"pending_ttl"`
}

type TicketingConfig struct {
	BaseURL    string        `yaml:"base_url"`
	User       string        `yaml:"user"`
	Token      string        `yaml:"token"`
	Project    string        `yaml:"project"`
	AssigneeID string        `yaml:"assignee_id"`
	Mock       bool          `yaml:"mock"`
	Timeout    time.Duration `yaml:"timeout"`
}

type NotifyConfig struct {
	SlackWebhookURL string        `yaml:"slack_webhook_url"`
	TeamsWebhookURL string        `yaml:"teams_webhook_url"`
	Timeout         time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

/* DefaultConfig returns the configuration used when nothing else is provided */
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8001,
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  120 * time.Second,
			PublicBaseURL: "http://127.0.0.1:8001",
		},
		Auth: AuthConfig{
			APIKey:               "dev",
			ApprovalSharedSecret: "devsecret",
			ClickToken:           "clicksecret",
		},
		Directory: DirectoryConfig{
			BaseURL:      "https://graph.microsoft.com/v1.0",
			AuthorityURL: "https://login.microsoftonline.com",
			Timeout:      30 * time.Second,
			Simulate:     false,
		},
		Guardrail: GuardrailConfig{
			MinDurationMinutes: 15,
			MaxDurationMinutes: 240,
			ScopeAllowlist:     []string{"/"},
		},
		Ledger: LedgerConfig{
			PendingTTL: 30 * time.Minute,
		},
		Ticketing: TicketingConfig{
			Project: "OPS",
			Mock:    true,
			Timeout: 30 * time.Second,
		},
		Notify: NotifyConfig{
			Timeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

/* LoadConfig loads configuration from a YAML file on top of the defaults */
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

/* LoadFromEnv applies environment variable overrides to a config */
func LoadFromEnv(cfg *Config) {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")

	setString(&cfg.Auth.APIKey, "AGENT_API_KEY")
	setString(&cfg.Auth.ApprovalSharedSecret, "APPROVAL_SHARED_SECRET")
	setString(&cfg.Auth.ClickToken, "APPROVAL_CLICK_TOKEN")

	setString(&cfg.Directory.TenantID, "TENANT_ID")
	setString(&cfg.Directory.ClientID, "CLIENT_ID")
	setString(&cfg.Directory.ClientSecret, "CLIENT_SECRET")
	setString(&cfg.Directory.BaseURL, "GRAPH_BASE_URL")
	setBool(&cfg.Directory.Simulate, "PIM_SIMULATE")

	setInt(&cfg.Guardrail.MinDurationMinutes, "PIM_MIN_DURATION")
	setInt(&cfg.Guardrail.MaxDurationMinutes, "PIM_MAX_DURATION")
	if v := os.Getenv("PIM_SCOPE_ALLOWLIST"); v != "" {
		scopes := []string{}
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
		if len(scopes) > 0 {
			cfg.Guardrail.ScopeAllowlist = scopes
		}
	}

	if v := os.Getenv("PENDING_TTL_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Ledger.PendingTTL = time.Duration(sec) * time.Second
		}
	}

	setString(&cfg.Ticketing.BaseURL, "JIRA_BASE")
	setString(&cfg.Ticketing.User, "JIRA_USER")
	setString(&cfg.Ticketing.Token, "JIRA_TOKEN")
	setString(&cfg.Ticketing.Project, "JIRA_PROJECT")
	setString(&cfg.Ticketing.AssigneeID, "JIRA_IT_ASSIGNEE_ID")
	setBool(&cfg.Ticketing.Mock, "JIRA_MOCK")

	setString(&cfg.Notify.SlackWebhookURL, "SLACK_WEBHOOK_URL")
	setString(&cfg.Notify.TeamsWebhookURL, "TEAMS_WEBHOOK_URL")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
}

/* Validate checks configuration invariants that would make the server unusable */
func (c *Config) Validate() error {
	if c.Guardrail.MinDurationMinutes <= 0 {
		return fmt.Errorf("guardrail min duration must be positive, got %d", c.Guardrail.MinDurationMinutes)
	}
	if c.Guardrail.MaxDurationMinutes < c.Guardrail.MinDurationMinutes {
		return fmt.Errorf("guardrail max duration %d is below min duration %d",
			c.Guardrail.MaxDurationMinutes, c.Guardrail.MinDurationMinutes)
	}
	if len(c.Guardrail.ScopeAllowlist) == 0 {
		return fmt.Errorf("guardrail scope allowlist cannot be empty")
	}
	if c.Ledger.PendingTTL <= 0 {
		return fmt.Errorf("pending TTL must be positive, got %s", c.Ledger.PendingTTL)
	}
	if !c.Ticketing.Mock {
		if c.Ticketing.BaseURL == "" || c.Ticketing.User == "" || c.Ticketing.Token == "" {
			return fmt.Errorf("ticketing requires JIRA_BASE, JIRA_USER, and JIRA_TOKEN when mock mode is off")
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.EqualFold(v, "true")
	}
}
