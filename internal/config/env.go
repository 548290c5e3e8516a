package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvConfig carries secrets and overrides that never live in YAML.
type EnvConfig struct {
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailTo   string
	MailFrom string

	OpenAIAPIKey  string
	OpenAIModel   string
	WPUser        string
	WPAppPassword string

	DryRun bool
}

// LoadEnv reads .env (if present) and the process environment. Validation of
// role-specific settings is left to the caller, see RequireSMTP.
func LoadEnv() (*EnvConfig, error) {
	// Missing .env is fine, real deployments use actual env vars.
	_ = godotenv.Load()

	cfg := &EnvConfig{
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      587,
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		MailTo:        os.Getenv("MAIL_TO"),
		MailFrom:      os.Getenv("MAIL_FROM"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		WPUser:        os.Getenv("WP_USER"),
		WPAppPassword: os.Getenv("WP_APP_PASSWORD"),
		DryRun:        os.Getenv("DRY_RUN") == "1",
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		cfg.SMTPPort = port
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	return cfg, nil
}

// RequireSMTP checks that report delivery can work. Mail settings are
// required unless DRY_RUN=1 keeps the report on stdout.
func (c *EnvConfig) RequireSMTP() error {
	if c.DryRun {
		return nil
	}
	if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPass == "" || c.MailTo == "" || c.MailFrom == "" {
		return fmt.Errorf("missing SMTP settings: SMTP_HOST, SMTP_USER, SMTP_PASS, MAIL_TO are required (or set DRY_RUN=1)")
	}
	return nil
}
