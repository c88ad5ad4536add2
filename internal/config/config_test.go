package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable Config reads so the host environment
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "FRONTEND_URL", "SHUTDOWN_TIMEOUT", "LOG_LEVEL",
		"STORE_DRIVER", "DATABASE_URL", "MYSQL_DSN",
		"ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "JWT_SECRET",
		"NOTIFIER", "ADMIN_EMAIL", "SENDGRID_API_KEY", "EMAIL_PASS", "SENDGRID_SENDER_EMAIL",
		"DISPATCH_MODE", "RABBITMQ_URL", "NOTIFY_QUEUE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3000" || cfg.Addr() != ":3000" {
		t.Errorf("expected port 3000, got %q", cfg.Port)
	}
	if cfg.StoreDriver != "postgres" {
		t.Errorf("expected postgres driver, got %q", cfg.StoreDriver)
	}
	if cfg.AdminUsername != "admin" || cfg.AdminPassword != "password123" {
		t.Errorf("unexpected admin defaults %q/%q", cfg.AdminUsername, cfg.AdminPassword)
	}
	if cfg.DispatchMode != "inline" || cfg.Notifier != "sendgrid" {
		t.Errorf("unexpected dispatch/notifier defaults %q/%q", cfg.DispatchMode, cfg.Notifier)
	}
	if cfg.AdminEmail != "admin@example.com" || cfg.SenderEmail != "default@example.com" {
		t.Errorf("unexpected email defaults %q/%q", cfg.AdminEmail, cfg.SenderEmail)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DISPATCH_MODE", "amqp")
	t.Setenv("NOTIFY_QUEUE", "mail")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":8081" || cfg.StoreDriver != "memory" || cfg.DispatchMode != "amqp" || cfg.NotifyQueue != "mail" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_EmailPassFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMAIL_PASS", "SG.legacy")
	t.Setenv("ADMIN_EMAIL", "owner@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SendGridAPIKey != "SG.legacy" {
		t.Errorf("expected EMAIL_PASS fallback, got %q", cfg.SendGridAPIKey)
	}
	if cfg.AdminEmail != "owner@example.com" {
		t.Errorf("expected ADMIN_EMAIL override, got %q", cfg.AdminEmail)
	}
}

func TestLoad_ExplicitAPIKeyWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMAIL_PASS", "SG.legacy")
	t.Setenv("SENDGRID_API_KEY", "SG.current")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SendGridAPIKey != "SG.current" {
		t.Errorf("expected SENDGRID_API_KEY, got %q", cfg.SendGridAPIKey)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:           "production",
			StoreDriver:   "postgres",
			Notifier:      "sendgrid",
			DispatchMode:  "inline",
			AdminUsername: "admin",
			AdminPassword: "s3cret",
			JWTSecret:     strings.Repeat("k", 40),
			AdminEmail:    "owner@example.com",
			SenderEmail:   "noreply@example.com",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown store", func(c *Config) { c.StoreDriver = "sqlite" }, "STORE_DRIVER"},
		{"unknown notifier", func(c *Config) { c.Notifier = "smtp" }, "NOTIFIER"},
		{"unknown dispatch", func(c *Config) { c.DispatchMode = "kafka" }, "DISPATCH_MODE"},
		{"short secret in production", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"dev secret in production", func(c *Config) { c.JWTSecret = devJWTSecret }, "JWT_SECRET"},
		{"short secret in development", func(c *Config) { c.Env = "development"; c.JWTSecret = "short" }, ""},
		{"sendgrid without recipient", func(c *Config) { c.AdminEmail = "" }, "ADMIN_EMAIL"},
		{"sendgrid without sender", func(c *Config) { c.SenderEmail = "" }, "SENDGRID_SENDER_EMAIL"},
		{"sendgrid without addresses in development", func(c *Config) { c.Env = "development"; c.AdminEmail = "" }, "ADMIN_EMAIL"},
		{"log notifier without addresses", func(c *Config) { c.Notifier = "log"; c.AdminEmail = ""; c.SenderEmail = "" }, ""},
		{"no password", func(c *Config) { c.AdminPassword = "" }, "ADMIN_PASSWORD"},
		{"hash only", func(c *Config) { c.AdminPassword = ""; c.AdminPasswordHash = "$2a$10$x" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
