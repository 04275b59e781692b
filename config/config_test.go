package config

import "testing"

func TestGetString(t *testing.T) {
	c := map[string]string{"PORT": "9090", "EMPTY": ""}

	if got := GetString(c, "PORT", "8080"); got != "9090" {
		t.Errorf("GetString(PORT) = %q; want 9090", got)
	}
	if got := GetString(c, "MISSING", "fallback"); got != "fallback" {
		t.Errorf("GetString(MISSING) = %q; want fallback", got)
	}
	if got := GetString(c, "EMPTY", "fallback"); got != "" {
		t.Errorf("GetString(EMPTY) = %q; a set empty value wins over the default", got)
	}
	if got := GetString(nil, "PORT", "8080"); got != "8080" {
		t.Errorf("GetString on nil config = %q; want the default", got)
	}
}

func TestGetInt(t *testing.T) {
	c := map[string]string{"TIMEOUT": "30", "BAD": "not-a-number"}

	if got := GetInt(c, "TIMEOUT", 180); got != 30 {
		t.Errorf("GetInt(TIMEOUT) = %d; want 30", got)
	}
	if got := GetInt(c, "BAD", 180); got != 180 {
		t.Errorf("GetInt(BAD) = %d; want the default on a parse failure", got)
	}
	if got := GetInt(c, "MISSING", 180); got != 180 {
		t.Errorf("GetInt(MISSING) = %d; want the default", got)
	}
}

func TestSplit(t *testing.T) {
	key, value := split("DATABASE_DSN=postgres://u:p@host/db?sslmode=disable")
	if key != "DATABASE_DSN" || value != "postgres://u:p@host/db?sslmode=disable" {
		t.Errorf("split = %q, %q; the value must keep its own = signs", key, value)
	}

	key, value = split("FLAG")
	if key != "FLAG" || value != "" {
		t.Errorf("split(FLAG) = %q, %q; want FLAG and empty", key, value)
	}
}

func TestConfiguredChecks(t *testing.T) {
	var s Settings
	if s.DatabaseConfigured() || s.AuthConfigured() || s.StorageConfigured() || s.ChatConfigured() || s.MailerConfigured() || s.ReplicaConfigured() {
		t.Error("empty settings report a configured integration")
	}

	s = FromEnv(map[string]string{
		"DATABASE_DSN":   "postgres://localhost/portfolio",
		"JWT_SECRET":     "secret",
		"S3_BUCKET":      "covers",
		"GEMINI_API_KEY": "key",
	})
	if !s.DatabaseConfigured() || !s.AuthConfigured() || !s.StorageConfigured() || !s.ChatConfigured() {
		t.Error("settings with values report unconfigured integrations")
	}
	if s.MailerConfigured() {
		t.Error("mailer configured without a Resend key and sender")
	}
	if s.Port != "8080" {
		t.Errorf("port = %q; want the 8080 default", s.Port)
	}
}
