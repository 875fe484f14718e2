package config

import (
	"testing"
	"time"
)

func TestEnvReaderRead(t *testing.T) {
	t.Setenv("ENV", EnvLocal)
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USERNAME", "trackguide")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DATABASE", "trackguide")
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")

	cfg, err := NewEnvReader().Read()
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}

	if cfg.Env != EnvLocal {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvLocal)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("HTTP.Port default = %q, want 8080", cfg.HTTP.Port)
	}
	if cfg.HTTP.ShutdownTimeout != 5*time.Second {
		t.Errorf("HTTP.ShutdownTimeout default = %v, want 5s", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port default = %d, want 5432", cfg.Postgres.Port)
	}
	if cfg.JWT.AccessTokenTTL != 15*time.Minute {
		t.Errorf("JWT.AccessTokenTTL default = %v, want 15m", cfg.JWT.AccessTokenTTL)
	}
}

func TestEnvReaderReadMissingRequired(t *testing.T) {
	t.Setenv("ENV", EnvLocal)
	t.Setenv("POSTGRES_HOST", "localhost")

	_, err := NewEnvReader().Read()
	if err == nil {
		t.Fatal("Read should fail when required variables are missing")
	}
}

func TestPostgresConfigURL(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		Username: "app",
		Password: "pw",
		Database: "trackguide",
		SSLMode:  "require",
	}

	want := "postgres://app:pw@db.internal:5433/trackguide?sslmode=require"
	if got := cfg.URL(); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
