package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s", cfg.TokenTTL)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
}

func TestMergeEnv(t *testing.T) {
	cfg := Default()
	err := cfg.mergeEnv(lookupFrom(map[string]string{
		"PORT":            "8080",
		"DB_DRIVER":       "SQLite",
		"DATABASE_URL":    "file:test.db",
		"JWT_SECRET":      "s3cret",
		"TOKEN_TTL":       "2h",
		"CLIENT_URL":      "https://board.example.com",
		"ALLOWED_ORIGINS": " https://a.example.com , ,https://b.example.com",
	}))
	if err != nil {
		t.Fatalf("mergeEnv: %v", err)
	}

	if cfg.Port != "8080" || cfg.DBDriver != "sqlite" || cfg.JWTSecret != "s3cret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("TokenTTL = %s", cfg.TokenTTL)
	}
	for _, origin := range []string{"http://localhost:3000", "https://board.example.com", "https://a.example.com", "https://b.example.com"} {
		if !cfg.OriginAllowed(origin) {
			t.Errorf("origin %s not allowed", origin)
		}
	}
	if cfg.OriginAllowed("") {
		t.Error("empty origin should not be allowed")
	}
}

func TestMergeEnvRejectsBadDuration(t *testing.T) {
	cfg := Default()
	err := cfg.mergeEnv(lookupFrom(map[string]string{"TOKEN_TTL": "a day"}))
	if err == nil || !strings.Contains(err.Error(), "TOKEN_TTL") {
		t.Fatalf("expected TOKEN_TTL error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Default()
	base.JWTSecret = "secret"
	base.DatabaseURL = "postgres://localhost/planboard"

	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	noSecret := base
	noSecret.JWTSecret = ""
	if err := noSecret.Validate(); err == nil {
		t.Error("missing secret accepted")
	}

	badDriver := base
	badDriver.DBDriver = "oracle"
	if err := badDriver.Validate(); err == nil {
		t.Error("unknown driver accepted")
	}

	noDSN := base
	noDSN.DatabaseURL = ""
	if err := noDSN.Validate(); err == nil {
		t.Error("missing DATABASE_URL accepted")
	}
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planboard.yaml")
	content := `port: "9000"
db_driver: sqlite
database_url: file:from-yaml.db
jwt_secret: from-yaml
token_ttl: 1h
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TOKEN_TTL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9100" {
		t.Errorf("env should override file port, got %q", cfg.Port)
	}
	if cfg.JWTSecret != "from-yaml" || cfg.DBDriver != "sqlite" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %s", cfg.TokenTTL)
	}
}
