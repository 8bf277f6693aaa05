package commands

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/diogo/geminichat/internal/config"
)

func newConfigEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvModel, "")
	t.Setenv(config.EnvEndpoint, "")
	env.deps.LoadConfig = config.LoadConfig
	return env
}

func TestConfigInit(t *testing.T) {
	env := newConfigEnv(t)

	err := env.run("config", "init", "--api-key", "AIzaSyTESTKEY123456", "--default-model", "gemini-2.5-pro", "--storage", "sqlite")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	path, _ := config.GetConfigPath()
	if !strings.Contains(env.stdout.String(), path) {
		t.Errorf("stdout = %q, want path %s", env.stdout.String(), path)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIKey != "AIzaSyTESTKEY123456" || cfg.Model != "gemini-2.5-pro" || cfg.Storage.Backend != config.BackendSQLite {
		t.Errorf("saved config = %+v", cfg)
	}
}

func TestConfigInit_ExistingFile(t *testing.T) {
	env := newConfigEnv(t)

	if err := env.run("config", "init"); err != nil {
		t.Fatalf("first init error = %v", err)
	}

	err := env.run("config", "init", "--api-key", "other")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}

	if err := env.run("config", "init", "--api-key", "replaced", "--force"); err != nil {
		t.Fatalf("init --force error = %v", err)
	}
	cfg, _ := config.LoadConfig()
	if cfg.APIKey != "replaced" {
		t.Errorf("APIKey = %q, want replaced", cfg.APIKey)
	}
}

func TestConfigInit_InvalidBackend(t *testing.T) {
	env := newConfigEnv(t)

	err := env.run("config", "init", "--storage", "redis")
	if err == nil || !strings.Contains(err.Error(), "unknown storage backend") {
		t.Fatalf("expected backend error, got %v", err)
	}

	path, _ := config.GetConfigPath()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid config should not be written")
	}
}

func TestConfigShow_Redacted(t *testing.T) {
	env := newConfigEnv(t)
	if err := env.run("config", "init", "--api-key", "AIzaSyTESTKEY123456"); err != nil {
		t.Fatal(err)
	}
	env.stdout.Reset()

	if err := env.run("config", "show"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := env.stdout.String()
	if strings.Contains(out, "AIzaSyTESTKEY123456") {
		t.Errorf("api key leaked: %s", out)
	}

	var shown config.Config
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !strings.HasPrefix(shown.APIKey, "AIza") || !strings.Contains(shown.APIKey, "*") {
		t.Errorf("APIKey = %q", shown.APIKey)
	}
}

func TestConfigPath(t *testing.T) {
	env := newConfigEnv(t)

	if err := env.run("config", "path"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	path, _ := config.GetConfigPath()
	if got := strings.TrimSpace(env.stdout.String()); got != path {
		t.Errorf("stdout = %q, want %q", got, path)
	}
}
