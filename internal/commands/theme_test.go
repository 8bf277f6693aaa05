package commands

import (
	"strings"
	"testing"

	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/storage"
)

func TestThemeCommand(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		args      []string
		wantOut   string
		wantValue string
		wantErr   bool
	}{
		{name: "default is dark", args: []string{"theme"}, wantOut: "dark"},
		{name: "show stored", stored: "light_mode", args: []string{"theme"}, wantOut: "light", wantValue: "light_mode"},
		{name: "set light", args: []string{"theme", "light"}, wantOut: "light", wantValue: "light_mode"},
		{name: "set dark", stored: "light_mode", args: []string{"theme", "dark"}, wantOut: "dark", wantValue: "dark_mode"},
		{name: "toggle from dark", args: []string{"theme", "toggle"}, wantOut: "light", wantValue: "light_mode"},
		{name: "toggle from light", stored: "light_mode", args: []string{"theme", "toggle"}, wantOut: "dark", wantValue: "dark_mode"},
		{name: "unknown", args: []string{"theme", "sepia"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.stored != "" {
				if err := env.kv.Set(storage.KeyThemeColor, tt.stored); err != nil {
					t.Fatal(err)
				}
			}

			err := env.run(tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), "unknown theme") {
					t.Errorf("error = %v", err)
				}
				return
			}

			if got := strings.TrimSpace(env.stdout.String()); got != tt.wantOut {
				t.Errorf("stdout = %q, want %q", got, tt.wantOut)
			}
			if tt.wantValue != "" {
				v, _, _ := env.kv.Get(storage.KeyThemeColor)
				if v != tt.wantValue {
					t.Errorf("stored = %q, want %q", v, tt.wantValue)
				}
			}
		})
	}
}

func TestThemeCommand_KeepsHistory(t *testing.T) {
	env := newTestEnv(t)
	seedHistory(t, env, models.NewOutgoing("keep me", false))

	if err := env.run("theme", "toggle"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if saved := env.history(); len(saved) != 1 || saved[0].Text != "keep me" {
		t.Errorf("history = %+v", saved)
	}
}
