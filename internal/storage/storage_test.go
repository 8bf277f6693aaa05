package storage

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/observability"
)

func backends(t *testing.T) map[string]func() KV {
	t.Helper()
	return map[string]func() KV{
		"memory": func() KV { return NewMemoryKV() },
		"file": func() KV {
			kv, err := NewFileKV(filepath.Join(t.TempDir(), "store.json"))
			if err != nil {
				t.Fatalf("NewFileKV() error = %v", err)
			}
			return kv
		},
		"sqlite": func() KV {
			kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "store.db"))
			if err != nil {
				t.Fatalf("NewSQLiteKV() error = %v", err)
			}
			return kv
		},
	}
}

func TestKV_Contract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := open()
			defer func() { _ = kv.Close() }()

			if _, ok, err := kv.Get("missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
			}

			if err := kv.Set("a", "1"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := kv.Set("a", "2"); err != nil {
				t.Fatalf("Set() overwrite error = %v", err)
			}
			v, ok, err := kv.Get("a")
			if err != nil || !ok || v != "2" {
				t.Errorf("Get(a) = %q, %v, %v", v, ok, err)
			}

			if err := kv.Delete("a"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, ok, _ := kv.Get("a"); ok {
				t.Error("key should be gone after Delete")
			}
			if err := kv.Delete("a"); err != nil {
				t.Errorf("Delete(missing) error = %v", err)
			}
		})
	}
}

func TestFileKV_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "store.json")

	kv, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	if err := kv.Set(KeyThemeColor, "light_mode"); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("store not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("store perm = %o, want 600", info.Mode().Perm())
	}

	reopened, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if v, ok, _ := reopened.Get(KeyThemeColor); !ok || v != "light_mode" {
		t.Errorf("reopened Get = %q, %v", v, ok)
	}
}

func TestFileKV_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte(`{"savedChats": "[{\"type\"`), 0o600); err != nil {
		t.Fatal(err)
	}

	kv, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	if _, ok, _ := kv.Get(KeySavedChats); ok {
		t.Error("corrupt store should open empty")
	}

	moved, err := os.ReadFile(path + corruptSuffix)
	if err != nil {
		t.Fatalf("corrupt file not kept aside: %v", err)
	}
	if !strings.HasPrefix(string(moved), `{"savedChats"`) {
		t.Errorf("moved content = %q", moved)
	}

	if err := kv.Set(KeyThemeColor, "light_mode"); err != nil {
		t.Fatalf("Set() after recovery error = %v", err)
	}
	reopened, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if v, ok, _ := reopened.Get(KeyThemeColor); !ok || v != "light_mode" {
		t.Errorf("reopened Get = %q, %v", v, ok)
	}
}

func TestFileKV_NullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("null"), 0o600); err != nil {
		t.Fatal(err)
	}

	kv, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	if err := kv.Set(KeyThemeColor, "dark_mode"); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestSQLiteKV_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV() error = %v", err)
	}
	_ = kv.Set("k", "v")
	_ = kv.Close()

	reopened, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if v, ok, _ := reopened.Get("k"); !ok || v != "v" {
		t.Errorf("reopened Get = %q, %v", v, ok)
	}
}

func TestOpen_Backends(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{config.BackendMemory, "*storage.MemoryKV", false},
		{config.BackendFile, "*storage.FileKV", false},
		{"", "*storage.FileKV", false},
		{config.BackendSQLite, "*storage.SQLiteKV", false},
		{"redis", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Storage.Backend = tt.backend
			cfg.Storage.Dir = t.TempDir()

			kv, err := Open(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer func() { _ = kv.Close() }()

			var got string
			switch kv.(type) {
			case *MemoryKV:
				got = "*storage.MemoryKV"
			case *FileKV:
				got = "*storage.FileKV"
			case *SQLiteKV:
				got = "*storage.SQLiteKV"
			}
			if got != tt.want {
				t.Errorf("Open() type = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPersistence_HistoryRoundTrip(t *testing.T) {
	p := NewPersistence(NewMemoryKV())

	if got := p.LoadHistory(); len(got) != 0 {
		t.Fatalf("fresh history should be empty, got %d", len(got))
	}

	msgs := []models.Message{
		models.NewOutgoing("hello", false),
		{ID: "x", Kind: models.KindIncoming, Text: "hi there"},
	}
	if err := p.SaveHistory(msgs); err != nil {
		t.Fatalf("SaveHistory() error = %v", err)
	}

	got := p.LoadHistory()
	if len(got) != 2 || got[0].Text != "hello" || got[1].Text != "hi there" || got[1].ID != "x" {
		t.Errorf("LoadHistory() = %+v", got)
	}
}

func TestPersistence_SaveEmptyDeletesKey(t *testing.T) {
	kv := NewMemoryKV()
	p := NewPersistence(kv)

	_ = p.SaveHistory([]models.Message{models.NewOutgoing("x", false)})
	if err := p.SaveHistory(nil); err != nil {
		t.Fatalf("SaveHistory(nil) error = %v", err)
	}
	if _, ok, _ := kv.Get(KeySavedChats); ok {
		t.Error("empty history should delete the key")
	}
}

func TestPersistence_CorruptHistory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not json"},
		{"object", `{"type":"outgoing"}`},
		{"null", "null"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			_ = kv.Set(KeySavedChats, tt.raw)

			got := NewPersistence(kv).LoadHistory()
			if got == nil || len(got) != 0 {
				t.Errorf("LoadHistory() = %+v, want empty non-nil", got)
			}
		})
	}
}

func TestPersistence_LogsToCurrentLogger(t *testing.T) {
	p := NewPersistence(NewMemoryKV())
	_ = p.kv.Set(KeySavedChats, "not json")

	old := observability.Logger()
	defer observability.SetLogger(old)
	var buf bytes.Buffer
	observability.SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	p.LoadHistory()

	if !strings.Contains(buf.String(), "discarding unparseable history") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestPersistence_LegacyFormat(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Set(KeySavedChats, `[{"type":"outgoing","text":"Hi\n📎 a.png","hasFile":true},{"type":"incoming","text":"An image","isLoading":false}]`)

	got := NewPersistence(kv).LoadHistory()
	if len(got) != 2 {
		t.Fatalf("got %d messages", len(got))
	}
	for _, m := range got {
		if m.ID == "" {
			t.Error("loaded messages should get ids")
		}
	}
	if !got[0].HasFile || !strings.Contains(got[0].Text, "a.png") {
		t.Errorf("first message = %+v", got[0])
	}
}

func TestPersistence_InterruptedLoadingBecomesError(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Set(KeySavedChats, `[{"type":"outgoing","text":"q"},{"type":"incoming","text":"","isLoading":true}]`)

	got := NewPersistence(kv).LoadHistory()
	last := got[len(got)-1]
	if last.IsLoading {
		t.Error("no message should be loading after startup")
	}
	if !last.IsError || last.Text != models.InterruptedText {
		t.Errorf("interrupted message = %+v", last)
	}
}

func TestPersistence_Theme(t *testing.T) {
	kv := NewMemoryKV()
	p := NewPersistence(kv)

	if p.LoadTheme() != models.ThemeDark {
		t.Error("default theme should be dark")
	}

	if err := p.SaveTheme(models.ThemeLight); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := kv.Get(KeyThemeColor); v != "light_mode" {
		t.Errorf("stored theme = %q", v)
	}
	if p.LoadTheme() != models.ThemeLight {
		t.Error("LoadTheme() should return light")
	}

	_ = kv.Set(KeyThemeColor, "purple")
	if p.LoadTheme() != models.ThemeDark {
		t.Error("unknown theme values should read as dark")
	}
}

func TestPersistence_ClearHistory(t *testing.T) {
	kv := NewMemoryKV()
	p := NewPersistence(kv)
	_ = p.SaveHistory([]models.Message{models.NewOutgoing("x", false)})
	_ = p.SaveTheme(models.ThemeLight)

	if err := p.ClearHistory(); err != nil {
		t.Fatal(err)
	}
	if len(p.LoadHistory()) != 0 {
		t.Error("history should be empty after clear")
	}
	if p.LoadTheme() != models.ThemeLight {
		t.Error("clear should not touch the theme")
	}
}
