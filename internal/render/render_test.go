package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/glamour"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/models"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Theme != models.ThemeDark || opts.GlamourStyle() != "dark" {
		t.Errorf("expected dark style, got %s", opts.GlamourStyle())
	}
	if !opts.Enabled || !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.InlineTableLinks {
		t.Error("expected InlineTableLinks=false")
	}
}

func TestOptionsBuilders(t *testing.T) {
	opts := DefaultOptions().WithWidth(120).WithTheme(models.ThemeLight).WithEnabled(false)

	if opts.Width != 120 {
		t.Errorf("Width = %d", opts.Width)
	}
	if opts.GlamourStyle() != "light" {
		t.Errorf("GlamourStyle() = %s", opts.GlamourStyle())
	}
	if opts.Enabled {
		t.Error("Enabled should be false")
	}
}

func TestMarkdown_Renders(t *testing.T) {
	out, err := Markdown("# Title\n\nSome **bold** text", DefaultOptions())
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Errorf("rendered output missing content: %q", out)
	}
	if strings.Contains(out, "**") {
		t.Errorf("emphasis markers should be rendered away: %q", out)
	}
}

func TestMarkdown_Disabled(t *testing.T) {
	in := "# raw **text**"
	out, err := Markdown(in, DefaultOptions().WithEnabled(false))
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("disabled rendering should pass text through, got %q", out)
	}
}

func TestMarkdown_LightTheme(t *testing.T) {
	out, err := Markdown("hello", DefaultOptions().WithTheme(models.ThemeLight))
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("output = %q", out)
	}
}

func TestMarkdownOrPlain(t *testing.T) {
	if got := MarkdownOrPlain("plain", DefaultOptions().WithEnabled(false)); got != "plain" {
		t.Errorf("MarkdownOrPlain() = %q", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Markdown.Enabled = false
	cfg.Markdown.InlineTableLinks = true

	opts := OptionsFromConfig(cfg, models.ThemeLight, 42)
	if opts.Enabled || !opts.InlineTableLinks || opts.Width != 42 || opts.Theme != models.ThemeLight {
		t.Errorf("OptionsFromConfig() = %+v", opts)
	}
}

func TestCacheKey(t *testing.T) {
	base := DefaultOptions()

	if cacheKey(base) == cacheKey(base.WithWidth(100)) {
		t.Error("Different widths should produce different keys")
	}
	if cacheKey(base) == cacheKey(base.WithTheme(models.ThemeLight)) {
		t.Error("Different themes should produce different keys")
	}
	if cacheKey(base) != cacheKey(base.WithEnabled(false)) {
		t.Error("Enabled does not change the renderer")
	}
	if cacheKey(base.WithTheme("sepia")) != cacheKey(base) {
		t.Error("Unknown themes should share the dark renderer")
	}
}

func TestRendererReuse(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	r1, err := renderers.acquire(opts)
	if err != nil || r1 == nil {
		t.Fatalf("acquire() = %v, %v", r1, err)
	}
	if CacheSize() != 1 {
		t.Errorf("expected 1 configuration, got %d", CacheSize())
	}
	renderers.release(opts, r1)

	r2, err := renderers.acquire(opts.WithEnabled(false))
	if err != nil {
		t.Fatal(err)
	}
	if r2 != r1 {
		t.Error("released renderer should be handed out again")
	}
	renderers.release(opts, r2)

	light := opts.WithTheme(models.ThemeLight)
	r3, err := renderers.acquire(light)
	if err != nil || r3 == nil || r3 == r1 {
		t.Fatalf("acquire(light) = %v, %v", r3, err)
	}
	if CacheSize() != 2 {
		t.Errorf("expected 2 configurations, got %d", CacheSize())
	}
	renderers.release(light, r3)
	renderers.release(light, nil)
}

func TestRendererIdleLimit(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	var held []*glamour.TermRenderer
	for i := 0; i < maxIdle+2; i++ {
		r, err := renderers.acquire(opts)
		if err != nil {
			t.Fatal(err)
		}
		held = append(held, r)
	}
	for _, r := range held {
		renderers.release(opts, r)
	}

	renderers.mu.Lock()
	idle := len(renderers.idle[cacheKey(opts)])
	renderers.mu.Unlock()
	if idle != maxIdle {
		t.Errorf("idle renderers = %d, want %d", idle, maxIdle)
	}
}

func TestPoolConcurrency(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Markdown("# Test", opts); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render error: %v", err)
	}
}

func TestTUIThemes(t *testing.T) {
	defer SetTUITheme(models.ThemeDark)

	if GetTUITheme().Name != models.ThemeDark {
		t.Errorf("default palette = %s", GetTUITheme().Name)
	}

	SetTUITheme(models.ThemeLight)
	if GetTUITheme().Name != models.ThemeLight {
		t.Errorf("palette after SetTUITheme(light) = %s", GetTUITheme().Name)
	}

	for _, th := range []TUITheme{DarkTheme, LightTheme} {
		if th.Primary == "" || th.Text == "" || th.Error == "" || len(th.Gradient) == 0 {
			t.Errorf("palette %s has empty colors", th.Name)
		}
	}
	if TUIThemeFor("unknown").Name != models.ThemeDark {
		t.Error("unknown themes should map to dark")
	}
}
