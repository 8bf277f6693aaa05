package render

import (
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/diogo/geminichat/internal/models"
)

// maxIdle bounds how many idle renderers are kept per configuration
const maxIdle = 4

// rendererCache hands out glamour renderers per Options value. A
// TermRenderer must not render concurrently, so each caller borrows one and
// returns it when done.
type rendererCache struct {
	mu   sync.Mutex
	idle map[Options][]*glamour.TermRenderer
}

var renderers = &rendererCache{
	idle: make(map[Options][]*glamour.TermRenderer),
}

// cacheKey keeps only the fields that change the renderer output
func cacheKey(opts Options) Options {
	opts.Enabled = true
	if opts.Theme != models.ThemeLight {
		opts.Theme = models.ThemeDark
	}
	return opts
}

func (c *rendererCache) acquire(opts Options) (*glamour.TermRenderer, error) {
	key := cacheKey(opts)

	c.mu.Lock()
	free, seen := c.idle[key]
	if !seen {
		c.idle[key] = nil
	}
	if n := len(free); n > 0 {
		r := free[n-1]
		c.idle[key] = free[:n-1]
		c.mu.Unlock()
		return r, nil
	}
	c.mu.Unlock()

	return newRenderer(key)
}

func (c *rendererCache) release(opts Options, r *glamour.TermRenderer) {
	if r == nil {
		return
	}
	key := cacheKey(opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.idle[key]) < maxIdle {
		c.idle[key] = append(c.idle[key], r)
	}
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStandardStyle(opts.GlamourStyle()),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every idle renderer.
func ClearCache() {
	renderers.mu.Lock()
	renderers.idle = make(map[Options][]*glamour.TermRenderer)
	renderers.mu.Unlock()
}

// CacheSize returns the number of renderer configurations seen.
func CacheSize() int {
	renderers.mu.Lock()
	defer renderers.mu.Unlock()
	return len(renderers.idle)
}
