package render

import "strings"

// Markdown renders content for the terminal. With rendering disabled the
// content is returned as is.
func Markdown(content string, opts Options) (string, error) {
	if !opts.Enabled {
		return content, nil
	}

	renderer, err := renderers.acquire(opts)
	if err != nil {
		return "", err
	}
	defer renderers.release(opts, renderer)

	out, err := renderer.Render(content)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// MarkdownOrPlain renders content, falling back to the raw text on error.
func MarkdownOrPlain(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return out
}
