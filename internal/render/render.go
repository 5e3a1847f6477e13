// Package render formats manifests and cycle results for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/term"

	"github.com/wilbur182/pagegen/internal/manifest"
	"github.com/wilbur182/pagegen/internal/pages"
	"github.com/wilbur182/pagegen/internal/styles"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ManifestJSON encodes paths exactly as the manifest file stores them.
func ManifestJSON(paths []string) ([]byte, error) {
	return manifest.Encode(paths)
}

// Manifest writes paths as manifest JSON, syntax highlighted when color is set.
func Manifest(w io.Writer, paths []string, color bool) error {
	data, err := ManifestJSON(paths)
	if err != nil {
		return err
	}
	if !color {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if err := HighlightJSON(w, string(data), styles.Current().SyntaxTheme); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// HighlightJSON writes src with terminal color codes using the named chroma style.
func HighlightJSON(w io.Writer, src, theme string) error {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get(theme)
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return err
	}
	return formatter.Format(w, style, iterator)
}

// Cycle renders a one-line summary of a cycle result.
func Cycle(res pages.CycleResult) string {
	ts := styles.Muted.Render(res.Started.Format("15:04:05"))
	took := styles.Muted.Render(res.Duration.Round(time.Microsecond).String())

	switch {
	case res.Err != nil:
		return fmt.Sprintf("%s %s %s", ts, styles.Failed.Render("error"), res.Err)
	case res.Written:
		return fmt.Sprintf("%s %s %s (%s, %s)", ts, styles.OK.Render("updated"), string(res.Trigger), plural(len(res.Paths), "page"), took)
	default:
		return fmt.Sprintf("%s %s %s (%s, %s)", ts, styles.Muted.Render("unchanged"), string(res.Trigger), plural(len(res.Paths), "page"), took)
	}
}

// PageList renders paths one per line with a leading marker.
func PageList(paths []string) string {
	if len(paths) == 0 {
		return styles.Muted.Render("no pages")
	}
	var sb strings.Builder
	for i, p := range paths {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(styles.Muted.Render("•") + " " + styles.Path.Render(p))
	}
	return sb.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
