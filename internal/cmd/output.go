package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/progress"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/tui"
	"github.com/padup/padup/internal/ux"
)

// printer writes command results to stdout and notices to stderr.
type printer struct {
	out         io.Writer
	errOut      io.Writer
	format      string
	quiet       bool
	styles      tui.Styles
	interactive func() bool
}

func newPrinter(out, errOut io.Writer, g *globalFlags, interactive func() bool) *printer {
	if interactive == nil {
		interactive = tui.ShouldPrompt
	}
	return &printer{
		out:         out,
		errOut:      errOut,
		format:      g.Format,
		quiet:       g.Quiet,
		styles:      styles(g.NoColor),
		interactive: interactive,
	}
}

// render writes data in the selected format. In text mode data must be a
// string, a ux.Tabular or a fmt.Stringer.
func (p *printer) render(data any) error {
	return ux.Render(p.out, p.format, data)
}

// show renders raw in structured formats and text otherwise.
func (p *printer) show(raw, text any) error {
	if p.format == "text" {
		return p.render(text)
	}
	return p.render(raw)
}

// success reports a completed action. Structured formats get
// {"message": msg}.
func (p *printer) success(msg string) error {
	if p.format != "text" {
		return p.render(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.out, p.styles.Success.Render("✓ "+msg))
	return err
}

// notice writes a status line to stderr unless --quiet is set.
func (p *printer) notice(msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.errOut, p.styles.Muted.Render(msg))
}

// warn writes a warning to stderr unless --quiet is set.
func (p *printer) warn(msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.errOut, p.styles.Warning.Render("! "+msg))
}

// navigation announces route changes that carry a reason, such as the
// redirect to the login page after the API rejects the session.
func (p *printer) navigation(nav router.Navigation) {
	if nav.Reason == "" || p.quiet {
		return
	}
	line := fmt.Sprintf("→ %s (%s)", nav.To, nav.Reason)
	if nav.To == router.PathLogin && nav.Replace {
		fmt.Fprintln(p.errOut, p.styles.Warning.Render(line))
		return
	}
	fmt.Fprintln(p.errOut, p.styles.Muted.Render(line))
}

// spin shows the loading indicator while fn runs.
func (p *printer) spin(message string, fn func() error) error {
	return progress.Run(message, progress.Options{
		Writer:  p.errOut,
		Animate: !p.quiet && p.interactive(),
		Plain:   !p.quiet && tui.InCI(),
	}, fn)
}

// input returns value when set. Otherwise it prompts when the terminal is
// interactive and fails with a usage error naming flag when it is not.
func (p *printer) input(value, flag string, prompt tui.Prompt) (string, error) {
	if value != "" {
		return value, nil
	}
	if !p.interactive() {
		if !prompt.Required {
			return "", nil
		}
		return "", missing(flag)
	}
	return tui.Ask(prompt)
}

// secret is input for masked values.
func (p *printer) secret(value, flag, message string) (string, error) {
	return p.input(value, flag, tui.Prompt{Message: message, Required: true, Secret: true})
}

// confirm asks a yes/no question. Non-interactive runs need assume to be
// true, which --yes sets.
func (p *printer) confirm(message string, assume bool) (bool, error) {
	if assume {
		return true, nil
	}
	if !p.interactive() {
		return false, errors.New(errors.ErrCodeValidationRequired, "confirmation required").
			WithSuggestion("Pass --yes to confirm without a prompt")
	}
	return tui.Confirm(message, false)
}

func missing(flag string) error {
	return errors.New(errors.ErrCodeValidationRequired, "--"+flag+" is required").
		WithSuggestion("Pass --" + flag + " or run in an interactive terminal to be prompted")
}

// kv renders label/value pairs as aligned text.
type kv [][2]string

func (k kv) String() string {
	width := 0
	for _, pair := range k {
		if len(pair[0]) > width {
			width = len(pair[0])
		}
	}
	var b strings.Builder
	for i, pair := range k {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-*s  %s", width+1, pair[0]+":", pair[1])
	}
	return b.String()
}
