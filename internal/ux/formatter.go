package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/padup/padup/internal/errors"
)

// Formats accepted by --format and defaults.format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormat reports an error for anything but text, json and yaml.
func ValidFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return errors.New(errors.ErrCodeConfigInvalid, "unknown output format: "+format).
		WithSuggestion("Use one of: text, json, yaml")
}

// Render writes v to w in format. JSON keeps '&' and '<' unescaped so that
// checkout and document URLs can be copied from the output. In text mode v
// must be a string, a Tabular or a fmt.Stringer.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return renderText(w, v)
	default:
		return ValidFormat(format)
	}
}

func renderText(w io.Writer, v any) error {
	switch t := v.(type) {
	case string:
		_, err := fmt.Fprintln(w, t)
		return err
	case Tabular:
		return t.Table().Write(w)
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, t.String())
		return err
	}
	return fmt.Errorf("no text rendering for %T", v)
}

// Table is a header row plus data rows. Empty is printed instead of the
// header when there are no rows.
type Table struct {
	Headers []string
	Rows    [][]string
	Empty   string
}

// Tabular is implemented by results that print as a table in text mode.
type Tabular interface {
	Table() Table
}

// Write aligns the columns with two spaces of padding. Tabs and newlines in
// cells are flattened so a listing description cannot break the layout.
func (t Table) Write(w io.Writer) error {
	if len(t.Rows) == 0 && t.Empty != "" {
		_, err := fmt.Fprintln(w, t.Empty)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cellReplacer.Replace(c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

var cellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ")
