// Package presentation formats command output as JSON or aligned text.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	asJSON bool
}

// NewFormatter creates a text formatter.
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{writer: writer}
}

// NewJSONFormatter creates a formatter emitting indented JSON.
func NewJSONFormatter(writer io.Writer) *Formatter {
	return &Formatter{writer: writer, asJSON: true}
}

// FormatCells writes one row per cell.
func (f *Formatter) FormatCells(cells []CellDTO) error {
	if f.asJSON {
		return f.encode(cells)
	}
	rows := [][]string{{"INDEX", "ID", "KIND", "MODE", "IDENTITY"}}
	for _, c := range cells {
		mode := c.Mode
		if mode == "" {
			mode = "-"
		} else if !c.Managed {
			mode += "*"
		}
		identity := c.Identity
		if identity == "" {
			identity = "-"
		}
		rows = append(rows, []string{fmt.Sprint(c.Index), c.ID, c.Kind, mode, identity})
	}
	return f.table(rows)
}

// FormatLanguages writes one row per language.
func (f *Formatter) FormatLanguages(langs []LanguageDTO) error {
	if f.asJSON {
		return f.encode(langs)
	}
	rows := [][]string{{"NAME", "MIME", "EXTENSIONS", "ALIASES"}}
	for _, l := range langs {
		rows = append(rows, []string{l.Name, l.Mime, orDash(strings.Join(l.Extensions, ",")), orDash(strings.Join(l.Aliases, ","))})
	}
	return f.table(rows)
}

// FormatSwitchResult writes the outcome of a kernel switch. In text mode a
// dry run prints the diff only.
func (f *Formatter) FormatSwitchResult(r SwitchResultDTO) error {
	if f.asJSON {
		return f.encode(r)
	}
	var err error
	switch {
	case r.DryRun && r.Changed:
		_, err = io.WriteString(f.writer, r.Diff)
	case !r.Changed:
		_, err = fmt.Fprintf(f.writer, "cell %d already runs in %s\n", r.Index, r.To)
	default:
		_, err = fmt.Fprintf(f.writer, "cell %d: %s -> %s\n", r.Index, r.From, r.To)
	}
	return err
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// table pads columns to their widest cell.
func (f *Formatter) table(rows [][]string) error {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
