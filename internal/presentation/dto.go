package presentation

import (
	"github.com/ilegend/legendnb/internal/directive"
	"github.com/ilegend/legendnb/internal/highlight"
	"github.com/ilegend/legendnb/internal/notebook"
)

// CellDTO describes one notebook cell for the kernels command.
type CellDTO struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Mode     string `json:"mode,omitempty"`
	Identity string `json:"identity,omitempty"`
	Managed  bool   `json:"managed"`
}

// LanguageDTO describes a registered highlighting language.
type LanguageDTO struct {
	Name       string   `json:"name"`
	Mime       string   `json:"mime"`
	Aliases    []string `json:"aliases"`
	Extensions []string `json:"extensions"`
}

// SwitchResultDTO reports what a kernel switch did.
type SwitchResultDTO struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Changed bool   `json:"changed"`
	DryRun  bool   `json:"dry_run"`
	Diff    string `json:"diff,omitempty"`
}

// FromCell converts a cell at zero-based position i. Index is one-based, as
// shown in the notebook view. Mode is only set for code cells.
func FromCell(i int, c *notebook.Cell, managed func(identity string) bool) CellDTO {
	dto := CellDTO{
		Index: i + 1,
		ID:    c.ID(),
		Kind:  string(c.Kind()),
	}
	if c.IsCode() {
		dto.Identity = c.LanguageIdentity()
		dto.Mode = directive.DeriveMode(c.Lines()).String()
		dto.Managed = managed != nil && managed(c.LanguageIdentity())
	}
	return dto
}

// FromDocument converts every cell of doc. codeOnly drops markdown and raw cells.
func FromDocument(doc *notebook.Document, managed func(identity string) bool, codeOnly bool) []CellDTO {
	out := make([]CellDTO, 0, doc.Len())
	for i, c := range doc.Cells() {
		if codeOnly && !c.IsCode() {
			continue
		}
		out = append(out, FromCell(i, c, managed))
	}
	return out
}

// FromLanguages converts registry entries.
func FromLanguages(specs []highlight.LanguageSpec) []LanguageDTO {
	out := make([]LanguageDTO, len(specs))
	for i, s := range specs {
		aliases := s.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		exts := s.Extensions
		if exts == nil {
			exts = []string{}
		}
		out[i] = LanguageDTO{Name: s.Name, Mime: s.Mime, Aliases: aliases, Extensions: exts}
	}
	return out
}
