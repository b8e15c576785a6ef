// Package directive decides which kernel language a notebook cell runs in.
//
// The choice lives in the cell's own text as a leading directive line,
//
//	#Kernel: Python
//	#Code in Python below. Don't Remove this Header!!
//
// and is mirrored by a per-cell selector binding. A cell without a
// recognized directive runs in the host language, Legend.
package directive

import "fmt"

// Mode is the language a cell runs in.
type Mode int

const (
	// Legend is the host language and the default when no directive is present.
	Legend Mode = iota
	// Python is selected by the "#Kernel: Python" directive.
	Python
)

// Directive text, bit-exact.
const (
	DirectivePrefix = "#Kernel:"
	PythonDirective = "#Kernel: Python"
	PythonHeader    = "#Code in Python below. Don't Remove this Header!!"
)

// Default language identities.
const (
	LegendIdentity = "text/x-ilegend"
	PythonIdentity = "text/x-python"
)

func (m Mode) String() string {
	switch m {
	case Legend:
		return "Legend"
	case Python:
		return "Python"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Identity returns the default language identity for m.
func (m Mode) Identity() string {
	if m == Python {
		return PythonIdentity
	}
	return LegendIdentity
}

// CursorLine is the body line the caret lands on after switching to m:
// the first line after the directive block.
func (m Mode) CursorLine() int {
	if m == Python {
		return 2
	}
	return 0
}

// ParseMode maps a selector value to a Mode. The empty placeholder value and
// anything unrecognized select Legend.
func ParseMode(value string) Mode {
	if value == "Python" {
		return Python
	}
	return Legend
}

// ParseModeFold is ParseMode for command-line input, ignoring case.
func ParseModeFold(value string) (Mode, error) {
	switch {
	case equalFold(value, "python"):
		return Python, nil
	case equalFold(value, "legend"):
		return Legend, nil
	default:
		return Legend, fmt.Errorf("unknown kernel %q (want python or legend)", value)
	}
}

// SelectorOption is one entry of the kernel selector.
type SelectorOption struct {
	Label string
	Value string
}

// SelectorOptions returns the selector entries in display order. The
// placeholder has an empty value, which ParseMode maps to Legend.
func SelectorOptions() []SelectorOption {
	return []SelectorOption{
		{Label: "-- Select Kernel --", Value: ""},
		{Label: "Python", Value: "Python"},
		{Label: "Legend", Value: "Legend"},
	}
}

// Identities maps modes to language identities.
type Identities struct {
	Legend string
	Python string
}

// DefaultIdentities returns the built-in mapping.
func DefaultIdentities() Identities {
	return Identities{Legend: LegendIdentity, Python: PythonIdentity}
}

// For returns the identity for m, falling back to the default for empty fields.
func (ids Identities) For(m Mode) string {
	if m == Python {
		if ids.Python != "" {
			return ids.Python
		}
		return PythonIdentity
	}
	if ids.Legend != "" {
		return ids.Legend
	}
	return LegendIdentity
}
