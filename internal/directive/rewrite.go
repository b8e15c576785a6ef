package directive

import "strings"

// SplitLines splits a cell source into body lines.
func SplitLines(source string) []string {
	return strings.Split(source, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// DeriveMode returns the mode declared by the first body line. The
// "#kernel:" prefix is matched case-insensitively, the language name
// exactly; anything else, including an empty body, is Legend.
func DeriveMode(lines []string) Mode {
	if len(lines) == 0 {
		return Legend
	}
	if rest, ok := cutPrefixFold(strings.TrimSpace(lines[0]), DirectivePrefix); ok && rest == " Python" {
		return Python
	}
	return Legend
}

// IsDirectiveLine reports whether line is a kernel directive of any language.
func IsDirectiveLine(line string) bool {
	_, ok := cutPrefixFold(strings.TrimSpace(line), DirectivePrefix)
	return ok
}

// IsHeaderLine reports whether line is the Python boilerplate header.
func IsHeaderLine(line string) bool {
	return strings.TrimSpace(line) == PythonHeader
}

// Result is a rewritten cell body.
type Result struct {
	Mode       Mode
	Lines      []string
	CursorLine int
}

// Source returns the rewritten body as cell text.
func (r Result) Source() string {
	return JoinLines(r.Lines)
}

// Rewrite normalizes lines for mode m. Every directive line and every
// header line is removed wherever it appears; for Python a fresh directive
// and header are prepended. The input slice is not modified.
func Rewrite(lines []string, m Mode) Result {
	body := make([]string, 0, len(lines)+2)
	if m == Python {
		body = append(body, PythonDirective, PythonHeader)
	}
	for _, line := range lines {
		if IsDirectiveLine(line) || IsHeaderLine(line) {
			continue
		}
		body = append(body, line)
	}
	return Result{Mode: m, Lines: body, CursorLine: m.CursorLine()}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
