package tracing

// Span names.
const (
	SpanApplyMode    = "directive.apply_mode"
	SpanLoadLanguage = "highlight.load_language"
)

// spanPrefixes cover every span name above.
var spanPrefixes = []string{"directive.", "highlight."}

// Span attribute keys.
const (
	AttrCellID       = "cell.id"
	AttrModeFrom     = "mode.from"
	AttrModeTo       = "mode.to"
	AttrMutated      = "mode.mutated"
	AttrIdentity     = "language.identity"
	AttrLanguageName = "language.name"
	AttrThemeName    = "theme.name"
	AttrThemeDark    = "theme.dark"
)
