// Package highlight turns cell lines into styled spans. Styles are pure
// functions of a dark/light flag; the only long-lived state is the Registry
// the host owns.
package highlight

// Tag classifies a span for styling.
type Tag int

const (
	TagNone Tag = iota
	TagKeyword
	TagNumber
	TagOperator
	TagIdentifier
	TagParen
	TagString
	TagComment

	// TagArrow marks the function applied by a pylegend arrow, "->filter".
	TagArrow
	// TagVariable marks a pylegend "$variable".
	TagVariable
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagKeyword:
		return "keyword"
	case TagNumber:
		return "number"
	case TagOperator:
		return "operator"
	case TagIdentifier:
		return "identifier"
	case TagParen:
		return "paren"
	case TagString:
		return "string"
	case TagComment:
		return "comment"
	case TagArrow:
		return "arrow"
	case TagVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Tags returns every styleable tag.
func Tags() []Tag {
	return []Tag{
		TagKeyword, TagNumber, TagOperator, TagIdentifier, TagParen,
		TagString, TagComment, TagArrow, TagVariable,
	}
}
