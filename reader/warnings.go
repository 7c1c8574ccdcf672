package reader

import "fmt"

// WarningCategory classifies a non-fatal finding.
type WarningCategory string

// Categories: syntax covers tolerated malformed structure, missing an
// unresolvable indirect object, filter a stream decode failure, font a
// font or CMap decode failure, and interpreter a content stream
// irregularity.
const (
	WarnSyntax      WarningCategory = "syntax"
	WarnMissing     WarningCategory = "missing"
	WarnFilter      WarningCategory = "filter"
	WarnFont        WarningCategory = "font"
	WarnInterpreter WarningCategory = "interpreter"
)

// Warning is a non-fatal finding accumulated during reading. Damage to
// one stream, page, or font never prevents extraction from the others.
type Warning struct {
	Category WarningCategory
	Message  string
	Page     int // 1-based page number, 0 when not page-specific
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("[%s] page %d: %s", w.Category, w.Page, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Category, w.Message)
}
