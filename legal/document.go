// Package legal parses OCR output of Korean insurance policy documents
// into the three-level Article/Paragraph/Subclause hierarchy used by the
// legal drafting convention. Parsing is best-effort: malformed input is
// never fatal and is surfaced as structured diagnostics on the Document.
package legal

// Document is the parsed form of one policy text. It is created once by
// Parser.Parse and is immutable afterwards; downstream stages only read it.
type Document struct {
	// Articles in document order.
	Articles []Article `json:"articles"`

	// ParsingConfidence is a deterministic score in [0,1] describing how
	// well the text matched the expected legal structure.
	ParsingConfidence float64 `json:"parsing_confidence"`

	// ParsingErrors and ParsingWarnings are append-only diagnostics
	// recorded during parsing. Errors never abort the parse.
	ParsingErrors   []string `json:"parsing_errors,omitempty"`
	ParsingWarnings []string `json:"parsing_warnings,omitempty"`
}

// Article is one "제N조" unit. Its span runs from its header to the next
// article header (or end of text).
type Article struct {
	// Number is the full article marker as written, e.g. "제10조".
	Number string `json:"article_num"`

	// Title is the bracketed title following the marker, if any.
	Title string `json:"title,omitempty"`

	// Page is an estimate derived from the byte offset and a fixed
	// characters-per-page constant. OCR output does not reliably keep
	// page breaks, so this field is non-authoritative.
	Page int `json:"page"`

	// Position is the byte offset of the article header in the original text.
	Position int `json:"position"`

	// RawText is the full article span, header included.
	RawText string `json:"raw_text"`

	Paragraphs []Paragraph `json:"paragraphs"`
}

// Paragraph is one circled-number ("①", "②", ...) unit inside an article.
// When an article has no paragraph markers its whole body becomes a single
// unnumbered paragraph.
type Paragraph struct {
	// Number is the enumerated marker glyph, empty for an implicit paragraph.
	Number string `json:"paragraph_num,omitempty"`

	Text string `json:"text"`

	// Position is the byte offset of the marker in the original text.
	Position int `json:"position"`

	// HasException reports whether the paragraph carries a proviso such as
	// "다만" that typically narrows or reverses the main rule.
	HasException bool `json:"has_exception"`

	// ExceptionKeywords lists which proviso keywords matched.
	ExceptionKeywords []string `json:"exception_keywords,omitempty"`

	Subclauses []Subclause `json:"subclauses,omitempty"`
}

// Subclause is a "1." or "가." item inside a paragraph. Both numbering
// conventions can appear in the same paragraph; they are parsed
// independently.
type Subclause struct {
	// Number is the marker token without the trailing dot, e.g. "1" or "가".
	Number string `json:"subclause_num"`

	Text string `json:"text"`

	// Position is the byte offset of the marker in the original text.
	Position int `json:"position"`
}

// ClauseTexts returns the text of every paragraph in document order.
// Relation extraction operates per paragraph, so this is the unit of work
// for the downstream LLM stage.
func (d *Document) ClauseTexts() []string {
	var texts []string
	for _, a := range d.Articles {
		for _, p := range a.Paragraphs {
			texts = append(texts, p.Text)
		}
	}
	return texts
}
