package legal

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// DefaultCharsPerPage is the fixed characters-per-page constant used to
// estimate page numbers from byte offsets when the OCR text carries no
// page-break markers.
const DefaultCharsPerPage = 1800

// articleHeaderRe matches article headers of the form "제 10 조" with an
// optional suffix ("제10조의2") and an optional bracketed title.
var articleHeaderRe = regexp.MustCompile(`제\s*(\d+)\s*조(?:의\s*(\d+))?(?:\s*[(\[]([^)\]]*)[)\]])?`)

// paragraphMarkerRe matches the fixed alphabet of circled-number glyphs
// used as paragraph markers.
var paragraphMarkerRe = regexp.MustCompile(`[①②③④⑤⑥⑦⑧⑨⑩⑪⑫⑬⑭⑮]`)

// Subclause grammars. Decimal items ("1. ") and Korean-syllable items
// ("가. ") are independent conventions; an article may use either or both.
// A marker must open its span or follow whitespace, otherwise the final
// syllable of ordinary prose ("...합니다. ") would read as a marker.
var (
	decimalSubclauseRe = regexp.MustCompile(`(?:^|\s)(\d{1,2})\.\s`)
	koreanSubclauseRe  = regexp.MustCompile(`(?:^|\s)([가나다라마바사아자차카타파하])\.\s`)
)

// exceptionKeywords is the fixed proviso vocabulary scanned for in each
// paragraph. Presence of any entry flags the paragraph as carrying an
// exception clause.
var exceptionKeywords = []string{"다만", "단서", "제외하고", "제외한", "단,"}

// Parser turns raw policy text into a Document. It holds only immutable
// configuration and is safe for concurrent use.
type Parser struct {
	charsPerPage int
	logger       *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithCharsPerPage overrides the characters-per-page constant used for
// page estimation.
func WithCharsPerPage(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.charsPerPage = n
		}
	}
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		charsPerPage: DefaultCharsPerPage,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts raw text into a Document. It never returns an error:
// malformed input yields a best-effort structure with diagnostics attached
// and a reduced confidence score. An input with no recognizable articles
// yields zero articles, one parsing error and confidence 0.
func (p *Parser) Parse(text string) *Document {
	doc := &Document{}

	headers := articleHeaderRe.FindAllStringSubmatchIndex(text, -1)
	if len(headers) == 0 {
		doc.ParsingErrors = append(doc.ParsingErrors, "no articles found")
		doc.ParsingConfidence = 0.0
		p.logger.Warn("no article headers recognized", "text_len", len(text))
		return doc
	}

	for i, h := range headers {
		start := h[0]
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}

		article := Article{
			Number:   canonicalArticleNumber(text, h),
			Title:    submatch(text, h, 3),
			Page:     start/p.charsPerPage + 1,
			Position: start,
			RawText:  text[start:end],
		}

		body := text[h[1]:end]
		article.Paragraphs = p.parseParagraphs(doc, body, h[1], article.Number)
		doc.Articles = append(doc.Articles, article)
	}

	doc.ParsingConfidence = p.scoreConfidence(doc)
	p.logger.Debug("parsed document",
		"articles", len(doc.Articles),
		"errors", len(doc.ParsingErrors),
		"warnings", len(doc.ParsingWarnings),
		"confidence", doc.ParsingConfidence)
	return doc
}

// parseParagraphs splits an article body into paragraphs. base is the byte
// offset of the body within the original text, so recorded positions stay
// absolute.
func (p *Parser) parseParagraphs(doc *Document, body string, base int, articleNum string) []Paragraph {
	markers := paragraphMarkerRe.FindAllStringIndex(body, -1)
	if len(markers) == 0 {
		doc.ParsingWarnings = append(doc.ParsingWarnings,
			fmt.Sprintf("%s: no paragraph markers, treating body as one paragraph", articleNum))
		return []Paragraph{p.newParagraph("", body, base, base)}
	}

	paragraphs := make([]Paragraph, 0, len(markers))
	for i, m := range markers {
		end := len(body)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		marker := body[m[0]:m[1]]
		span := body[m[1]:end]
		if strings.TrimSpace(span) == "" {
			doc.ParsingWarnings = append(doc.ParsingWarnings,
				fmt.Sprintf("%s %s: empty paragraph", articleNum, marker))
		}
		paragraphs = append(paragraphs, p.newParagraph(marker, span, base+m[0], base+m[1]))
	}
	return paragraphs
}

// newParagraph builds a paragraph from the untrimmed span following its
// marker, detecting exception keywords and subclauses. position is the
// marker's byte offset in the original text; spanBase is the span's, so
// subclause positions stay absolute.
func (p *Parser) newParagraph(marker, span string, position, spanBase int) Paragraph {
	text := strings.TrimSpace(span)
	para := Paragraph{
		Number:   marker,
		Text:     text,
		Position: position,
	}
	for _, kw := range exceptionKeywords {
		if strings.Contains(text, kw) {
			para.HasException = true
			para.ExceptionKeywords = append(para.ExceptionKeywords, kw)
		}
	}
	para.Subclauses = parseSubclauses(span, spanBase)
	return para
}

// parseSubclauses runs both subclause grammars over a paragraph span.
// Each grammar segments independently: a decimal item ends at the next
// decimal marker, a Korean-letter item at the next Korean-letter marker.
// The combined result is ordered by position so offsets stay monotonic
// within the paragraph. base is the span's byte offset in the original
// text.
func parseSubclauses(text string, base int) []Subclause {
	var subclauses []Subclause
	subclauses = append(subclauses, subclausesByGrammar(decimalSubclauseRe, text, base)...)
	subclauses = append(subclauses, subclausesByGrammar(koreanSubclauseRe, text, base)...)
	sort.Slice(subclauses, func(i, j int) bool {
		return subclauses[i].Position < subclauses[j].Position
	})
	return subclauses
}

func subclausesByGrammar(re *regexp.Regexp, text string, base int) []Subclause {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	subclauses := make([]Subclause, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			// Up to the next item's marker, not its leading whitespace.
			end = matches[i+1][2]
		}
		subclauses = append(subclauses, Subclause{
			Number:   text[m[2]:m[3]],
			Text:     strings.TrimSpace(text[m[1]:end]),
			Position: base + m[2],
		})
	}
	return subclauses
}

// scoreConfidence computes the deterministic parse-confidence score:
// start at 1.0, subtract capped penalties for errors and warnings, then
// penalize documents where few articles have recognizable paragraph
// structure.
func (p *Parser) scoreConfidence(doc *Document) float64 {
	conf := 1.0
	conf -= min(0.5, 0.1*float64(len(doc.ParsingErrors)))
	conf -= min(0.2, 0.05*float64(len(doc.ParsingWarnings)))

	withParagraphs := 0
	for _, a := range doc.Articles {
		if len(a.Paragraphs) > 0 && a.Paragraphs[0].Number != "" {
			withParagraphs++
		}
	}
	if len(doc.Articles) > 0 {
		ratio := float64(withParagraphs) / float64(len(doc.Articles))
		switch {
		case ratio < 0.5:
			conf -= 0.2
		case ratio < 0.8:
			conf -= 0.1
		}
	}

	return max(0.0, min(1.0, conf))
}

// canonicalArticleNumber rebuilds the marker without OCR whitespace,
// e.g. "제 10 조" -> "제10조", "제3조의 2" -> "제3조의2".
func canonicalArticleNumber(text string, h []int) string {
	num := text[h[2]:h[3]]
	if h[4] >= 0 {
		return fmt.Sprintf("제%s조의%s", num, text[h[4]:h[5]])
	}
	return fmt.Sprintf("제%s조", num)
}

func submatch(text string, h []int, n int) string {
	if h[2*n] < 0 {
		return ""
	}
	return strings.TrimSpace(text[h[2*n] : h[2*n+1]])
}
