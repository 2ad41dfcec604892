package ontology

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultFuzzyThreshold is the minimum normalized string similarity for a
// fuzzy match to be accepted.
const DefaultFuzzyThreshold = 0.7

// Match methods, in lookup order. The first method that succeeds wins.
const (
	MethodExact   = "exact"
	MethodKCDCode = "kcd_code"
	MethodSynonym = "synonym"
	MethodFuzzy   = "fuzzy"
	MethodNone    = "none"
)

// codeTokenRe finds KCD code tokens inside a query, including range forms.
var codeTokenRe = regexp.MustCompile(`\b[A-Z]\d{2}(?:-[A-Z]?\d{2})?\b`)

// LinkResult is the outcome of resolving one query.
type LinkResult struct {
	// Entity is the matched canonical entry, nil when nothing matched.
	Entity *Disease `json:"matched_entity"`

	// Score is 1.0 for exact/code/synonym matches, the similarity for
	// fuzzy matches, and 0.0 for no match.
	Score float64 `json:"match_score"`

	// Method names the lookup stage that produced the match.
	Method string `json:"match_method"`
}

// Linker resolves disease mentions against a Catalog. It is immutable
// and safe for concurrent use.
type Linker struct {
	catalog        *Catalog
	fuzzyThreshold float64
}

// LinkerOption configures a Linker.
type LinkerOption func(*Linker)

// WithFuzzyThreshold overrides the fuzzy-match acceptance threshold.
func WithFuzzyThreshold(t float64) LinkerOption {
	return func(l *Linker) {
		if t > 0 && t <= 1 {
			l.fuzzyThreshold = t
		}
	}
}

// NewLinker creates a Linker over the given catalog.
func NewLinker(catalog *Catalog, opts ...LinkerOption) *Linker {
	l := &Linker{
		catalog:        catalog,
		fuzzyThreshold: DefaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Link resolves one query. Lookup order is fixed and deterministic:
// exact case-insensitive name match, then KCD code token match, then
// synonym table, then fuzzy similarity against all known names. The
// first successful method wins.
func (l *Linker) Link(query string) LinkResult {
	key := normalize(query)
	if key == "" {
		return LinkResult{Method: MethodNone}
	}

	if d, ok := l.catalog.nameIndex[key]; ok {
		return LinkResult{Entity: d, Score: 1.0, Method: MethodExact}
	}

	if d := l.linkByCode(query); d != nil {
		return LinkResult{Entity: d, Score: 1.0, Method: MethodKCDCode}
	}

	if d, ok := l.catalog.synonymIndex[key]; ok {
		return LinkResult{Entity: d, Score: 1.0, Method: MethodSynonym}
	}

	if d, score := l.linkFuzzy(key); d != nil {
		return LinkResult{Entity: d, Score: score, Method: MethodFuzzy}
	}

	return LinkResult{Method: MethodNone}
}

// LinkAll resolves queries independently, preserving input order.
func (l *Linker) LinkAll(queries []string) []LinkResult {
	results := make([]LinkResult, len(queries))
	for i, q := range queries {
		results[i] = l.Link(q)
	}
	return results
}

// linkByCode matches when the query is, or contains, a KCD code token.
func (l *Linker) linkByCode(query string) *Disease {
	for _, token := range codeTokenRe.FindAllString(strings.ToUpper(query), -1) {
		if d, ok := l.catalog.codeIndex[token]; ok {
			return d
		}
		// For ranges, try the start code: "C73-C75" should still resolve
		// an entry registered under C73.
		if start, _, found := strings.Cut(token, "-"); found {
			if d, ok := l.catalog.codeIndex[start]; ok {
				return d
			}
		}
	}
	return nil
}

// linkFuzzy finds the most similar known name across the whole catalog.
// Similarity is 1 - dist/maxLen over runes; a match below the threshold
// is rejected.
func (l *Linker) linkFuzzy(key string) (*Disease, float64) {
	var best *Disease
	var bestScore float64

	for i := range l.catalog.diseases {
		d := &l.catalog.diseases[i]
		for _, name := range allNames(d) {
			score := similarity(key, normalize(name))
			if score > bestScore {
				best, bestScore = d, score
			}
		}
	}

	if bestScore < l.fuzzyThreshold {
		return nil, 0.0
	}
	return best, bestScore
}

func allNames(d *Disease) []string {
	names := make([]string, 0, 1+len(d.KoreanNames)+len(d.EnglishNames)+len(d.Synonyms))
	names = append(names, d.StandardName)
	names = append(names, d.KoreanNames...)
	names = append(names, d.EnglishNames...)
	names = append(names, d.Synonyms...)
	return names
}

// similarity is the normalized Levenshtein similarity in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
