// Package critical extracts monetary amounts, time periods and KCD
// disease codes from policy text using closed-form grammars. The output
// is the rule-based ground truth that model-proposed relation conditions
// are validated against, so extraction is deliberately conservative:
// fixed patterns, zero tolerance for ambiguity, no I/O and no failure
// mode beyond empty results.
package critical

// Data holds everything the extractor recovered from one text, each list
// ordered by byte position. Data is immutable once returned.
type Data struct {
	Amounts  []Amount  `json:"amounts"`
	Periods  []Period  `json:"periods"`
	KCDCodes []KCDCode `json:"kcd_codes"`
}

// Amount is one monetary value in Korean Won.
type Amount struct {
	// Value is the exact integer Won amount.
	Value int64 `json:"value"`

	// OriginalText is the matched surface form, e.g. "1억 5천만원".
	OriginalText string `json:"original_text"`

	// Position is the byte offset of the match in the source text.
	Position int `json:"position"`

	Confidence float64 `json:"confidence"`
}

// Period is one duration, normalized to days.
type Period struct {
	Days         int     `json:"days"`
	OriginalText string  `json:"original_text"`
	OriginalUnit string  `json:"original_unit"`
	Position     int     `json:"position"`
	Confidence   float64 `json:"confidence"`
}

// KCDCode is one disease classification code or code range.
type KCDCode struct {
	// Code is the normalized code, e.g. "C73" or "C00-C97" for ranges.
	Code string `json:"code"`

	OriginalText string `json:"original_text"`
	Position     int    `json:"position"`

	// IsValid reports whether every endpoint letter belongs to the fixed
	// KCD chapter alphabet.
	IsValid bool `json:"is_valid"`

	IsRange   bool   `json:"is_range"`
	StartCode string `json:"start_code,omitempty"`
	EndCode   string `json:"end_code,omitempty"`
}

// AmountValues returns the distinct amount values in extraction order.
func (d Data) AmountValues() []int64 {
	values := make([]int64, 0, len(d.Amounts))
	for _, a := range d.Amounts {
		values = append(values, a.Value)
	}
	return values
}

// PeriodDays returns the period values in days, in extraction order.
func (d Data) PeriodDays() []int {
	days := make([]int, 0, len(d.Periods))
	for _, p := range d.Periods {
		days = append(days, p.Days)
	}
	return days
}
