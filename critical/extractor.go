package critical

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// num matches a digit run with optional thousands separators.
const num = `(\d{1,3}(?:,\d{3})+|\d+)`

// amountPatterns is the fixed amount grammar, ordered from most- to
// least-specific. Each capture group carries the Won multiplier for the
// digits it captures; the pattern value is the sum of group×multiplier.
// Ordering plus interval claims guarantees a compound amount is captured
// exactly once by the most specific pattern that fits.
var amountPatterns = []struct {
	name        string
	re          *regexp.Regexp
	multipliers []int64
}{
	{"억+천+만", regexp.MustCompile(num + `\s*억\s*` + num + `\s*천\s*` + num + `\s*만\s*원?`), []int64{1e8, 1e7, 1e4}},
	{"억+천만", regexp.MustCompile(num + `\s*억\s*` + num + `\s*천만\s*원?`), []int64{1e8, 1e7}},
	{"억+백만", regexp.MustCompile(num + `\s*억\s*` + num + `\s*백만\s*원?`), []int64{1e8, 1e6}},
	{"억+만", regexp.MustCompile(num + `\s*억\s*` + num + `\s*만\s*원?`), []int64{1e8, 1e4}},
	{"억", regexp.MustCompile(num + `\s*억\s*원?`), []int64{1e8}},
	{"천만", regexp.MustCompile(num + `\s*천만\s*원?`), []int64{1e7}},
	{"백만", regexp.MustCompile(num + `\s*백만\s*원?`), []int64{1e6}},
	{"만", regexp.MustCompile(num + `\s*만\s*원?`), []int64{1e4}},
	{"천", regexp.MustCompile(num + `\s*천\s*원`), []int64{1e3}},
	{"원", regexp.MustCompile(num + `\s*원`), []int64{1}},
}

// periodUnits is the fixed period grammar mapping each unit to its length
// in days. Ordered longest unit first so claims shadow shorter matches.
var periodUnits = []struct {
	unit string
	days int
	re   *regexp.Regexp
}{
	{"년", 365, regexp.MustCompile(`(\d+)\s*년`)},
	{"개월", 30, regexp.MustCompile(`(\d+)\s*개월`)},
	{"주", 7, regexp.MustCompile(`(\d+)\s*주`)},
	{"일", 1, regexp.MustCompile(`(\d+)\s*일`)},
}

// kcdCodeRe matches a single KCD code ("C73") or a range ("C00-C97",
// "C00-97"). An omitted end letter inherits the start letter.
var kcdCodeRe = regexp.MustCompile(`\b([A-Z])(\d{2})(?:-([A-Z])?(\d{2}))?\b`)

// validKCDCategories is the fixed chapter alphabet of the Korean Standard
// Classification of Diseases. "U" is reserved for provisional assignment
// and is not a valid category in policy clauses.
const validKCDCategories = "ABCDEFGHIJKLMNOPQRSTVWXYZ"

// Extract scans text for amounts, periods and KCD codes. It is a pure
// function: no I/O, never fails, and returns empty lists at worst. Every
// returned list is ordered by byte position.
func Extract(text string) Data {
	return Data{
		Amounts:  extractAmounts(text),
		Periods:  extractPeriods(text),
		KCDCodes: extractKCDCodes(text),
	}
}

func extractAmounts(text string) []Amount {
	var claims intervalSet
	var amounts []Amount

	for _, pat := range amountPatterns {
		for _, m := range pat.re.FindAllStringSubmatchIndex(text, -1) {
			if !claims.Claim(m[0], m[1]) {
				continue
			}
			value, err := amountValue(text, m, pat.multipliers)
			if err != nil {
				continue
			}
			amounts = append(amounts, Amount{
				Value:        value,
				OriginalText: text[m[0]:m[1]],
				Position:     m[0],
				Confidence:   1.0,
			})
		}
	}

	sort.Slice(amounts, func(i, j int) bool { return amounts[i].Position < amounts[j].Position })
	return amounts
}

// amountValue computes sum(group_i × multiplier_i) for a match.
func amountValue(text string, m []int, multipliers []int64) (int64, error) {
	var total int64
	for i, mult := range multipliers {
		digits := strings.ReplaceAll(text[m[2*(i+1)]:m[2*(i+1)+1]], ",", "")
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount digits %q: %w", digits, err)
		}
		total += n * mult
	}
	return total, nil
}

func extractPeriods(text string) []Period {
	var claims intervalSet
	var periods []Period

	for _, unit := range periodUnits {
		for _, m := range unit.re.FindAllStringSubmatchIndex(text, -1) {
			if !claims.Claim(m[0], m[1]) {
				continue
			}
			n, err := strconv.Atoi(text[m[2]:m[3]])
			if err != nil {
				continue
			}
			periods = append(periods, Period{
				Days:         n * unit.days,
				OriginalText: text[m[0]:m[1]],
				OriginalUnit: unit.unit,
				Position:     m[0],
				Confidence:   1.0,
			})
		}
	}

	sort.Slice(periods, func(i, j int) bool { return periods[i].Position < periods[j].Position })
	return periods
}

func extractKCDCodes(text string) []KCDCode {
	var codes []KCDCode

	for _, m := range kcdCodeRe.FindAllStringSubmatchIndex(text, -1) {
		startLetter := text[m[2]:m[3]]
		startCode := startLetter + text[m[4]:m[5]]

		code := KCDCode{
			OriginalText: text[m[0]:m[1]],
			Position:     m[0],
		}

		if m[8] < 0 { // no range part
			code.Code = startCode
			code.IsValid = validCategory(startLetter)
		} else {
			endLetter := startLetter
			if m[6] >= 0 {
				endLetter = text[m[6]:m[7]]
			}
			endCode := endLetter + text[m[8]:m[9]]
			code.IsRange = true
			code.StartCode = startCode
			code.EndCode = endCode
			code.Code = startCode + "-" + endCode
			code.IsValid = validCategory(startLetter) && validCategory(endLetter)
		}

		codes = append(codes, code)
	}

	return codes
}

func validCategory(letter string) bool {
	return strings.Contains(validKCDCategories, letter)
}
