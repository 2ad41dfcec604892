package critical

import "sort"

// intervalSet tracks claimed half-open byte ranges [start, end). Grammar
// patterns run from most- to least-specific; once a specific pattern has
// claimed a span, no later pattern may accept a match overlapping it.
// This is what keeps "1억 5천만원" a single 150,000,000 match instead of
// also yielding a partial "5천만원".
type intervalSet struct {
	claimed []interval
}

type interval struct {
	start, end int
}

// Claim records [start, end) if it does not overlap any claimed range and
// reports whether the claim succeeded.
func (s *intervalSet) Claim(start, end int) bool {
	idx := sort.Search(len(s.claimed), func(i int) bool {
		return s.claimed[i].end > start
	})
	if idx < len(s.claimed) && s.claimed[idx].start < end {
		return false
	}
	s.claimed = append(s.claimed, interval{})
	copy(s.claimed[idx+1:], s.claimed[idx:])
	s.claimed[idx] = interval{start: start, end: end}
	return true
}
