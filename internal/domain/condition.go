package domain

// ConditionCounts tallies condition codes. The zero value is not usable;
// make one with make or a composite literal.
type ConditionCounts map[string]int

// Add counts code once. Blank codes are ignored.
func (c ConditionCounts) Add(code string) {
	if code == "" {
		return
	}
	c[code]++
}

// Dominant returns the most frequent code; ties go to the lexicographically
// smallest code. Empty when nothing was counted.
func (c ConditionCounts) Dominant() string {
	best, bestCount := "", 0
	for code, n := range c {
		if n > bestCount || (n == bestCount && code < best) {
			best, bestCount = code, n
		}
	}
	return best
}
