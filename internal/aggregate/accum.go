package aggregate

import (
	"math"
	"sort"
)

func ptr(v float64) *float64 { return &v }

// meanAcc is a weighted running mean that ignores missing values.
type meanAcc struct {
	sum    float64
	weight float64
}

func (a *meanAcc) add(v *float64) { a.addWeighted(v, 1) }

func (a *meanAcc) addWeighted(v *float64, w float64) {
	if v == nil || w <= 0 {
		return
	}
	a.sum += *v * w
	a.weight += w
}

func (a *meanAcc) value() *float64 {
	if a.weight == 0 {
		return nil
	}
	return ptr(a.sum / a.weight)
}

func minOf(cur, v *float64) *float64 {
	if v == nil {
		return cur
	}
	if cur == nil || *v < *cur {
		return ptr(*v)
	}
	return cur
}

func maxOf(cur, v *float64) *float64 {
	if v == nil {
		return cur
	}
	if cur == nil || *v > *cur {
		return ptr(*v)
	}
	return cur
}

// percentile returns the p-th quantile (0..1) of sorted values using linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
