package facore

import "math"

// Unmatched is the name assigned to peaks whose nearest calibrated
// reference time lies outside the tolerance window.
const Unmatched = "unmatched"

// MatchedPeak is the classification of one observed peak. ExpectedTime
// and Residual refer to the nearest calibrated entry even when the peak
// ends up unmatched.
type MatchedPeak struct {
	Observed     ObservedPeak `json:"observed"`
	Name         string       `json:"name"`
	ExpectedTime float64      `json:"expected_time"`
	Residual     float64      `json:"residual"`
}

// MatchPeak assigns a peak to the reference entry whose calibrated
// expected time (expected + offset) is closest to the observed time.
// Ties between entries keep the first in table order. A residual above
// tolerance leaves the peak unmatched. Pure; nothing is mutated.
func MatchPeak(p ObservedPeak, table *ReferenceTable, offset, tolerance float64) MatchedPeak {
	m := MatchedPeak{
		Observed:     p,
		Name:         Unmatched,
		ExpectedTime: math.NaN(),
		Residual:     math.NaN(),
	}
	best := math.Inf(1)
	for _, e := range table.All() {
		calibrated := e.ExpectedTime + offset
		r := math.Abs(calibrated - p.Time)
		if r < best {
			best = r
			m.Name = e.Name
			m.ExpectedTime = calibrated
			m.Residual = r
		}
	}
	if best > tolerance {
		m.Name = Unmatched
	}
	return m
}

// MatchPeaks classifies every valid peak of one sample. Peaks with NaN
// or infinite retention time are invalid input and never reach the
// matcher.
func MatchPeaks(peaks []ObservedPeak, table *ReferenceTable, offset, tolerance float64) []MatchedPeak {
	matched := make([]MatchedPeak, 0, len(peaks))
	for _, p := range peaks {
		if math.IsNaN(p.Time) || math.IsInf(p.Time, 0) {
			continue
		}
		matched = append(matched, MatchPeak(p, table, offset, tolerance))
	}
	return matched
}
