package facore

import "gonum.org/v1/gonum/floats"

// CompoundStat carries both the summed area and the relative abundance of
// one compound in one sample. Both are always present so the export layer
// can pick either.
type CompoundStat struct {
	TotalArea  float64 `json:"total_area"`
	Percentage float64 `json:"percentage"`
}

// SampleResult is the per-sample output of the pipeline.
type SampleResult struct {
	SampleID    string                  `json:"sample_id"`
	Calibration CalibrationResult       `json:"calibration"`
	Compounds   map[string]CompoundStat `json:"compounds"`
	// Order lists the compound names present in this sample, in
	// reference table order.
	Order          []string `json:"order"`
	MatchedPeaks   int      `json:"matched_peaks"`
	UnmatchedPeaks int      `json:"unmatched_peaks"`
}

// TotalArea returns the summed area over all identified compounds.
func (r SampleResult) TotalArea() float64 {
	total := 0.0
	for _, stat := range r.Compounds {
		total += stat.TotalArea
	}
	return total
}

// Aggregate reduces the matched peaks of one sample into per-compound
// totals and percentages. Unmatched peaks are counted but discarded.
// With a zero grand total all percentages are zero rather than NaN.
func Aggregate(sampleID string, matched []MatchedPeak, table *ReferenceTable) SampleResult {
	res := SampleResult{
		SampleID:  sampleID,
		Compounds: make(map[string]CompoundStat),
	}

	areas := make(map[string][]float64)
	for _, m := range matched {
		if m.Name == Unmatched {
			res.UnmatchedPeaks++
			continue
		}
		res.MatchedPeaks++
		areas[m.Name] = append(areas[m.Name], m.Observed.Area)
	}

	grand := 0.0
	totals := make(map[string]float64, len(areas))
	for name, a := range areas {
		totals[name] = floats.Sum(a)
		grand += totals[name]
	}

	for _, e := range table.All() {
		if _, ok := totals[e.Name]; ok {
			res.Order = append(res.Order, e.Name)
		}
	}

	for name, total := range totals {
		stat := CompoundStat{TotalArea: total}
		if grand > 0 {
			stat.Percentage = 100 * total / grand
		}
		res.Compounds[name] = stat
	}
	return res
}
