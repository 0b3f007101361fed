package facore

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/optimize"
)

// ObservedPeak is one detected chromatographic peak: retention time in
// minutes and integrated area. Area may be zero when the integrator
// reported none.
type ObservedPeak struct {
	Time float64 `json:"time"`
	Area float64 `json:"area"`
}

// CalibrationResult holds the scalar time offset estimated for one sample.
// When the anchor peak is not found the offset is zero and matching
// proceeds uncalibrated.
type CalibrationResult struct {
	AnchorFound bool    `json:"anchor_found"`
	AnchorTime  float64 `json:"anchor_time,omitempty"`
	Offset      float64 `json:"offset"`
	Refined     bool    `json:"refined,omitempty"`
}

// EstimateOffset locates the anchor compound's peak within searchRadius
// minutes of its expected time and returns the observed-minus-expected
// offset. Among candidate peaks the one with the largest area wins; when
// no candidate carries area data the one closest in time wins. Ties keep
// the first candidate in the peaks' original order.
//
// A missing anchor entry is fatal. An empty candidate window is not: the
// result reports AnchorFound=false with a zero offset.
func EstimateOffset(peaks []ObservedPeak, table *ReferenceTable, anchorName string, searchRadius float64) (CalibrationResult, error) {
	anchor, ok := table.Find(anchorName)
	if !ok {
		return CalibrationResult{}, fmt.Errorf("%w: %q", ErrAnchorNotInReference, anchorName)
	}

	lo := anchor.ExpectedTime - searchRadius
	hi := anchor.ExpectedTime + searchRadius

	byArea, byTime := -1, -1
	var maxArea, minDist float64
	for i, p := range peaks {
		if math.IsNaN(p.Time) || p.Time < lo || p.Time > hi {
			continue
		}
		if p.Area > 0 && (byArea < 0 || p.Area > maxArea) {
			byArea, maxArea = i, p.Area
		}
		d := math.Abs(p.Time - anchor.ExpectedTime)
		if byTime < 0 || d < minDist {
			byTime, minDist = i, d
		}
	}

	// Area is the stronger discriminator: the anchor compound is expected
	// to dominate its window, while a contaminant can sit closer in time.
	idx := byArea
	if idx < 0 {
		idx = byTime
	}
	if idx < 0 {
		return CalibrationResult{}, nil
	}
	return CalibrationResult{
		AnchorFound: true,
		AnchorTime:  peaks[idx].Time,
		Offset:      peaks[idx].Time - anchor.ExpectedTime,
	}, nil
}

// Refinement methods accepted by RefineOffset.
const (
	RefineNelderMead = "nelder-mead"
	RefineLM         = "lm"
)

// RefineOffset adjusts an anchor-derived offset so that the summed squared
// residual of tolerance-matched peaks is minimal over the whole table, not
// just the anchor. Peaks outside the tolerance window at a given offset
// saturate at the tolerance so they cannot dominate the fit.
//
// The anchor estimate is the starting point; refinement is skipped when
// the anchor was not found.
func RefineOffset(peaks []ObservedPeak, table *ReferenceTable, cal CalibrationResult, tolerance float64, method string) (CalibrationResult, error) {
	if !cal.AnchorFound || len(peaks) == 0 {
		return cal, nil
	}

	residual := func(offset float64, p ObservedPeak) float64 {
		best := math.Inf(1)
		for _, e := range table.All() {
			if r := math.Abs(e.ExpectedTime + offset - p.Time); r < best {
				best = r
			}
		}
		if best > tolerance {
			best = tolerance
		}
		return best
	}

	switch method {
	case RefineNelderMead:
		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				sum := 0.0
				for _, p := range peaks {
					r := residual(x[0], p)
					sum += r * r
				}
				return sum
			},
		}
		res, err := optimize.Minimize(problem, []float64{cal.Offset}, nil, &optimize.NelderMead{})
		if err != nil {
			return cal, fmt.Errorf("refine offset: %w", err)
		}
		cal.Offset = res.X[0]
	case RefineLM:
		fnc := func(dst, x []float64) {
			for i, p := range peaks {
				dst[i] = residual(x[0], p)
			}
		}
		jac := lm.NumJac{Func: fnc}
		problem := lm.LMProblem{
			Dim:        1,
			Size:       len(peaks),
			Func:       fnc,
			Jac:        jac.Jac,
			InitParams: []float64{cal.Offset},
			Tau:        1e-6,
			Eps1:       1e-8,
			Eps2:       1e-8,
		}
		res, err := lm.LM(problem, &lm.Settings{Iterations: 100, ObjectiveTol: 1e-16})
		if err != nil {
			return cal, fmt.Errorf("refine offset: %w", err)
		}
		cal.Offset = res.X[0]
	default:
		return cal, fmt.Errorf("refine offset: unknown method %q", method)
	}
	cal.Refined = true
	return cal, nil
}
