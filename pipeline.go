package facore

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	ErrInvalidTolerance = errors.New("tolerance must be positive")
	ErrInvalidRadius    = errors.New("search radius must be at least the tolerance")
)

// Sample is one run's cleaned peak list. Peak order is meaningful only
// for tie-breaks; otherwise the collection is unordered.
type Sample struct {
	ID    string         `json:"sample_id"`
	Peaks []ObservedPeak `json:"peaks"`
}

// Options configure one processing run. An empty AnchorName disables
// drift calibration and matches against uncalibrated reference times.
// Refine selects an optional offset refinement method ("" for none).
type Options struct {
	AnchorName   string  `json:"anchor_name"`
	SearchRadius float64 `json:"search_radius"`
	Tolerance    float64 `json:"tolerance"`
	Refine       string  `json:"refine,omitempty"`
}

// Validate front-loads run-fatal configuration errors. Per-sample
// conditions (missing anchor peak, empty sample) are warnings handled
// later at the sample boundary.
func (o Options) Validate(table *ReferenceTable) error {
	if o.Tolerance <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidTolerance, o.Tolerance)
	}
	if o.AnchorName == "" {
		return nil
	}
	if o.SearchRadius < o.Tolerance {
		return fmt.Errorf("%w: %g < %g", ErrInvalidRadius, o.SearchRadius, o.Tolerance)
	}
	if _, ok := table.Find(o.AnchorName); !ok {
		return fmt.Errorf("%w: %q", ErrAnchorNotInReference, o.AnchorName)
	}
	return nil
}

// Per-sample processing status.
const (
	StatusOK      = "OK"
	StatusWarning = "WARNING"
	StatusError   = "ERROR"
)

// Outcome is the disposition of one sample's pipeline run.
type Outcome struct {
	SampleID string   `json:"sample_id"`
	Status   string   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
	Err      error    `json:"-"`
}

func (o *Outcome) warn(format string, args ...interface{}) {
	if o.Status == StatusOK {
		o.Status = StatusWarning
	}
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// ProcessSample runs the estimate, match and aggregate stages for one
// sample against an immutable reference table. A sample-level problem
// degrades the outcome instead of failing the batch.
func ProcessSample(sample Sample, table *ReferenceTable, opts Options) (SampleResult, Outcome) {
	outcome := Outcome{SampleID: sample.ID, Status: StatusOK}

	peaks := validPeaks(sample.Peaks)
	if dropped := len(sample.Peaks) - len(peaks); dropped > 0 {
		outcome.warn("dropped %d peaks with invalid retention time", dropped)
	}
	if len(peaks) == 0 {
		outcome.warn("sample has no valid peaks")
	}

	var cal CalibrationResult
	if opts.AnchorName != "" {
		var err error
		cal, err = EstimateOffset(peaks, table, opts.AnchorName, opts.SearchRadius)
		if err != nil {
			outcome.Status = StatusError
			outcome.Err = err
			return SampleResult{SampleID: sample.ID, Compounds: map[string]CompoundStat{}}, outcome
		}
		if !cal.AnchorFound && len(peaks) > 0 {
			outcome.warn("anchor %q not found within %g min, matching uncalibrated",
				opts.AnchorName, opts.SearchRadius)
		}
		if cal.AnchorFound && opts.Refine != "" {
			cal, err = RefineOffset(peaks, table, cal, opts.Tolerance, opts.Refine)
			if err != nil {
				outcome.warn("offset refinement failed: %v", err)
			}
		}
	}

	matched := MatchPeaks(peaks, table, cal.Offset, opts.Tolerance)
	result := Aggregate(sample.ID, matched, table)
	result.Calibration = cal

	if result.MatchedPeaks > 0 && result.TotalArea() == 0 {
		outcome.warn("matched peaks carry zero total area, percentages reported as zero")
	}
	return result, outcome
}

// ProcessBatch processes samples concurrently on a bounded worker pool.
// Results and outcomes come back in input order; one sample's failure
// never stops the others.
func ProcessBatch(samples []Sample, table *ReferenceTable, opts Options, workers int) ([]SampleResult, []Outcome) {
	if workers <= 0 {
		workers = 1
	}

	type job struct {
		index  int
		sample Sample
	}
	jobs := make(chan job, len(samples))
	results := make([]SampleResult, len(samples))
	outcomes := make([]Outcome, len(samples))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index], outcomes[j.index] = ProcessSample(j.sample, table, opts)
			}
		}()
	}
	for i, s := range samples {
		jobs <- job{index: i, sample: s}
	}
	close(jobs)
	wg.Wait()

	return results, outcomes
}

func validPeaks(peaks []ObservedPeak) []ObservedPeak {
	valid := make([]ObservedPeak, 0, len(peaks))
	for _, p := range peaks {
		if math.IsNaN(p.Time) || math.IsInf(p.Time, 0) {
			continue
		}
		valid = append(valid, p)
	}
	return valid
}
