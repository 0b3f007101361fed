// Package processing bridges runtime configuration to the identification
// engine.
package processing

import (
	"time"

	facore "github.com/xhn-ccc/fat-analysis-tool"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/config"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/metrics"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/models"
)

// Processor applies configured defaults, per-request overrides and one
// shared reference table to incoming samples.
type Processor struct {
	table *facore.ReferenceTable
	opts  facore.Options
}

func New(cfg *config.Config, table *facore.ReferenceTable) *Processor {
	return &Processor{
		table: table,
		opts: facore.Options{
			AnchorName:   cfg.AnchorName,
			SearchRadius: cfg.SearchRadius,
			Tolerance:    cfg.Tolerance,
			Refine:       cfg.Refine,
		},
	}
}

// Table returns the reference table the processor matches against.
func (p *Processor) Table() *facore.ReferenceTable {
	return p.table
}

// Options returns the configured defaults with overrides applied.
func (p *Processor) Options(params *models.Params) facore.Options {
	return params.Apply(p.opts)
}

// Process runs one sample. Invalid per-request options surface as an
// error outcome rather than a panic deeper in the pipeline. Every path
// through here, synchronous or pooled, counts toward the metrics.
func (p *Processor) Process(sample facore.Sample, params *models.Params) (facore.SampleResult, facore.Outcome) {
	opts := p.Options(params)
	if err := opts.Validate(p.table); err != nil {
		outcome := facore.Outcome{SampleID: sample.ID, Status: facore.StatusError, Err: err}
		result := facore.SampleResult{SampleID: sample.ID, Compounds: map[string]facore.CompoundStat{}}
		record(result, outcome)
		return result, outcome
	}

	start := time.Now()
	result, outcome := facore.ProcessSample(sample, p.table, opts)
	metrics.ProcessingSeconds.Observe(time.Since(start).Seconds())
	record(result, outcome)
	return result, outcome
}

// ProcessBatch runs many samples concurrently, preserving input order.
func (p *Processor) ProcessBatch(samples []facore.Sample, params *models.Params, workers int) ([]facore.SampleResult, []facore.Outcome, error) {
	opts := p.Options(params)
	if err := opts.Validate(p.table); err != nil {
		return nil, nil, err
	}
	results, outcomes := facore.ProcessBatch(samples, p.table, opts, workers)
	for i := range results {
		record(results[i], outcomes[i])
	}
	return results, outcomes, nil
}

func record(result facore.SampleResult, outcome facore.Outcome) {
	metrics.SamplesProcessed.WithLabelValues(outcome.Status).Inc()
	metrics.PeaksMatched.Add(float64(result.MatchedPeaks))
	metrics.PeaksUnmatched.Add(float64(result.UnmatchedPeaks))
}

// Combine folds batch results into the cross-sample matrix.
func (p *Processor) Combine(results []facore.SampleResult, metric facore.Metric) facore.CombinedResult {
	return facore.Combine(results, p.table, metric)
}

// ParseMetric maps the config value to the matrix metric, defaulting to
// percentages.
func ParseMetric(name string) facore.Metric {
	if name == "area" {
		return facore.MetricArea
	}
	return facore.MetricPercentage
}
