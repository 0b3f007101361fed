package models

import (
	"time"

	facore "github.com/xhn-ccc/fat-analysis-tool"
)

// PeakData is one observed peak as received over HTTP.
type PeakData struct {
	Time float64 `json:"time"`
	Area float64 `json:"area"`
}

// SampleData is one sample's peak list with its identifier.
type SampleData struct {
	SampleID string     `json:"sample_id"`
	Peaks    []PeakData `json:"peaks"`
}

// Sample converts the wire format to the core type.
func (s SampleData) Sample() facore.Sample {
	peaks := make([]facore.ObservedPeak, len(s.Peaks))
	for i, p := range s.Peaks {
		peaks[i] = facore.ObservedPeak{Time: p.Time, Area: p.Area}
	}
	return facore.Sample{ID: s.SampleID, Peaks: peaks}
}

// Params optionally overrides the server's analysis defaults per request.
// Nil fields keep the configured value.
type Params struct {
	AnchorName   *string  `json:"anchor_name,omitempty"`
	SearchRadius *float64 `json:"search_radius,omitempty"`
	Tolerance    *float64 `json:"tolerance,omitempty"`
	Refine       *string  `json:"refine,omitempty"`
}

// Apply overlays the overrides onto base options.
func (p *Params) Apply(base facore.Options) facore.Options {
	if p == nil {
		return base
	}
	if p.AnchorName != nil {
		base.AnchorName = *p.AnchorName
	}
	if p.SearchRadius != nil {
		base.SearchRadius = *p.SearchRadius
	}
	if p.Tolerance != nil {
		base.Tolerance = *p.Tolerance
	}
	if p.Refine != nil {
		base.Refine = *p.Refine
	}
	return base
}

// BatchRequest is a batch of samples analyzed against one reference table.
type BatchRequest struct {
	BatchID string       `json:"batch_id"`
	Samples []SampleData `json:"samples"`
	Params  *Params      `json:"params,omitempty"`
}

// BatchResponse reports per-sample outcomes plus the combined matrix.
type BatchResponse struct {
	BatchID  string                `json:"batch_id"`
	Results  []facore.SampleResult `json:"results"`
	Outcomes []OutcomeData         `json:"outcomes"`
	Combined facore.CombinedResult `json:"combined"`
}

// OutcomeData is the wire form of a per-sample outcome; the error is
// flattened to a string.
type OutcomeData struct {
	SampleID string   `json:"sample_id"`
	Status   string   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// NewOutcomeData flattens a core outcome for transport.
func NewOutcomeData(o facore.Outcome) OutcomeData {
	d := OutcomeData{SampleID: o.SampleID, Status: o.Status, Warnings: o.Warnings}
	if o.Err != nil {
		d.Error = o.Err.Error()
	}
	return d
}

// WorkItem is one sample identification task for the worker pool.
type WorkItem struct {
	RequestID string
	Sample    facore.Sample
	Params    *Params
	StartTime time.Time
}

// WorkResult is the pool's output for one WorkItem.
type WorkResult struct {
	RequestID      string
	Result         facore.SampleResult
	Outcome        facore.Outcome
	ProcessingTime time.Duration
	Success        bool
}

// WebhookItem is a queued result publication.
type WebhookItem struct {
	RequestID string
	Result    facore.SampleResult
	Outcome   facore.Outcome
}

// WebhookPayload is the JSON body posted to the results webhook.
type WebhookPayload struct {
	ID          string                         `json:"id"`
	Time        string                         `json:"time"`
	SampleID    string                         `json:"sample_id"`
	Status      string                         `json:"status"`
	Warnings    []string                       `json:"warnings,omitempty"`
	AnchorFound bool                           `json:"anchor_found"`
	Offset      float64                        `json:"offset"`
	Compounds   map[string]facore.CompoundStat `json:"compounds"`
	Order       []string                       `json:"order,omitempty"`
}
