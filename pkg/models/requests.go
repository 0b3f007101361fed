package models

import facore "github.com/xhn-ccc/fat-analysis-tool"

// IdentifyRequest is a single-sample identification request.
type IdentifyRequest struct {
	SampleID string     `json:"sample_id"`
	Peaks    []PeakData `json:"peaks"`
	Params   *Params    `json:"params,omitempty"`
}

// Sample converts the request body to the core type.
func (r IdentifyRequest) Sample() facore.Sample {
	return SampleData{SampleID: r.SampleID, Peaks: r.Peaks}.Sample()
}

// IdentifyAccepted acknowledges an asynchronous submission.
type IdentifyAccepted struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// IdentifyResponse is the synchronous result envelope.
type IdentifyResponse struct {
	RequestID string              `json:"request_id"`
	Result    facore.SampleResult `json:"result"`
	Outcome   OutcomeData         `json:"outcome"`
}
