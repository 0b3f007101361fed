package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	facore "github.com/xhn-ccc/fat-analysis-tool"
	"github.com/xhn-ccc/fat-analysis-tool/internal/processing"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/models"
)

// BatchHandler serves multi-sample identification with a combined
// result matrix.
type BatchHandler struct {
	processor *processing.Processor
	workers   int
}

func NewBatchHandler(processor *processing.Processor, workers int) *BatchHandler {
	if workers <= 0 {
		workers = 1
	}
	return &BatchHandler{processor: processor, workers: workers}
}

// Batch handles POST /identify/batch. The optional ?metric=area query
// switches the combined matrix from percentages to raw areas.
func (h *BatchHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if len(req.Samples) == 0 {
		render.Render(w, r, ErrInvalidRequest(errors.New("batch has no samples")))
		return
	}
	if req.BatchID == "" {
		req.BatchID = uuid.NewString()
	}

	samples := make([]facore.Sample, len(req.Samples))
	for i, s := range req.Samples {
		samples[i] = s.Sample()
	}

	results, outcomes, err := h.processor.ProcessBatch(samples, req.Params, h.workers)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	metric := facore.MetricPercentage
	if r.URL.Query().Get("metric") == "area" {
		metric = facore.MetricArea
	}

	resp := models.BatchResponse{
		BatchID:  req.BatchID,
		Results:  results,
		Combined: h.processor.Combine(results, metric),
	}
	for _, o := range outcomes {
		resp.Outcomes = append(resp.Outcomes, models.NewOutcomeData(o))
	}
	render.JSON(w, r, resp)
}
