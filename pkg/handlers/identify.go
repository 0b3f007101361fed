package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/xhn-ccc/fat-analysis-tool/internal/processing"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/models"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/worker"
)

// IdentifyHandler serves single-sample identification, synchronously or
// through the worker pool.
type IdentifyHandler struct {
	processor *processing.Processor
	pool      *worker.Pool
}

func NewIdentifyHandler(processor *processing.Processor, pool *worker.Pool) *IdentifyHandler {
	return &IdentifyHandler{processor: processor, pool: pool}
}

// Identify handles POST /identify. With ?sync=true (or no pool) the
// result is returned inline; otherwise the sample is queued and the
// result is published to the configured webhook.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req models.IdentifyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	requestID := uuid.NewString()

	if h.pool == nil || r.URL.Query().Get("sync") == "true" {
		result, outcome := h.processor.Process(req.Sample(), req.Params)
		render.JSON(w, r, models.IdentifyResponse{
			RequestID: requestID,
			Result:    result,
			Outcome:   models.NewOutcomeData(outcome),
		})
		return
	}

	h.pool.SubmitJob(models.WorkItem{
		RequestID: requestID,
		Sample:    req.Sample(),
		Params:    req.Params,
		StartTime: time.Now(),
	})
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, models.IdentifyAccepted{RequestID: requestID, Status: "queued"})
}
