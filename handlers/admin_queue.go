package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/queue"
	"storefront-api/utils"
)

// JobAdmin is the back-office view of the notification queue.
type JobAdmin interface {
	Stats(ctx context.Context) (map[string]int64, error)
	RetryJob(ctx context.Context, jobID string) error
}

type AdminQueueHandler struct {
	jobs   JobAdmin
	logger *zap.Logger
}

func NewAdminQueueHandler(jobs JobAdmin, logger *zap.Logger) *AdminQueueHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminQueueHandler{jobs: jobs, logger: logger}
}

// Stats serves the size of each job list.
func (h *AdminQueueHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.jobs.Stats(r.Context())
	if err != nil {
		h.logger.Error("error reading queue stats", zap.Error(err))
		utils.SendErrorResponse(w, http.StatusServiceUnavailable, "Queue unavailable")
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: s})
}

// RetryFailed moves a job from the failed list back onto the queue with a fresh retry budget.
func (h *AdminQueueHandler) RetryFailed(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.jobs.RetryJob(r.Context(), id); err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			utils.SendErrorResponse(w, http.StatusNotFound, "Job not found in failed list")
			return
		}
		h.logger.Error("error retrying job", zap.String("job_id", id), zap.Error(err))
		utils.SendErrorResponse(w, http.StatusServiceUnavailable, "Queue unavailable")
		return
	}

	h.logger.Info("failed job requeued", zap.String("job_id", id), zap.String("by", adminName(r)))
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Message: "Job requeued"})
}
