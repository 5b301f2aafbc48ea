package handlers

import (
	"net/http"

	"github.com/podcast-studio/backend/internal/job"
)

type JobsHandler struct {
	queue *job.JobQueue
}

func NewJobsHandler(queue *job.JobQueue) *JobsHandler {
	return &JobsHandler{queue: queue}
}

func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.queue.ListJobs()
	if err != nil {
		jsonError(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, jobs, http.StatusOK)
}

func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.queue.GetJob(urlParam(r, "id"))
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, j, http.StatusOK)
}

func (h *JobsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.CancelJob(urlParam(r, "id")); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonResponse(w, map[string]string{"status": "cancelled"}, http.StatusOK)
}

// Retry re-queues a failed or cancelled job.
func (h *JobsHandler) Retry(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.RetryJob(urlParam(r, "id")); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	j, err := h.queue.GetJob(urlParam(r, "id"))
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, j, http.StatusAccepted)
}
