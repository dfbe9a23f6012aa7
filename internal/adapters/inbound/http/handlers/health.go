package handlers

import (
	"net/http"
	"time"

	"github.com/architeacher/device-inventory/internal/usecases"
	"github.com/architeacher/device-inventory/internal/usecases/queries"
	"github.com/architeacher/device-inventory/pkg/logger"
)

type (
	HealthHandler struct {
		app *usecases.Application
		log logger.Logger
	}

	probeResponse struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
)

func NewHealthHandler(app *usecases.Application, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		app: app,
		log: log.Component("health"),
	}
}

func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchLiveness.Execute(r.Context(), queries.FetchLivenessQuery{})
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, probeResponse{
		Status:    result.Status,
		Timestamp: time.Now().UTC(),
	})
}

func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchReadiness.Execute(r.Context(), queries.FetchReadinessQuery{})
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	httpStatus := http.StatusOK
	if !result.Ready {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, httpStatus, probeResponse{
		Status:    result.Status,
		Timestamp: time.Now().UTC(),
	})
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchHealthReport.Execute(r.Context(), queries.FetchHealthReportQuery{})
	if err != nil {
		writeError(w, r, h.log, err)

		return
	}

	httpStatus := http.StatusOK
	if result.Status != queries.StatusHealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, httpStatus, result)
}
