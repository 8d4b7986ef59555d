package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"airlog-server/internal/modules/telemetry/repository"
	"airlog-server/internal/utils"
)

type TelemetryController interface {
	RegisterRoutes(r chi.Router)
}

type telemetryControllerImpl struct {
	repository repository.TelemetryRepository
}

func NewTelemetryController(repository repository.TelemetryRepository) TelemetryController {
	return &telemetryControllerImpl{repository: repository}
}

func (c *telemetryControllerImpl) RegisterRoutes(r chi.Router) {
	r.Get("/", c.handleDashboard)
	r.Post("/insert_data", c.handleInsertData)
	r.Get("/latest_data", c.handleLatestData)
	r.Get("/history_last_week", c.handleHistoryLastWeek)
	r.Get("/daily_summary", c.handleDailySummary)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		utils.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"message": "Invalid request method",
		})
	})
}
