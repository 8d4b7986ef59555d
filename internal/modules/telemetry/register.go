package telemetry

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"airlog-server/internal/modules/telemetry/controller"
	"airlog-server/internal/modules/telemetry/repository"
	"airlog-server/internal/modules/telemetry/service"
	"airlog-server/internal/mqtt"
)

// RegisterFeature wires the telemetry module: repository, HTTP controller,
// and (when a subscriber is given) the MQTT ingest service.
func RegisterFeature(r chi.Router, db *sql.DB, subscriber *mqtt.Subscriber) {
	telemetryRepository := repository.NewRepository(db)
	telemetryController := controller.NewTelemetryController(telemetryRepository)
	telemetryController.RegisterRoutes(r)

	if subscriber != nil {
		service.NewService(telemetryRepository).Register(subscriber)
	}
}
