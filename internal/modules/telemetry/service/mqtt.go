package service

import (
	"context"
	"log/slog"
	"time"

	"airlog-server/internal/modules/telemetry/repository"
	"airlog-server/internal/modules/telemetry/types"
	"airlog-server/internal/modules/telemetry/validate"
	"airlog-server/internal/mqtt"
)

// registerMQTTHandler sets up the telemetry module's MQTT message handler.
// Published readings go through the same validator and lenient-insert policy
// as the HTTP ingest path: rejected payloads are logged and dropped, insert
// failures are logged without feedback to the device.
func registerMQTTHandler(subscriber mqtt.MessageSubscriber, repo repository.TelemetryRepository) {
	subscriber.SetMessageHandler(func(msg types.ReadingMessage) error {
		in, err := validate.ParseReading(messageFields(msg))
		if err != nil {
			slog.Warn("rejected mqtt reading", "error", err)
			return nil
		}

		if err := repo.InsertReading(context.Background(), in, time.Now()); err != nil {
			slog.Error("insert mqtt reading failed", "error", err)
			return err
		}

		return nil
	})
}

// messageFields maps the JSON message into the validator's field view; a nil
// pointer means the field was absent or null.
func messageFields(msg types.ReadingMessage) map[string]*string {
	return map[string]*string{
		"temperature": msg.Temperature,
		"humidity":    msg.Humidity,
		"mq2Value":    msg.MQ2Value,
		"mq135Value":  msg.MQ135Value,
		"ldrValue":    msg.LDRValue,
	}
}
