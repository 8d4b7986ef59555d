package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"airlog-server/internal/modules/telemetry/validate"
	"airlog-server/internal/modules/telemetry/views"
	"airlog-server/internal/utils"
)

type latestResponse struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	MQ2Value    float64 `json:"mq2_value"`
	MQ135Value  float64 `json:"mq135_value"`
	LDRValue    float64 `json:"ldr_value"`
	Timestamp   string  `json:"timestamp"`
}

type hourlyBucketResponse struct {
	Hour    string  `json:"hour"`
	MinTemp float64 `json:"min_temp"`
	MaxTemp float64 `json:"max_temp"`
	AvgTemp float64 `json:"avg_temp"`
}

type dailyBucketResponse struct {
	Day     string  `json:"day"`
	MinTemp float64 `json:"min_temp"`
	MaxTemp float64 `json:"max_temp"`
	AvgTemp float64 `json:"avg_temp"`
}

func (c *telemetryControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderDashboard(w, views.DashboardData{}); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

// handleInsertData validates the form payload, stamps the server-side
// timestamp and persists the reading. A store failure is logged but still
// acknowledged with 201: devices in the field cannot buffer or retry, so the
// ingest endpoint never surfaces store errors over the wire.
func (c *telemetryControllerImpl) handleInsertData(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.Warn("malformed form payload", "error", err)
		utils.WriteError(w, http.StatusBadRequest, "Missing sensor data")
		return
	}

	in, err := validate.ParseReading(formFields(r))
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			slog.Warn("rejected sensor payload",
				"missing", verr.Missing,
				"invalid", verr.Invalid,
			)
			if len(verr.Missing) > 0 {
				utils.WriteError(w, http.StatusBadRequest, "Missing sensor data")
			} else {
				utils.WriteError(w, http.StatusBadRequest, "Invalid sensor data")
			}
			return
		}
		slog.Error("validate reading", "error", err)
		utils.WriteError(w, http.StatusBadRequest, "Missing sensor data")
		return
	}

	if err := c.repository.InsertReading(r.Context(), in, time.Now()); err != nil {
		slog.Error("insert reading failed", "error", err)
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Data inserted successfully",
	})
}

func (c *telemetryControllerImpl) handleLatestData(w http.ResponseWriter, r *http.Request) {
	rec, err := c.repository.LatestReading(r.Context())
	if err != nil {
		slog.Error("latest reading failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load latest reading")
		return
	}
	if rec == nil {
		utils.WriteJSON(w, http.StatusOK, struct{}{})
		return
	}
	utils.WriteJSON(w, http.StatusOK, latestResponse{
		Temperature: rec.Temperature,
		Humidity:    rec.Humidity,
		MQ2Value:    rec.MQ2Value,
		MQ135Value:  rec.MQ135Value,
		LDRValue:    rec.LDRValue,
		Timestamp:   rec.Timestamp.Format(timestampFormat),
	})
}

func (c *telemetryControllerImpl) handleHistoryLastWeek(w http.ResponseWriter, r *http.Request) {
	buckets, err := c.repository.HourlyAggregates(r.Context(), weeklyWindow)
	if err != nil {
		slog.Error("hourly aggregates failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load weekly history")
		return
	}
	out := make([]hourlyBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, hourlyBucketResponse{
			Hour:    b.Start.Format(timestampFormat),
			MinTemp: b.MinTemp,
			MaxTemp: b.MaxTemp,
			AvgTemp: b.AvgTemp,
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (c *telemetryControllerImpl) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	buckets, err := c.repository.DailyAggregates(r.Context())
	if err != nil {
		slog.Error("daily aggregates failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load daily summary")
		return
	}
	out := make([]dailyBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dailyBucketResponse{
			Day:     b.Start.Format(dayFormat),
			MinTemp: b.MinTemp,
			MaxTemp: b.MaxTemp,
			AvgTemp: b.AvgTemp,
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}
