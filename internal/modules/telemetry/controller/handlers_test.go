package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"airlog-server/internal/modules/telemetry/types"
	"airlog-server/internal/modules/telemetry/views"
)

type insertCall struct {
	in types.ReadingInput
	ts time.Time
}

type mockRepo struct {
	inserts   []insertCall
	insertErr error
	latest    *types.Reading
	latestErr error
	hourly    []types.Bucket
	hourlyErr error
	daily     []types.Bucket
	dailyErr  error

	hourlyWindow time.Duration
}

func (m *mockRepo) InsertReading(ctx context.Context, in types.ReadingInput, ts time.Time) error {
	m.inserts = append(m.inserts, insertCall{in: in, ts: ts})
	return m.insertErr
}

func (m *mockRepo) LatestReading(ctx context.Context) (*types.Reading, error) {
	return m.latest, m.latestErr
}

func (m *mockRepo) HourlyAggregates(ctx context.Context, window time.Duration) ([]types.Bucket, error) {
	m.hourlyWindow = window
	return m.hourly, m.hourlyErr
}

func (m *mockRepo) DailyAggregates(ctx context.Context) ([]types.Bucket, error) {
	return m.daily, m.dailyErr
}

func newTestRouter(repo *mockRepo) chi.Router {
	r := chi.NewRouter()
	NewTelemetryController(repo).RegisterRoutes(r)
	return r
}

func postForm(router chi.Router, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/insert_data", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validForm() url.Values {
	return url.Values{
		"temperature": {"25.5"},
		"humidity":    {"60"},
		"mq2Value":    {"100"},
		"mq135Value":  {"50"},
		"ldrValue":    {"300"},
	}
}

func Test_handleInsertData(t *testing.T) {
	t.Run("returns 201 and inserts one row on valid payload", func(t *testing.T) {
		repo := &mockRepo{}
		router := newTestRouter(repo)

		before := time.Now()
		rec := postForm(router, validForm())
		after := time.Now()

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d; want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Data inserted successfully") {
			t.Errorf("body = %q; want success message", rec.Body.String())
		}
		if len(repo.inserts) != 1 {
			t.Fatalf("inserts = %d; want 1", len(repo.inserts))
		}
		call := repo.inserts[0]
		want := types.ReadingInput{Temperature: 25.5, Humidity: 60, MQ2Value: 100, MQ135Value: 50, LDRValue: 300}
		if call.in != want {
			t.Errorf("inserted input = %+v; want %+v", call.in, want)
		}
		if call.ts.Before(before) || call.ts.After(after) {
			t.Errorf("timestamp %v not within call window [%v, %v]", call.ts, before, after)
		}
	})

	t.Run("returns 400 and skips store on missing field", func(t *testing.T) {
		for _, name := range []string{"temperature", "humidity", "mq2Value", "mq135Value", "ldrValue"} {
			repo := &mockRepo{}
			router := newTestRouter(repo)

			form := validForm()
			form.Del(name)
			rec := postForm(router, form)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("missing %s: status = %d; want %d", name, rec.Code, http.StatusBadRequest)
			}
			if !strings.Contains(rec.Body.String(), "Missing sensor data") {
				t.Errorf("missing %s: body = %q; want missing sensor data", name, rec.Body.String())
			}
			if len(repo.inserts) != 0 {
				t.Errorf("missing %s: inserts = %d; want 0", name, len(repo.inserts))
			}
		}
	})

	t.Run("returns 400 on non-numeric field", func(t *testing.T) {
		repo := &mockRepo{}
		router := newTestRouter(repo)

		form := validForm()
		form.Set("humidity", "soggy")
		rec := postForm(router, form)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
		}
		if !strings.Contains(rec.Body.String(), "Invalid sensor data") {
			t.Errorf("body = %q; want invalid sensor data", rec.Body.String())
		}
		if len(repo.inserts) != 0 {
			t.Errorf("inserts = %d; want 0", len(repo.inserts))
		}
	})

	t.Run("still returns 201 when the store fails", func(t *testing.T) {
		repo := &mockRepo{insertErr: errors.New("db down")}
		router := newTestRouter(repo)

		rec := postForm(router, validForm())

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d; want %d (store failures are not surfaced on ingest)", rec.Code, http.StatusCreated)
		}
		if len(repo.inserts) != 1 {
			t.Errorf("inserts = %d; want 1 attempt", len(repo.inserts))
		}
	})

	t.Run("returns 405 for non-POST", func(t *testing.T) {
		router := newTestRouter(&mockRepo{})

		req := httptest.NewRequest(http.MethodPut, "/insert_data", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusMethodNotAllowed)
		}
		if !strings.Contains(rec.Body.String(), "Invalid request method") {
			t.Errorf("body = %q; want invalid request method", rec.Body.String())
		}
	})
}

func Test_handleLatestData(t *testing.T) {
	t.Run("returns formatted latest reading", func(t *testing.T) {
		ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
		repo := &mockRepo{latest: &types.Reading{
			Temperature: 25.5, Humidity: 60, MQ2Value: 100, MQ135Value: 50, LDRValue: 300,
			Timestamp: ts,
		}}
		router := newTestRouter(repo)

		req := httptest.NewRequest(http.MethodGet, "/latest_data", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		var body map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["temperature"] != 25.5 {
			t.Errorf("temperature = %v; want 25.5", body["temperature"])
		}
		if body["mq135_value"] != 50.0 {
			t.Errorf("mq135_value = %v; want 50", body["mq135_value"])
		}
		if body["timestamp"] != "2026-03-14 09:26:53" {
			t.Errorf("timestamp = %v; want 2026-03-14 09:26:53", body["timestamp"])
		}
	})

	t.Run("returns empty object when store is empty", func(t *testing.T) {
		router := newTestRouter(&mockRepo{})

		req := httptest.NewRequest(http.MethodGet, "/latest_data", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "{}" {
			t.Errorf("body = %q; want {}", got)
		}
	})

	t.Run("returns 500 with generic body on store error", func(t *testing.T) {
		router := newTestRouter(&mockRepo{latestErr: errors.New("connection refused")})

		req := httptest.NewRequest(http.MethodGet, "/latest_data", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
		if strings.Contains(rec.Body.String(), "connection refused") {
			t.Errorf("body = %q; underlying cause must not leak", rec.Body.String())
		}
	})
}

func Test_handleHistoryLastWeek(t *testing.T) {
	t.Run("returns hourly buckets ascending with a 7 day window", func(t *testing.T) {
		base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
		repo := &mockRepo{hourly: []types.Bucket{
			{Start: base, MinTemp: 20, MaxTemp: 26, AvgTemp: 23},
			{Start: base.Add(time.Hour), MinTemp: 21, MaxTemp: 27, AvgTemp: 24},
		}}
		router := newTestRouter(repo)

		req := httptest.NewRequest(http.MethodGet, "/history_last_week", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if repo.hourlyWindow != 7*24*time.Hour {
			t.Errorf("window = %v; want 168h", repo.hourlyWindow)
		}
		var body []map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body) != 2 {
			t.Fatalf("buckets = %d; want 2", len(body))
		}
		if body[0]["hour"] != "2026-03-14 08:00:00" {
			t.Errorf("hour = %v; want 2026-03-14 08:00:00", body[0]["hour"])
		}
		if body[1]["min_temp"] != 21.0 || body[1]["max_temp"] != 27.0 || body[1]["avg_temp"] != 24.0 {
			t.Errorf("second bucket = %v; want min 21 max 27 avg 24", body[1])
		}
	})

	t.Run("returns empty array when no rows in window", func(t *testing.T) {
		router := newTestRouter(&mockRepo{})

		req := httptest.NewRequest(http.MethodGet, "/history_last_week", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("body = %q; want []", got)
		}
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		router := newTestRouter(&mockRepo{hourlyErr: errors.New("db error")})

		req := httptest.NewRequest(http.MethodGet, "/history_last_week", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func Test_handleDailySummary(t *testing.T) {
	t.Run("returns daily buckets with day formatting", func(t *testing.T) {
		repo := &mockRepo{daily: []types.Bucket{
			{Start: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), MinTemp: 18, MaxTemp: 29, AvgTemp: 24},
			{Start: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), MinTemp: 17, MaxTemp: 28, AvgTemp: 23},
		}}
		router := newTestRouter(repo)

		req := httptest.NewRequest(http.MethodGet, "/daily_summary", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		var body []map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body) != 2 {
			t.Fatalf("buckets = %d; want 2", len(body))
		}
		if body[0]["day"] != "2026-03-14" || body[1]["day"] != "2026-03-13" {
			t.Errorf("days = %v, %v; want 2026-03-14 then 2026-03-13", body[0]["day"], body[1]["day"])
		}
	})

	t.Run("returns empty array when store is empty", func(t *testing.T) {
		router := newTestRouter(&mockRepo{})

		req := httptest.NewRequest(http.MethodGet, "/daily_summary", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("body = %q; want []", got)
		}
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		router := newTestRouter(&mockRepo{dailyErr: errors.New("db error")})

		req := httptest.NewRequest(http.MethodGet, "/daily_summary", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func Test_handleDashboard(t *testing.T) {
	t.Run("returns 200 with HTML when templates loaded", func(t *testing.T) {
		if err := views.LoadTemplates(); err != nil {
			t.Fatalf("LoadTemplates: %v", err)
		}

		router := newTestRouter(&mockRepo{})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("Content-Type = %q; want text/html; charset=utf-8", ct)
		}
		if !strings.Contains(rec.Body.String(), "Airlog") {
			t.Errorf("body should contain the dashboard title; got %q", rec.Body.String())
		}
	})
}
