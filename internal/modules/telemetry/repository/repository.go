package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"airlog-server/internal/modules/telemetry/types"
)

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-latest-reading.sql
var getLatestReadingSQL string

//go:embed sql/get-hourly-aggregates.sql
var getHourlyAggregatesSQL string

//go:embed sql/get-daily-aggregates.sql
var getDailyAggregatesSQL string

// TelemetryRepository is the single point of contact with the relational
// store. Every operation runs one statement on a pooled connection; the
// connection goes back to the pool on every exit path.
type TelemetryRepository interface {
	InsertReading(ctx context.Context, in types.ReadingInput, ts time.Time) error
	LatestReading(ctx context.Context) (*types.Reading, error)
	HourlyAggregates(ctx context.Context, window time.Duration) ([]types.Bucket, error)
	DailyAggregates(ctx context.Context) ([]types.Bucket, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) TelemetryRepository {
	return &repositoryImpl{db: db}
}

// InsertReading writes one immutable row carrying the five sensor channels
// and the server-assigned timestamp. No retry on failure; the caller decides.
func (r *repositoryImpl) InsertReading(ctx context.Context, in types.ReadingInput, ts time.Time) error {
	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		in.Temperature, in.Humidity, in.MQ2Value, in.MQ135Value, in.LDRValue, ts)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// LatestReading returns the most recent row by timestamp, or nil (not an
// error) when the table is empty.
func (r *repositoryImpl) LatestReading(ctx context.Context) (*types.Reading, error) {
	var rec types.Reading
	err := r.db.QueryRowContext(ctx, getLatestReadingSQL).Scan(
		&rec.Temperature, &rec.Humidity, &rec.MQ2Value, &rec.MQ135Value, &rec.LDRValue, &rec.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest reading: %w", err)
	}
	return &rec, nil
}

// HourlyAggregates groups readings within window of the store-side "now" by
// hour-truncated timestamp, ascending. Hours with no data produce no bucket.
func (r *repositoryImpl) HourlyAggregates(ctx context.Context, window time.Duration) ([]types.Bucket, error) {
	rows, err := r.db.QueryContext(ctx, getHourlyAggregatesSQL, window.Seconds())
	if err != nil {
		return nil, fmt.Errorf("hourly aggregates: %w", err)
	}
	defer closeRows(rows, "hourly aggregates")
	return scanBuckets(rows)
}

// DailyAggregates groups all readings by day-truncated timestamp, most recent
// day first.
func (r *repositoryImpl) DailyAggregates(ctx context.Context) ([]types.Bucket, error) {
	rows, err := r.db.QueryContext(ctx, getDailyAggregatesSQL)
	if err != nil {
		return nil, fmt.Errorf("daily aggregates: %w", err)
	}
	defer closeRows(rows, "daily aggregates")
	return scanBuckets(rows)
}

func scanBuckets(rows *sql.Rows) ([]types.Bucket, error) {
	var out []types.Bucket
	for rows.Next() {
		var b types.Bucket
		if err := rows.Scan(&b.Start, &b.MinTemp, &b.MaxTemp, &b.AvgTemp); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func closeRows(rows *sql.Rows, op string) {
	if err := rows.Close(); err != nil {
		slog.Error("close rows", "op", op, "error", err)
	}
}
