package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"airlog-server/internal/config"
	"airlog-server/internal/db"
	"airlog-server/internal/httpapi"
	"airlog-server/internal/modules/telemetry"
	telemetryviews "airlog-server/internal/modules/telemetry/views"
	"airlog-server/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbHost", cfg.DBHost,
		"dbPort", cfg.DBPort,
		"dbName", cfg.DBName,
		"dbMaxOpenConns", cfg.DBMaxOpenConns,
		"dbMaxIdleConns", cfg.DBMaxIdleConns,
		"dbConnMaxLifetime", cfg.DBConnMaxLifetime,
		"mqttEnabled", cfg.MQTTEnabled,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := db.Migrate(dbConn); err != nil {
		return err
	}
	slog.Info("database connection successful")

	if err := telemetryviews.LoadTemplates(); err != nil {
		return err
	}

	// Set up the MQTT handler before Connect so OnConnectHandler can subscribe
	// immediately. The broker may send queued messages right after CONNACK; we
	// must be subscribed before that to receive them.
	var mqttSubscriber *mqtt.Subscriber
	if cfg.MQTTEnabled {
		mqttSubscriber = mqtt.NewSubscriber(cfg, slog.Default())
	}

	router := httpapi.NewRouter(dbConn)
	telemetry.RegisterFeature(router, dbConn, mqttSubscriber)

	if mqttSubscriber != nil {
		// Use a short timeout for the initial MQTT connect so we don't block
		// startup when the broker is down.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = mqttSubscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	}

	srv := httpapi.NewServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if mqttSubscriber != nil {
		slog.Info("mqtt disconnecting")
		mqttSubscriber.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
