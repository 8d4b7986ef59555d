package service

import (
	"airlog-server/internal/modules/telemetry/repository"
	"airlog-server/internal/mqtt"
)

type Service struct {
	repository repository.TelemetryRepository
}

func NewService(repository repository.TelemetryRepository) *Service {
	return &Service{repository: repository}
}

func (s *Service) Register(subscriber mqtt.MessageSubscriber) {
	registerMQTTHandler(subscriber, s.repository)
}
