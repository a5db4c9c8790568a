package service

import (
	"context"

	"awareness_bell/internal/models"
	"awareness_bell/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Bell exposes the start/stop control of the schedule controller.
type Bell interface {
	Start(ctx context.Context) (Ack, error)
	Stop(ctx context.Context) (Ack, error)
}

// Monitoring exposes read-only state.
type Monitoring interface {
	GetState(ctx context.Context) (models.BellState, error)
}

// EventLog exposes the append-only history with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.BellEvent, error)
}

// Quotes exposes the loaded quote collection.
type Quotes interface {
	PickRandom() (string, error)
	Reload() (int, error)
	Len() int
}

// Feed streams user-facing notifications.
type Feed interface {
	Subscribe() (<-chan models.Notification, func())
}

// Service aggregates the sub-services used by the handlers.
type Service struct {
	Bell
	Monitoring
	EventLog
	Quotes
	Feed
	Authorization
}

// Deps are the long-lived components built in main.
type Deps struct {
	Controller *ScheduleController
	Quotes     Quotes
	Feed       Feed
	Clock      Clock
	Auth       AuthConfig
}

func NewService(repos *repository.Repository, d Deps) *Service {
	return &Service{
		Bell:          d.Controller,
		Monitoring:    NewMonitoringService(d.Controller, d.Quotes, d.Clock),
		EventLog:      NewEventLogService(repos.EventRepo),
		Quotes:        d.Quotes,
		Feed:          d.Feed,
		Authorization: NewAuthService(repos.Owners, d.Auth),
	}
}
