package service

import (
	"context"
	"errors"

	"drivedesk/internal/domain"
	"drivedesk/internal/events"
	"drivedesk/internal/metrics"
	"drivedesk/internal/models"
	"drivedesk/internal/storage"

	"github.com/rs/zerolog"
)

type ManagerService struct {
	directory domain.ManagerDirectory
	eventBus  domain.EventPublisher
	logger    *zerolog.Logger
}

func NewManagerService(directory domain.ManagerDirectory, eventBus domain.EventPublisher, logger *zerolog.Logger) *ManagerService {
	return &ManagerService{
		directory: directory,
		eventBus:  eventBus,
		logger:    logger,
	}
}

func (s *ManagerService) Register(ctx context.Context, input models.ManagerInput) (*models.Manager, error) {
	manager, err := s.directory.Register(ctx, input)
	if err != nil {
		return nil, err
	}

	s.publishManagerEvent(events.EventManagerRegistered, manager.ID, manager.Name, manager.Branch, manager.Email)
	return manager, nil
}

func (s *ManagerService) Login(ctx context.Context, email, password string) (*models.ManagerSession, error) {
	session, err := s.directory.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			metrics.IncManagerLogin("failure")
		}
		return nil, err
	}

	metrics.IncManagerLogin("success")
	s.publishManagerEvent(events.EventManagerLogin, session.ManagerID, session.Name, session.Branch, session.Email)
	return session, nil
}

func (s *ManagerService) Logout(ctx context.Context) error {
	return s.directory.EndSession(ctx)
}

func (s *ManagerService) Session(ctx context.Context) (*models.ManagerSession, error) {
	return s.directory.CurrentSession(ctx)
}

func (s *ManagerService) AvailableBranches(ctx context.Context) ([]string, error) {
	return s.directory.AvailableBranches(ctx)
}

func (s *ManagerService) publishManagerEvent(eventType, id, name, branch, email string) {
	if s.eventBus == nil {
		return
	}
	payload := events.ManagerEventPayload{
		ManagerID: id,
		Name:      name,
		Branch:    branch,
		Email:     email,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("publish event failed")
	}
}
