// Package preferences хранит выбранный пользователем объект между сессиями
package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
	facilityRepo "github.com/idjuv/agenda-service/internal/infra/storage/facility"
	preferencesRepo "github.com/idjuv/agenda-service/internal/infra/storage/preferences"
)

var (
	// ErrFacilityNotFound возвращается, когда выбранный объект не существует
	ErrFacilityNotFound = errors.New("preferences: facility not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("preferences: internal error")
)

// PreferencesRepository интерфейс репозитория настроек
type PreferencesRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Preferences, error)
	Upsert(ctx context.Context, p *domain.Preferences) (*domain.Preferences, error)
}

// FacilityRepository интерфейс репозитория объектов
type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Preferences DTO настроек
type Preferences struct {
	SelectedFacilityID *int64 `json:"selectedFacilityId"`
}

// Service сервис пользовательских настроек
type Service struct {
	repo         PreferencesRepository
	facilityRepo FacilityRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(repo PreferencesRepository, facilityRepo FacilityRepository, logger Logger) *Service {
	return &Service{repo: repo, facilityRepo: facilityRepo, logger: logger}
}

// Load возвращает сохраненные настройки или значения по умолчанию
func (s *Service) Load(ctx context.Context, userID uuid.UUID) (*Preferences, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, preferencesRepo.ErrPreferencesNotFound) {
			return &Preferences{}, nil
		}
		s.logger.Error("Load: repository error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: Load - %v", ErrInternal, err)
	}

	return &Preferences{SelectedFacilityID: p.SelectedFacilityID}, nil
}

// Save проверяет объект и сохраняет настройки
func (s *Service) Save(ctx context.Context, userID uuid.UUID, prefs *Preferences) (*Preferences, error) {
	s.logger.Info("Save: user=%s, facility=%v", userID, prefs.SelectedFacilityID)

	if prefs.SelectedFacilityID != nil {
		if _, err := s.facilityRepo.GetByID(ctx, *prefs.SelectedFacilityID); err != nil {
			if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
				s.logger.Warn("Save: facility id=%d not found", *prefs.SelectedFacilityID)
				return nil, ErrFacilityNotFound
			}
			s.logger.Error("Save: failed to get facility: %v", err)
			return nil, fmt.Errorf("%w: Save - %v", ErrInternal, err)
		}
	}

	saved, err := s.repo.Upsert(ctx, &domain.Preferences{
		UserID:             userID,
		SelectedFacilityID: prefs.SelectedFacilityID,
	})
	if err != nil {
		s.logger.Error("Save: repository error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: Save - %v", ErrInternal, err)
	}

	return &Preferences{SelectedFacilityID: saved.SelectedFacilityID}, nil
}
