package facilities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/idjuv/agenda-service/internal/domain"
	facilityRepo "github.com/idjuv/agenda-service/internal/infra/storage/facility"
	"github.com/idjuv/agenda-service/internal/service/facilities/models"
)

// Service сервис для работы с объектами (unidades locais)
type Service struct {
	facilityRepo FacilityRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса объектов
func NewService(facilityRepo FacilityRepository, logger Logger) *Service {
	return &Service{
		facilityRepo: facilityRepo,
		logger:       logger,
	}
}

// Get получает объект по ID
func (s *Service) Get(ctx context.Context, id int64) (*models.FacilityResponse, error) {
	s.logger.Info("Get: fetching facility id=%d", id)

	if id <= 0 {
		return nil, fmt.Errorf("%w: facility id must be positive", ErrInvalidInput)
	}

	facility, err := s.facilityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			s.logger.Warn("Get: facility id=%d not found", id)
			return nil, ErrFacilityNotFound
		}
		s.logger.Error("Get: repository error for facility id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainFacility(facility), nil
}

// List получает список объектов
func (s *Service) List(ctx context.Context, activeOnly bool) (*models.FacilityListResponse, error) {
	s.logger.Info("List: fetching facilities, activeOnly=%t", activeOnly)

	facilities, err := s.facilityRepo.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d facilities", len(facilities))
	return models.FromDomainFacilityList(facilities), nil
}

// AssignChief назначает текущего руководителя объекта. Только для роли admin.
func (s *Service) AssignChief(ctx context.Context, id int64, req *models.AssignChiefRequest) (*models.FacilityResponse, error) {
	s.logger.Info("AssignChief: facility id=%d, chief=%v", id, req.ChiefUserID)

	if req.ActorRole != domain.RoleAdmin {
		s.logger.Warn("AssignChief: role %q may not assign chiefs", req.ActorRole)
		return nil, ErrAccessDenied
	}

	chiefName := req.ChiefName
	if chiefName != nil {
		trimmed := strings.TrimSpace(*chiefName)
		chiefName = &trimmed
		if trimmed == "" {
			chiefName = nil
		}
	}

	if req.ChiefUserID == nil {
		// Снятие руководителя очищает и имя
		chiefName = nil
	}

	facility, err := s.facilityRepo.UpdateChief(ctx, id, req.ChiefUserID, chiefName)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			s.logger.Warn("AssignChief: facility id=%d not found", id)
			return nil, ErrFacilityNotFound
		}
		s.logger.Error("AssignChief: repository error for facility id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: AssignChief - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AssignChief: facility id=%d chief updated", id)
	return models.FromDomainFacility(facility), nil
}
