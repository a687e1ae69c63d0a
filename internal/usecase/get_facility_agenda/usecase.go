package get_facility_agenda

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/infra/cache"
	facilityRepo "github.com/idjuv/agenda-service/internal/infra/storage/facility"
)

// UseCase use case для получения агенды объекта за период
type UseCase struct {
	reservationRepo ReservationRepository
	facilityRepo    FacilityRepository
	cache           AgendaCache
	location        *time.Location
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	facilityRepo FacilityRepository,
	cache AgendaCache,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}

	return &UseCase{
		reservationRepo: reservationRepo,
		facilityRepo:    facilityRepo,
		cache:           cache,
		location:        location,
		logger:          logger,
	}
}

// Execute выполняет use case получения агенды.
// Список читается через кэш, который сбрасывается при любой записи по объекту.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetFacilityAgenda: facility=%d, from=%s, to=%s, includeInactive=%t",
		req.FacilityID, req.From, req.To, req.IncludeInactive)

	// 1. Валидация входных данных
	p, status, err := validateRequest(req, uc.location)
	if err != nil {
		uc.logger.Warn("GetFacilityAgenda: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем объект
	facility, err := uc.facilityRepo.GetByID(ctx, req.FacilityID)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			uc.logger.Warn("GetFacilityAgenda: facility id=%d not found", req.FacilityID)
			return nil, ErrFacilityNotFound
		}
		uc.logger.Error("GetFacilityAgenda: failed to get facility id=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
	}

	// 3. Пробуем кэш. Поколение берется до запроса в БД: если запись
	// завершится во время чтения, снимок ляжет под устаревший ключ.
	scope := cache.FacilityScope(req.FacilityID)
	gen, err := uc.cache.Generation(ctx, cache.EntityAgenda, scope)
	useCache := err == nil
	if err != nil {
		uc.logger.Warn("GetFacilityAgenda: cache generation failed for scope=%s: %v", scope, err)
	}

	key := agendaKey(req.FacilityID, gen, p, status, req.IncludeInactive)

	var reservations []*domain.Reservation
	found := false
	if useCache {
		found, err = uc.cache.Get(ctx, key, &reservations)
		if err != nil {
			// Кэш недоступен, читаем из БД
			uc.logger.Warn("GetFacilityAgenda: cache get failed for key=%s: %v", key.String(), err)
		}
	}

	if !found {
		reservations, err = uc.reservationRepo.GetByFacilityWithFilter(ctx, domain.AgendaFilter{
			FacilityID:      req.FacilityID,
			From:            &p.from,
			To:              &p.to,
			Status:          status,
			IncludeInactive: req.IncludeInactive,
		})
		if err != nil {
			uc.logger.Error("GetFacilityAgenda: failed to get reservations: %v", err)
			return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
		}

		if useCache {
			if err := uc.cache.Set(ctx, key, reservations); err != nil {
				uc.logger.Warn("GetFacilityAgenda: cache set failed for key=%s: %v", key.String(), err)
			}
		}
	}

	uc.logger.Info("GetFacilityAgenda: facility=%d, found %d reservation(s), cached=%t",
		req.FacilityID, len(reservations), found)

	return &Response{
		Facility:     facility,
		From:         p.from,
		To:           p.to,
		Reservations: reservations,
	}, nil
}

func agendaKey(facilityID, gen int64, p period, status *domain.Status, includeInactive bool) cache.Key {
	statusParam := ""
	if status != nil {
		statusParam = string(*status)
	}

	return cache.AgendaKey(facilityID,
		cache.GenerationParam(gen),
		p.from.Format(domain.DateFormat),
		p.to.Format(domain.DateFormat),
		statusParam,
		strconv.FormatBool(includeInactive),
	)
}
