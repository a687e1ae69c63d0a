package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/infra/cache"
	"github.com/idjuv/agenda-service/internal/infra/queue"
	facilityRepo "github.com/idjuv/agenda-service/internal/infra/storage/facility"
	partnerRepo "github.com/idjuv/agenda-service/internal/infra/storage/partner"
	reservationRepo "github.com/idjuv/agenda-service/internal/infra/storage/reservation"
	"github.com/idjuv/agenda-service/pkg/txmanager"
)

// Settings параметры приема заявок
type Settings struct {
	Location       *time.Location // часовой пояс агенды
	MaxOccurrences int            // лимит вхождений повторяющейся заявки
}

// UseCase use case для создания заявки на использование объекта
type UseCase struct {
	reservationRepo ReservationRepository
	facilityRepo    FacilityRepository
	partnerRepo     PartnerRepository
	txManager       TransactionManager
	cache           AgendaCache
	publisher       EventPublisher
	settings        Settings
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	facilityRepo FacilityRepository,
	partnerRepo PartnerRepository,
	txManager TransactionManager,
	cache AgendaCache,
	publisher EventPublisher,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.MaxOccurrences <= 0 {
		settings.MaxOccurrences = domain.MaxOccurrences
	}

	return &UseCase{
		reservationRepo: reservationRepo,
		facilityRepo:    facilityRepo,
		partnerRepo:     partnerRepo,
		txManager:       txManager,
		cache:           cache,
		publisher:       publisher,
		settings:        settings,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания заявки.
// Проверка пересечений и вставка выполняются в одной сериализуемой транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	normalizeRequest(req)

	uc.logger.Info("CreateReservation: actor=%s, facility=%d, usage=%s, start=%s %s, end=%s %s",
		req.ActorID, req.FacilityID, req.UsageType, req.StartDate, req.StartTime, req.EndDate, req.EndTime)

	now := uc.timeProvider.Now()

	// 1. Валидация входных данных, без обращения к хранилищу
	w, err := validateRequest(req, now, uc.settings.Location)
	if err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Развертывание повторения
	windows, err := expandOccurrences(w, req.Recurrence, uc.settings.MaxOccurrences)
	if err != nil {
		uc.logger.Warn("CreateReservation: recurrence rejected: %v", err)
		return nil, err
	}

	if i, j, ok := findSelfOverlap(windows); ok {
		uc.logger.Warn("CreateReservation: occurrences %d and %d overlap", i, j)
		return nil, &ConflictError{Conflicting: &domain.Reservation{
			Title:      req.Title,
			FacilityID: req.FacilityID,
			StartAt:    windows[i].start,
			EndAt:      windows[i].end,
		}}
	}

	// 3. Объект должен существовать и принимать заявки
	facility, err := uc.facilityRepo.GetByID(ctx, req.FacilityID)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			uc.logger.Warn("CreateReservation: facility id=%d not found", req.FacilityID)
			return nil, ErrFacilityNotFound
		}
		uc.logger.Error("CreateReservation: failed to get facility id=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
	}

	if !facility.Active {
		uc.logger.Warn("CreateReservation: facility id=%d is inactive", req.FacilityID)
		return nil, ErrFacilityInactive
	}

	// 4. Заявитель: свободный ввод или копия данных партнера
	requester, err := uc.composeRequester(ctx, req)
	if err != nil {
		return nil, err
	}

	var seriesID *uuid.UUID
	if len(windows) > 1 {
		id := uuid.New()
		seriesID = &id
	}

	created := make([]*domain.Reservation, 0, len(windows))

	// 5. Проверка пересечений и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		from := windows[0].start
		to := windows[len(windows)-1].end

		existing, err := uc.reservationRepo.GetByFacilityWithFilter(txCtx, domain.AgendaFilter{
			FacilityID:      req.FacilityID,
			From:            &from,
			To:              &to,
			IncludeInactive: false,
			ForUpdate:       true,
		})
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get facility agenda: %v", err)
			return fmt.Errorf("%w: failed to get facility agenda: %v", ErrInternal, err)
		}

		if conflicting := findConflict(windows, existing); conflicting != nil {
			uc.logger.Warn("CreateReservation: window conflicts with reservation id=%s (%s)",
				conflicting.ID, conflicting.Title)
			return &ConflictError{Conflicting: conflicting}
		}

		for _, occ := range windows {
			res := uc.buildReservation(req, requester, occ, seriesID)

			saved, err := uc.reservationRepo.Create(txCtx, res)
			if err != nil {
				if errors.Is(err, reservationRepo.ErrOverlap) {
					uc.logger.Warn("CreateReservation: overlap rejected by database: %v", err)
					return &ConflictError{}
				}
				uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
				return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
			}

			created = append(created, saved)
		}

		return nil
	})

	if err != nil {
		// Конкурентная транзакция заняла то же окно
		if errors.Is(err, txmanager.ErrSerialization) {
			uc.logger.Warn("CreateReservation: serialization failure treated as conflict: %v", err)
			return nil, &ConflictError{}
		}
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("CreateReservation: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateReservation: created %d reservation(s) for facility=%d", len(created), req.FacilityID)

	// 6. После фиксации: сброс кэша агенды и события
	uc.afterCommit(ctx, req.FacilityID, req.ActorID, created, now)

	return &Response{SeriesID: seriesID, Reservations: created}, nil
}

// composeRequester формирует идентичность заявителя.
// Для партнера свободный ввод игнорируется, данные копируются из справочника.
func (uc *UseCase) composeRequester(ctx context.Context, req *Request) (domain.Requester, error) {
	switch domain.RequesterSource(req.RequesterSource) {
	case domain.RequesterFederation:
		federation, err := uc.partnerRepo.GetFederation(ctx, *req.FederationID)
		if err != nil {
			if errors.Is(err, partnerRepo.ErrFederationNotFound) {
				uc.logger.Warn("CreateReservation: federation id=%s not found", *req.FederationID)
				return domain.Requester{}, ErrFederationNotFound
			}
			uc.logger.Error("CreateReservation: failed to get federation: %v", err)
			return domain.Requester{}, fmt.Errorf("%w: failed to get federation: %v", ErrInternal, err)
		}
		// Неактивный партнер не может заявлять объекты
		if !federation.Active {
			uc.logger.Warn("CreateReservation: federation id=%s is inactive", *req.FederationID)
			return domain.Requester{}, ErrFederationNotFound
		}
		return domain.RequesterFromFederation(federation), nil

	case domain.RequesterInstitution:
		institution, err := uc.partnerRepo.GetInstitution(ctx, *req.InstitutionID)
		if err != nil {
			if errors.Is(err, partnerRepo.ErrInstitutionNotFound) {
				uc.logger.Warn("CreateReservation: institution id=%s not found", *req.InstitutionID)
				return domain.Requester{}, ErrInstitutionNotFound
			}
			uc.logger.Error("CreateReservation: failed to get institution: %v", err)
			return domain.Requester{}, fmt.Errorf("%w: failed to get institution: %v", ErrInternal, err)
		}
		if !institution.Active {
			uc.logger.Warn("CreateReservation: institution id=%s is inactive", *req.InstitutionID)
			return domain.Requester{}, ErrInstitutionNotFound
		}
		return domain.RequesterFromInstitution(institution), nil
	}

	return domain.Requester{
		Name:     req.RequesterName,
		Document: req.RequesterDocument,
		Phone:    req.RequesterPhone,
		Email:    req.RequesterEmail,
	}, nil
}

func (uc *UseCase) buildReservation(req *Request, requester domain.Requester, w window, seriesID *uuid.UUID) *domain.Reservation {
	modalities := make([]domain.Modality, 0, len(req.Modalities))
	for _, m := range req.Modalities {
		modalities = append(modalities, domain.Modality(m))
	}

	return &domain.Reservation{
		SeriesID:          seriesID,
		FacilityID:        req.FacilityID,
		Title:             req.Title,
		Description:       req.Description,
		Area:              req.Area,
		EstimatedAudience: req.EstimatedAudience,
		Observations:      req.Observations,
		StartAt:           w.start,
		EndAt:             w.end,
		RequesterName:     requester.Name,
		RequesterDocument: requester.Document,
		RequesterPhone:    requester.Phone,
		RequesterEmail:    requester.Email,
		FederationID:      requester.FederationID,
		InstitutionID:     requester.InstitutionID,
		UsageType:         domain.UsageType(req.UsageType),
		Modalities:        modalities,
		Status:            domain.StatusRequested,
		CreatedBy:         req.ActorID,
	}
}

// afterCommit ошибки кэша и брокера не отменяют созданную заявку
func (uc *UseCase) afterCommit(ctx context.Context, facilityID int64, actorID uuid.UUID, created []*domain.Reservation, now time.Time) {
	if err := uc.cache.InvalidateScope(ctx, cache.EntityAgenda, cache.FacilityScope(facilityID)); err != nil {
		uc.logger.Warn("CreateReservation: failed to invalidate agenda cache for facility=%d: %v", facilityID, err)
	}

	for _, res := range created {
		event := queue.NewReservationEvent(res, nil, actorID, now)
		if err := uc.publisher.PublishReservation(ctx, event); err != nil {
			uc.logger.Warn("CreateReservation: failed to publish event for reservation id=%s: %v", res.ID, err)
		}
	}
}
