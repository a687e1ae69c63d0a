package reservations

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/internal/infra/cache"
	"github.com/idjuv/agenda-service/internal/infra/queue"
	facilityRepo "github.com/idjuv/agenda-service/internal/infra/storage/facility"
	reservationRepo "github.com/idjuv/agenda-service/internal/infra/storage/reservation"
	"github.com/idjuv/agenda-service/internal/service/reservations/models"
)

// Допустимые типы документов
var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Service сервис согласования заявок
type Service struct {
	reservationRepo ReservationRepository
	facilityRepo    FacilityRepository
	storage         DocumentStorage
	cache           AgendaCache
	publisher       EventPublisher
	metrics         TransitionMetrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса заявок
func NewService(
	reservationRepo ReservationRepository,
	facilityRepo FacilityRepository,
	storage DocumentStorage,
	cache AgendaCache,
	publisher EventPublisher,
	metrics TransitionMetrics,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		facilityRepo:    facilityRepo,
		storage:         storage,
		cache:           cache,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает заявку по ID.
// Агенда публичная, поэтому чтение доступно любому аутентифицированному пользователю.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%s for user=%s", id, userID)

	res, err := s.getReservation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservation(res), nil
}

// Approve утверждает заявку. Только текущий руководитель объекта, только из requested.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, req *models.ApproveRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Approve: reservation id=%s by user=%s", id, req.UserID)

	reference := strings.TrimSpace(req.ReferenceNumber)
	if reference == "" || !domain.ValidReferenceNumber(reference) {
		s.logger.Warn("Approve: invalid reference number %q for reservation id=%s", req.ReferenceNumber, id)
		return nil, ErrInvalidReference
	}

	return s.transition(ctx, "Approve", id, req.UserID, domain.StatusApproved, requireChief,
		func(_ *domain.Reservation, change *domain.StatusChange) error {
			change.ReferenceNumber = &reference
			return nil
		})
}

// Reject отклоняет заявку с обязательной причиной. Только руководитель, только из requested.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, req *models.RejectRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Reject: reservation id=%s by user=%s", id, req.UserID)

	if strings.TrimSpace(req.Reason) == "" {
		s.logger.Warn("Reject: empty reason for reservation id=%s", id)
		return nil, ErrReasonRequired
	}

	if utf8.RuneCountInString(req.Reason) > domain.MaxRejectionReasonLength {
		s.logger.Warn("Reject: reason too long for reservation id=%s", id)
		return nil, ErrReasonTooLong
	}

	// Причина сохраняется как введена
	reason := req.Reason

	return s.transition(ctx, "Reject", id, req.UserID, domain.StatusRejected, requireChief,
		func(_ *domain.Reservation, change *domain.StatusChange) error {
			change.RejectionReason = &reason
			return nil
		})
}

// Cancel отменяет заявку из requested или approved.
// Доступно автору заявки и руководителю объекта.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *models.ActionRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: reservation id=%s by user=%s", id, req.UserID)

	return s.transition(ctx, "Cancel", id, req.UserID, domain.StatusCancelled, requireCreatorOrChief, nil)
}

// Complete завершает утвержденную заявку после окончания окна. Только руководитель.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, req *models.ActionRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Complete: reservation id=%s by user=%s", id, req.UserID)

	return s.transition(ctx, "Complete", id, req.UserID, domain.StatusCompleted, requireChief,
		func(res *domain.Reservation, change *domain.StatusChange) error {
			if !res.HasFinished(change.At) {
				s.logger.Warn("Complete: reservation id=%s ends at %s", res.ID, res.EndAt.Format(time.RFC3339))
				return ErrNotFinished
			}
			return nil
		})
}

// CompleteElapsed завершает все утвержденные заявки, окно которых закончилось
func (s *Service) CompleteElapsed(ctx context.Context) (int, error) {
	now := s.timeProvider.Now()
	s.logger.Info("CompleteElapsed: completing approved reservations ended before %s", now.Format(time.RFC3339))

	completed, err := s.reservationRepo.CompleteElapsed(ctx, now)
	if err != nil {
		s.logger.Error("CompleteElapsed: repository error: %v", err)
		return 0, fmt.Errorf("%w: CompleteElapsed - repository error: %v", ErrInternal, err)
	}

	invalidated := make(map[int64]bool)
	approved := domain.StatusApproved
	for _, res := range completed {
		if !invalidated[res.FacilityID] {
			s.invalidate(ctx, "CompleteElapsed", res.FacilityID)
			invalidated[res.FacilityID] = true
		}
		s.metrics.ObserveTransition(string(domain.StatusCompleted))
		s.publish(ctx, "CompleteElapsed", res, &approved, uuid.Nil, now)
	}

	s.logger.Info("CompleteElapsed: completed %d reservation(s)", len(completed))
	return len(completed), nil
}

// AttachDocument загружает документ заявки в хранилище и сохраняет ссылку.
// Доступно автору и руководителю, пока заявка не в конечном статусе.
func (s *Service) AttachDocument(ctx context.Context, id uuid.UUID, req *models.DocumentRequest) (*models.ReservationResponse, error) {
	s.logger.Info("AttachDocument: reservation id=%s by user=%s, file=%s, size=%d",
		id, req.UserID, req.Filename, len(req.Body))

	if len(req.Body) == 0 || len(req.Body) > domain.MaxDocumentSizeBytes {
		s.logger.Warn("AttachDocument: invalid size %d for reservation id=%s", len(req.Body), id)
		return nil, fmt.Errorf("%w: size must be between 1 and %d bytes", ErrInvalidDocument, domain.MaxDocumentSizeBytes)
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.Split(req.ContentType, ";")[0]))
	if !allowedDocumentTypes[contentType] {
		s.logger.Warn("AttachDocument: content type %q not allowed", req.ContentType)
		return nil, fmt.Errorf("%w: content type %q not allowed", ErrInvalidDocument, req.ContentType)
	}

	res, err := s.getReservation(ctx, "AttachDocument", id)
	if err != nil {
		return nil, err
	}

	facility, err := s.getFacility(ctx, "AttachDocument", res.FacilityID)
	if err != nil {
		return nil, err
	}

	if err := requireCreatorOrChief(res, facility, req.UserID); err != nil {
		s.logger.Warn("AttachDocument: access denied for user=%s to reservation id=%s", req.UserID, id)
		return nil, err
	}

	if res.IsTerminal() {
		s.logger.Warn("AttachDocument: reservation id=%s is %s", id, res.Status)
		return nil, ErrInvalidTransition
	}

	now := s.timeProvider.Now()
	objectPath := fmt.Sprintf("%s/%d-%s", res.ID, now.Unix(), sanitizeFilename(req.Filename))

	url, err := s.storage.Upload(ctx, objectPath, contentType, req.Body)
	if err != nil {
		s.logger.Error("AttachDocument: upload failed for reservation id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: AttachDocument - upload failed: %v", ErrInternal, err)
	}

	if err := s.reservationRepo.SetDocument(ctx, id, url, req.UserID); err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("AttachDocument: repository error for reservation id=%s, orphaned object %s: %v", id, objectPath, err)
		return nil, fmt.Errorf("%w: AttachDocument - repository error: %v", ErrInternal, err)
	}

	res.DocumentURL = &url
	res.UpdatedBy = &req.UserID
	s.invalidate(ctx, "AttachDocument", res.FacilityID)

	s.logger.Info("AttachDocument: stored document for reservation id=%s at %s", id, url)
	return models.FromDomainReservation(res), nil
}

// Вспомогательные методы

type authorizeFunc func(res *domain.Reservation, facility *domain.Facility, userID uuid.UUID) error

type prepareFunc func(res *domain.Reservation, change *domain.StatusChange) error

// transition применяет переход статуса условным UPDATE по ожидаемому статусу.
// Если статус успел измениться, заявка не меняется и возвращается ErrInvalidTransition.
func (s *Service) transition(
	ctx context.Context,
	op string,
	id uuid.UUID,
	userID uuid.UUID,
	target domain.Status,
	authorize authorizeFunc,
	prepare prepareFunc,
) (*models.ReservationResponse, error) {
	res, err := s.getReservation(ctx, op, id)
	if err != nil {
		return nil, err
	}

	facility, err := s.getFacility(ctx, op, res.FacilityID)
	if err != nil {
		return nil, err
	}

	if err := authorize(res, facility, userID); err != nil {
		s.logger.Warn("%s: access denied for user=%s to reservation id=%s", op, userID, id)
		return nil, err
	}

	if !res.CanTransitionTo(target) {
		s.logger.Warn("%s: reservation id=%s cannot move from %s to %s", op, id, res.Status, target)
		return nil, ErrInvalidTransition
	}

	change := domain.StatusChange{
		From:    res.Status,
		To:      target,
		ActorID: userID,
		At:      s.timeProvider.Now(),
	}

	if prepare != nil {
		if err := prepare(res, &change); err != nil {
			return nil, err
		}
	}

	updated, err := s.reservationRepo.UpdateStatus(ctx, id, change)
	if err != nil {
		switch {
		case errors.Is(err, reservationRepo.ErrStatusChanged):
			s.logger.Warn("%s: reservation id=%s changed concurrently", op, id)
			return nil, ErrInvalidTransition
		case errors.Is(err, reservationRepo.ErrReservationNotFound):
			s.logger.Warn("%s: reservation id=%s disappeared during update", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.metrics.ObserveTransition(string(target))
	s.invalidate(ctx, op, updated.FacilityID)
	s.publish(ctx, op, updated, &change.From, userID, change.At)

	s.logger.Info("%s: reservation id=%s moved %s -> %s", op, id, change.From, target)
	return models.FromDomainReservation(updated), nil
}

func (s *Service) getReservation(ctx context.Context, op string, id uuid.UUID) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%s not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return res, nil
}

func (s *Service) getFacility(ctx context.Context, op string, id int64) (*domain.Facility, error) {
	facility, err := s.facilityRepo.GetByID(ctx, id)
	if err != nil {
		// Заявка ссылается на объект через FK, отсутствие объекта внутренняя ошибка
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			s.logger.Error("%s: facility id=%d of reservation not found", op, id)
		} else {
			s.logger.Error("%s: failed to get facility id=%d: %v", op, id, err)
		}
		return nil, fmt.Errorf("%w: %s - failed to get facility: %v", ErrInternal, op, err)
	}
	return facility, nil
}

func (s *Service) invalidate(ctx context.Context, op string, facilityID int64) {
	if err := s.cache.InvalidateScope(ctx, cache.EntityAgenda, cache.FacilityScope(facilityID)); err != nil {
		s.logger.Warn("%s: failed to invalidate agenda cache for facility=%d: %v", op, facilityID, err)
	}
}

func (s *Service) publish(ctx context.Context, op string, res *domain.Reservation, previous *domain.Status, actorID uuid.UUID, at time.Time) {
	event := queue.NewReservationEvent(res, previous, actorID, at)
	if err := s.publisher.PublishReservation(ctx, event); err != nil {
		s.logger.Warn("%s: failed to publish event for reservation id=%s: %v", op, res.ID, err)
	}
}

// requireChief только текущий руководитель объекта
func requireChief(_ *domain.Reservation, facility *domain.Facility, userID uuid.UUID) error {
	if !facility.IsChief(userID) {
		return ErrAccessDenied
	}
	return nil
}

// requireCreatorOrChief автор заявки или руководитель объекта
func requireCreatorOrChief(res *domain.Reservation, facility *domain.Facility, userID uuid.UUID) error {
	if res.CreatedBy == userID || facility.IsChief(userID) {
		return nil
	}
	return ErrAccessDenied
}

// sanitizeFilename оставляет только имя файла без пути; символы вне [A-Za-z0-9._-] заменяются на "_"
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "documento"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
}
