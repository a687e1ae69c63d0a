package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/pkg/dbmetrics"
	"github.com/idjuv/agenda-service/pkg/psqlbuilder"
)

// Коды ошибок PostgreSQL, означающие пересечение заявок
const (
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
)

const tableName = "reservations"

// columns порядок колонок совпадает с порядком в scan
var columns = []string{
	"id",
	"series_id",
	"facility_id",
	"title",
	"description",
	"area",
	"estimated_audience",
	"observations",
	"start_at",
	"end_at",
	"requester_name",
	"requester_document",
	"requester_phone",
	"requester_email",
	"federation_id",
	"institution_id",
	"usage_type",
	"modalities",
	"status",
	"approved_by",
	"decided_at",
	"rejection_reason",
	"reference_number",
	"cancelled_at",
	"completed_at",
	"document_url",
	"created_by",
	"updated_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с заявками на использование объектов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую заявку.
// Если в контексте передана активная транзакция, использует её.
// Пересечение, отклоненное exclusion constraint, возвращается как ErrOverlap.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"id",
			"series_id",
			"facility_id",
			"title",
			"description",
			"area",
			"estimated_audience",
			"observations",
			"start_at",
			"end_at",
			"requester_name",
			"requester_document",
			"requester_phone",
			"requester_email",
			"federation_id",
			"institution_id",
			"usage_type",
			"modalities",
			"status",
			"created_by",
		).
		Values(
			res.ID,
			res.SeriesID,
			res.FacilityID,
			res.Title,
			res.Description,
			res.Area,
			res.EstimatedAudience,
			res.Observations,
			res.StartAt,
			res.EndAt,
			res.RequesterName,
			res.RequesterDocument,
			res.RequesterPhone,
			res.RequesterEmail,
			res.FederationID,
			res.InstitutionID,
			res.UsageType,
			pq.Array(modalitiesToStrings(res.Modalities)),
			res.Status,
			res.CreatedBy,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if isOverlapError(err) {
			return nil, fmt.Errorf("%w: Create - %v", ErrOverlap, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return res, nil
}

// GetByID получает заявку по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", ErrScanRow, err)
	}

	return res, nil
}

// GetByFacilityWithFilter получает заявки объекта, чьи окна пересекают период [From, To].
// Границы включительные, как и в проверке конфликтов.
//
// Без Status и IncludeInactive возвращает только занимающие агенду заявки
// (все, кроме cancelled и rejected).
// ForUpdate внутри транзакции блокирует найденные строки.
func (r *Repository) GetByFacilityWithFilter(ctx context.Context, filter domain.AgendaFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"facility_id": filter.FacilityID})

	// Пересечение с периодом
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"start_at": *filter.To})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_at": *filter.From})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		inactive := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactive[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactive})
	}

	selectBuilder = selectBuilder.OrderBy("start_at ASC", "id ASC")

	if filter.ForUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetBySeriesID получает все заявки серии в порядке начала
func (r *Repository) GetBySeriesID(ctx context.Context, seriesID uuid.UUID) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"series_id": seriesID}).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBySeriesID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySeriesID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// UpdateStatus применяет переход статуса, если текущий статус равен change.From.
// Возвращает обновленную заявку. Если заявка существует, но статус уже другой,
// возвращает ErrStatusChanged и ничего не меняет.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if !change.To.IsValid() {
		return nil, ErrInvalidStatus
	}

	updateBuilder := psqlbuilder.Update(tableName).
		Set("status", change.To).
		Set("updated_by", change.ActorID).
		Set("updated_at", change.At)

	switch change.To {
	case domain.StatusApproved:
		updateBuilder = updateBuilder.
			Set("approved_by", change.ActorID).
			Set("decided_at", change.At).
			Set("reference_number", change.ReferenceNumber)
	case domain.StatusRejected:
		updateBuilder = updateBuilder.
			Set("approved_by", change.ActorID).
			Set("decided_at", change.At).
			Set("rejection_reason", change.RejectionReason)
	case domain.StatusCancelled:
		updateBuilder = updateBuilder.Set("cancelled_at", change.At)
	case domain.StatusCompleted:
		updateBuilder = updateBuilder.Set("completed_at", change.At)
	}

	query, args, err := updateBuilder.
		Where(squirrel.Eq{"id": id, "status": change.From}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		// Различаем "нет такой заявки" и "статус уже изменился"
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	return res, nil
}

// CompleteElapsed переводит в completed все утвержденные заявки, закончившиеся до before.
// Возвращает измененные заявки.
func (r *Repository) CompleteElapsed(ctx context.Context, before time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", domain.StatusCompleted).
		Set("completed_at", before).
		Set("updated_at", before).
		Where(squirrel.Eq{"status": domain.StatusApproved}).
		Where(squirrel.LtOrEq{"end_at": before}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CompleteElapsed - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CompleteElapsed - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// SetDocument сохраняет ссылку на приложенный документ
func (r *Repository) SetDocument(ctx context.Context, id uuid.UUID, documentURL string, actorID uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("document_url", documentURL).
		Set("updated_by", actorID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetDocument - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetDocument - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetDocument - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var modalities []string

	err := row.Scan(
		&res.ID,
		&res.SeriesID,
		&res.FacilityID,
		&res.Title,
		&res.Description,
		&res.Area,
		&res.EstimatedAudience,
		&res.Observations,
		&res.StartAt,
		&res.EndAt,
		&res.RequesterName,
		&res.RequesterDocument,
		&res.RequesterPhone,
		&res.RequesterEmail,
		&res.FederationID,
		&res.InstitutionID,
		&res.UsageType,
		pq.Array(&modalities),
		&res.Status,
		&res.ApprovedBy,
		&res.DecidedAt,
		&res.RejectionReason,
		&res.ReferenceNumber,
		&res.CancelledAt,
		&res.CompletedAt,
		&res.DocumentURL,
		&res.CreatedBy,
		&res.UpdatedBy,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Modalities = stringsToModalities(modalities)
	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс заявок
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}

func joinColumns() string {
	return strings.Join(columns, ", ")
}

func modalitiesToStrings(modalities []domain.Modality) []string {
	out := make([]string, len(modalities))
	for i, m := range modalities {
		out[i] = string(m)
	}
	return out
}

func stringsToModalities(values []string) []domain.Modality {
	out := make([]domain.Modality, len(values))
	for i, v := range values {
		out[i] = domain.Modality(v)
	}
	return out
}

func isOverlapError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgExclusionViolation || pqErr.Code == pgSerializationFailure
	}
	return false
}
