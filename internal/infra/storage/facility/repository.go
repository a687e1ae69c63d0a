package facility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
	"github.com/idjuv/agenda-service/pkg/dbmetrics"
	"github.com/idjuv/agenda-service/pkg/psqlbuilder"
)

type DBExecutor = dbmetrics.DBExecutor

var columns = []string{
	"id",
	"name",
	"address",
	"capacity",
	"chief_user_id",
	"chief_name",
	"active",
	"created_at",
	"updated_at",
}

// Repository репозиторий объектов (unidades locais)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория объектов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает объект по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("facilities").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	facility, err := scanFacility(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan facility: %v", ErrScanRow, err)
	}

	return facility, nil
}

// List получает список объектов, отсортированный по названию
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*domain.Facility, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("facilities").
		OrderBy("name ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	facilities := make([]*domain.Facility, 0)
	for rows.Next() {
		facility, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		facilities = append(facilities, facility)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return facilities, nil
}

// UpdateChief назначает текущего руководителя объекта.
// chiefUserID = nil снимает назначение.
func (r *Repository) UpdateChief(ctx context.Context, id int64, chiefUserID *uuid.UUID, chiefName *string) (*domain.Facility, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("facilities").
		Set("chief_user_id", chiefUserID).
		Set("chief_name", chiefName).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, name, address, capacity, chief_user_id, chief_name, active, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateChief - build update query: %v", ErrBuildQuery, err)
	}

	facility, err := scanFacility(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateChief - execute update: %v", ErrExecQuery, err)
	}

	return facility, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFacility(row rowScanner) (*domain.Facility, error) {
	var f domain.Facility
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Address,
		&f.Capacity,
		&f.ChiefUserID,
		&f.ChiefName,
		&f.Active,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
