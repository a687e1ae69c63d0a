// Package partner читает справочники спортивных федераций и учреждений-партнеров
package partner

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

var (
	federationColumns  = []string{"id", "name", "acronym", "cnpj", "phone", "email", "president_name", "active"}
	institutionColumns = []string{"id", "name", "cnpj", "phone", "email", "responsible_name", "active"}
)

// Repository репозиторий федераций и учреждений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetFederation получает федерацию по ID
func (r *Repository) GetFederation(ctx context.Context, id uuid.UUID) (*domain.Federation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(federationColumns...).
		From("federations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetFederation - build select query: %v", ErrBuildQuery, err)
	}

	f, err := scanFederation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFederationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetFederation - scan federation: %v", ErrScanRow, err)
	}

	return f, nil
}

// GetInstitution получает учреждение по ID
func (r *Repository) GetInstitution(ctx context.Context, id uuid.UUID) (*domain.Institution, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(institutionColumns...).
		From("institutions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetInstitution - build select query: %v", ErrBuildQuery, err)
	}

	i, err := scanInstitution(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInstitutionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetInstitution - scan institution: %v", ErrScanRow, err)
	}

	return i, nil
}

// ListFederations получает активные федерации по названию
func (r *Repository) ListFederations(ctx context.Context) ([]*domain.Federation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(federationColumns...).
		From("federations").
		Where(squirrel.Eq{"active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListFederations - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListFederations - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	federations := make([]*domain.Federation, 0)
	for rows.Next() {
		f, err := scanFederation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListFederations - scan row: %v", ErrScanRow, err)
		}
		federations = append(federations, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListFederations - rows error: %v", ErrScanRow, err)
	}

	return federations, nil
}

// ListInstitutions получает активные учреждения по названию
func (r *Repository) ListInstitutions(ctx context.Context) ([]*domain.Institution, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(institutionColumns...).
		From("institutions").
		Where(squirrel.Eq{"active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListInstitutions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListInstitutions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	institutions := make([]*domain.Institution, 0)
	for rows.Next() {
		i, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListInstitutions - scan row: %v", ErrScanRow, err)
		}
		institutions = append(institutions, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListInstitutions - rows error: %v", ErrScanRow, err)
	}

	return institutions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFederation(row rowScanner) (*domain.Federation, error) {
	var f domain.Federation
	if err := row.Scan(&f.ID, &f.Name, &f.Acronym, &f.CNPJ, &f.Phone, &f.Email, &f.PresidentName, &f.Active); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanInstitution(row rowScanner) (*domain.Institution, error) {
	var i domain.Institution
	if err := row.Scan(&i.ID, &i.Name, &i.CNPJ, &i.Phone, &i.Email, &i.ResponsibleName, &i.Active); err != nil {
		return nil, err
	}
	return &i, nil
}
