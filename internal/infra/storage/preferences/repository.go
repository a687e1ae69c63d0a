// Package preferences хранит пользовательские настройки портала между сессиями
package preferences

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

var (
	// ErrPreferencesNotFound возвращается, когда пользователь еще не сохранял настройки
	ErrPreferencesNotFound = errors.New("preferences.repository: preferences not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("preferences.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("preferences.repository: failed to execute query")
)

type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий пользовательских настроек
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает настройки пользователя
func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*domain.Preferences, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("user_id", "selected_facility_id", "updated_at").
		From("user_preferences").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.Preferences
	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.UserID, &p.SelectedFacilityID, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan preferences: %v", ErrExecQuery, err)
	}

	return &p, nil
}

// Upsert сохраняет настройки пользователя
func (r *Repository) Upsert(ctx context.Context, p *domain.Preferences) (*domain.Preferences, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("user_preferences").
		Columns("user_id", "selected_facility_id").
		Values(p.UserID, p.SelectedFacilityID).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET selected_facility_id = EXCLUDED.selected_facility_id, updated_at = NOW() RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return p, nil
}
