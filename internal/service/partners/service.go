// Package partners отдает справочники федераций и учреждений
// для выбора заявителя в форме заявки.
package partners

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/idjuv/agenda-service/internal/domain"
)

const (
	KindFederations  = "federations"
	KindInstitutions = "institutions"
)

var (
	// ErrUnknownKind возвращается для неизвестного типа справочника
	ErrUnknownKind = errors.New("partners: unknown partner kind")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("partners: internal error")
)

// PartnerRepository интерфейс репозитория партнеров
type PartnerRepository interface {
	ListFederations(ctx context.Context) ([]*domain.Federation, error)
	ListInstitutions(ctx context.Context) ([]*domain.Institution, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Partner элемент справочника. Поля копируются в заявителя при выборе.
type Partner struct {
	ID       uuid.UUID `json:"id"`
	Kind     string    `json:"kind"`
	Name     string    `json:"name"`
	Acronym  *string   `json:"acronym,omitempty"`
	Document *string   `json:"document,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Contact  *string   `json:"contact,omitempty"`
}

// Service сервис справочников
type Service struct {
	repo   PartnerRepository
	logger Logger
}

// NewService создает новый экземпляр сервиса
func NewService(repo PartnerRepository, logger Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List возвращает активных партнеров заданного типа
func (s *Service) List(ctx context.Context, kind string) ([]Partner, error) {
	s.logger.Info("List: fetching partners kind=%s", kind)

	switch kind {
	case KindFederations:
		federations, err := s.repo.ListFederations(ctx)
		if err != nil {
			s.logger.Error("List: failed to list federations: %v", err)
			return nil, fmt.Errorf("%w: List - %v", ErrInternal, err)
		}
		out := make([]Partner, 0, len(federations))
		for _, f := range federations {
			out = append(out, Partner{
				ID:       f.ID,
				Kind:     KindFederations,
				Name:     f.Name,
				Acronym:  f.Acronym,
				Document: f.CNPJ,
				Phone:    f.Phone,
				Email:    f.Email,
				Contact:  f.PresidentName,
			})
		}
		return out, nil

	case KindInstitutions:
		institutions, err := s.repo.ListInstitutions(ctx)
		if err != nil {
			s.logger.Error("List: failed to list institutions: %v", err)
			return nil, fmt.Errorf("%w: List - %v", ErrInternal, err)
		}
		out := make([]Partner, 0, len(institutions))
		for _, i := range institutions {
			out = append(out, Partner{
				ID:       i.ID,
				Kind:     KindInstitutions,
				Name:     i.Name,
				Document: i.CNPJ,
				Phone:    i.Phone,
				Email:    i.Email,
				Contact:  i.ResponsibleName,
			})
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
