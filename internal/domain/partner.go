package domain

import "github.com/google/uuid"

// RequesterSource источник данных заявителя
type RequesterSource string

const (
	RequesterManual      RequesterSource = "manual"
	RequesterFederation  RequesterSource = "federation"
	RequesterInstitution RequesterSource = "institution"
)

// IsValid returns true if the source is known
func (s RequesterSource) IsValid() bool {
	return s == RequesterManual || s == RequesterFederation || s == RequesterInstitution
}

// Federation is a pre-registered sports federation
type Federation struct {
	ID            uuid.UUID
	Name          string
	Acronym       *string
	CNPJ          *string
	Phone         *string
	Email         *string
	PresidentName *string
	Active        bool
}

// Institution is a pre-registered partner institution
type Institution struct {
	ID              uuid.UUID
	Name            string
	CNPJ            *string
	Phone           *string
	Email           *string
	ResponsibleName *string
	Active          bool
}

// Requester идентичность заявителя, записываемая в заявку
type Requester struct {
	Name          string
	Document      *string
	Phone         *string
	Email         *string
	FederationID  *uuid.UUID
	InstitutionID *uuid.UUID
}

// RequesterFromFederation копирует данные федерации в заявителя
func RequesterFromFederation(f *Federation) Requester {
	id := f.ID
	name := f.Name
	if f.Acronym != nil && *f.Acronym != "" {
		name = *f.Acronym + " - " + f.Name
	}
	return Requester{
		Name:         name,
		Document:     f.CNPJ,
		Phone:        f.Phone,
		Email:        f.Email,
		FederationID: &id,
	}
}

// RequesterFromInstitution копирует данные учреждения в заявителя
func RequesterFromInstitution(i *Institution) Requester {
	id := i.ID
	return Requester{
		Name:          i.Name,
		Document:      i.CNPJ,
		Phone:         i.Phone,
		Email:         i.Email,
		InstitutionID: &id,
	}
}
