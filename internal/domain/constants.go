package domain

import "regexp"

// UsageType тип использования объекта
type UsageType string

const (
	UsageTraining           UsageType = "treino"
	UsageCompetition        UsageType = "competicao"
	UsageSportsEvent        UsageType = "evento_esportivo"
	UsageCulturalEvent      UsageType = "evento_cultural"
	UsageInstitutionalEvent UsageType = "evento_institucional"
	UsageMeeting            UsageType = "reuniao"
	UsageOther              UsageType = "outro"
)

// UsageTypes полный список типов использования
var UsageTypes = []UsageType{
	UsageTraining,
	UsageCompetition,
	UsageSportsEvent,
	UsageCulturalEvent,
	UsageInstitutionalEvent,
	UsageMeeting,
	UsageOther,
}

// IsValid returns true if the usage type belongs to the fixed enumeration
func (u UsageType) IsValid() bool {
	for _, t := range UsageTypes {
		if t == u {
			return true
		}
	}
	return false
}

// IsSportive returns true if the usage type requires at least one modality
func (u UsageType) IsSportive() bool {
	return u == UsageTraining || u == UsageCompetition || u == UsageSportsEvent
}

// Modality спортивная модальность
type Modality string

// Modalities фиксированный список модальностей
var Modalities = []Modality{
	"futsal",
	"futebol",
	"voleibol",
	"volei_de_praia",
	"basquetebol",
	"handebol",
	"atletismo",
	"natacao",
	"judo",
	"karate",
	"taekwondo",
	"jiu_jitsu",
	"capoeira",
	"ginastica",
	"tenis_de_mesa",
	"badminton",
	"xadrez",
	"ciclismo",
	"skate",
	"outra",
}

// IsValid returns true if the modality belongs to the fixed list
func (m Modality) IsValid() bool {
	for _, v := range Modalities {
		if v == m {
			return true
		}
	}
	return false
}

// Business validation constants
const (
	MaxTitleLength           = 200
	MaxTextLength            = 2000
	MaxRejectionReasonLength = 1000
	MaxOccurrences           = 52
	MaxAgendaRangeDays       = 366
	MaxDocumentSizeBytes     = 10 << 20 // 10 MiB
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// referenceNumberPattern номер процесса SEI: NNNNN.NNNNNN/NNNN-NN
var referenceNumberPattern = regexp.MustCompile(`^\d{5}\.\d{6}/\d{4}-\d{2}$`)

// ValidReferenceNumber проверяет формат официального номера процесса
func ValidReferenceNumber(s string) bool {
	return referenceNumberPattern.MatchString(s)
}

// InactiveStatuses статусы, которые не занимают агенду
var InactiveStatuses = []Status{
	StatusCancelled,
	StatusRejected,
}

// BlockingStatuses статусы, участвующие в проверке конфликтов
var BlockingStatuses = []Status{
	StatusRequested,
	StatusApproved,
	StatusCompleted,
}
