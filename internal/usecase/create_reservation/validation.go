package create_reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/idjuv/agenda-service/internal/domain"
)

// Сообщения для пользователя, в порядке проверки
const (
	msgFacilityRequired      = "Selecione a unidade local."
	msgTitleRequired         = "Informe o título do evento."
	msgTitleTooLong          = "O título deve ter no máximo 200 caracteres."
	msgUsageTypeRequired     = "Selecione o tipo de uso."
	msgUsageTypeInvalid      = "Tipo de uso inválido."
	msgRequesterSourceBad    = "Origem do solicitante inválida."
	msgRequesterNameRequired = "Informe o nome do solicitante."
	msgRequesterNameTooLong  = "O nome do solicitante deve ter no máximo 200 caracteres."
	msgPartnerExclusive      = "Selecione apenas uma federação ou uma instituição."
	msgFederationRequired    = "Selecione a federação solicitante."
	msgInstitutionRequired   = "Selecione a instituição solicitante."
	msgStartRequired         = "Informe a data e a hora de início."
	msgEndRequired           = "Informe a data e a hora de término."
	msgStartInvalid          = "Data ou hora de início inválida."
	msgEndInvalid            = "Data ou hora de término inválida."
	msgEndBeforeStart        = "A data/hora de término deve ser posterior à de início."
	msgStartInPast           = "A data/hora de início não pode estar no passado."
	msgModalityRequired      = "Selecione ao menos uma modalidade para uso esportivo."
	msgModalityInvalid       = "Modalidade inválida: %s."
	msgEmailInvalid          = "E-mail do solicitante inválido."
	msgAudienceNegative      = "O público estimado não pode ser negativo."
	msgFieldTooLong          = "O campo %s excede o tamanho máximo."
	msgRecurrenceInvalid     = "Regra de recorrência inválida."
	msgRecurrenceUnbounded   = "A recorrência deve ter COUNT ou UNTIL."
	msgRecurrenceEmpty       = "A recorrência não gera nenhuma ocorrência."
	msgRecurrenceTooLong     = "A recorrência excede o limite de %d ocorrências."
)

// Подписи необязательных полей для msgFieldTooLong
var optionalFieldLabels = []struct {
	field string
	label string
}{
	{"Description", "descrição"},
	{"Area", "espaço"},
	{"Observations", "observações"},
	{"RequesterDocument", "documento"},
	{"RequesterPhone", "telefone"},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// window окно заявки
type window struct {
	start time.Time
	end   time.Time
}

// normalizeRequest обрезает пробелы и сбрасывает пустые необязательные поля
func normalizeRequest(req *Request) {
	req.Title = strings.TrimSpace(req.Title)
	req.UsageType = strings.TrimSpace(req.UsageType)
	req.RequesterName = strings.TrimSpace(req.RequesterName)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.StartTime = strings.TrimSpace(req.StartTime)
	req.EndDate = strings.TrimSpace(req.EndDate)
	req.EndTime = strings.TrimSpace(req.EndTime)

	req.RequesterSource = strings.TrimSpace(req.RequesterSource)
	if req.RequesterSource == "" {
		req.RequesterSource = string(domain.RequesterManual)
	}

	for _, p := range []**string{
		&req.Description,
		&req.Area,
		&req.Observations,
		&req.RequesterDocument,
		&req.RequesterPhone,
		&req.RequesterEmail,
		&req.Recurrence,
	} {
		*p = trimOptional(*p)
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// fieldErrors возвращает имя поля -> тег нарушенного правила validator
func fieldErrors(req *Request) map[string]string {
	failed := make(map[string]string)

	err := validate.Struct(req)
	if err == nil {
		return failed
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			failed[fe.StructField()] = fe.Tag()
		}
	}

	return failed
}

// validateRequest проверяет заявку и возвращает окно в часовом поясе агенды.
// Все нарушения собираются в один ValidationError в фиксированном порядке.
func validateRequest(req *Request, now time.Time, loc *time.Location) (window, error) {
	failed := fieldErrors(req)
	var msgs []string

	if _, ok := failed["FacilityID"]; ok {
		msgs = append(msgs, msgFacilityRequired)
	}

	switch failed["Title"] {
	case "required":
		msgs = append(msgs, msgTitleRequired)
	case "max":
		msgs = append(msgs, msgTitleTooLong)
	}

	usage := domain.UsageType(req.UsageType)
	if _, ok := failed["UsageType"]; ok {
		msgs = append(msgs, msgUsageTypeRequired)
	} else if !usage.IsValid() {
		msgs = append(msgs, msgUsageTypeInvalid)
	}

	source := domain.RequesterSource(req.RequesterSource)
	if !source.IsValid() {
		msgs = append(msgs, msgRequesterSourceBad)
	}

	switch failed["RequesterName"] {
	case "required_if":
		msgs = append(msgs, msgRequesterNameRequired)
	case "max":
		if source == domain.RequesterManual {
			msgs = append(msgs, msgRequesterNameTooLong)
		}
	}

	switch {
	case req.FederationID != nil && req.InstitutionID != nil:
		msgs = append(msgs, msgPartnerExclusive)
	case source == domain.RequesterFederation && req.FederationID == nil:
		msgs = append(msgs, msgFederationRequired)
	case source == domain.RequesterInstitution && req.InstitutionID == nil:
		msgs = append(msgs, msgInstitutionRequired)
	}

	_, startDateMissing := failed["StartDate"]
	_, startTimeMissing := failed["StartTime"]
	startMissing := startDateMissing || startTimeMissing
	if startMissing {
		msgs = append(msgs, msgStartRequired)
	}

	_, endDateMissing := failed["EndDate"]
	_, endTimeMissing := failed["EndTime"]
	endMissing := endDateMissing || endTimeMissing
	if endMissing {
		msgs = append(msgs, msgEndRequired)
	}

	var w window
	parsed := !startMissing && !endMissing

	if !startMissing {
		start, err := parseLocal(req.StartDate, req.StartTime, loc)
		if err != nil {
			msgs = append(msgs, msgStartInvalid)
			parsed = false
		}
		w.start = start
	}

	if !endMissing {
		end, err := parseLocal(req.EndDate, req.EndTime, loc)
		if err != nil {
			msgs = append(msgs, msgEndInvalid)
			parsed = false
		}
		w.end = end
	}

	if parsed {
		if !w.end.After(w.start) {
			msgs = append(msgs, msgEndBeforeStart)
		}
		if w.start.Before(now) {
			msgs = append(msgs, msgStartInPast)
		}
	}

	if usage.IsSportive() && len(req.Modalities) == 0 {
		msgs = append(msgs, msgModalityRequired)
	}

	for _, m := range req.Modalities {
		if !domain.Modality(m).IsValid() {
			msgs = append(msgs, fmt.Sprintf(msgModalityInvalid, m))
		}
	}

	// Контакты партнера заменяются при копировании, их формат не проверяем
	if _, ok := failed["RequesterEmail"]; ok && source == domain.RequesterManual {
		msgs = append(msgs, msgEmailInvalid)
	}

	if _, ok := failed["EstimatedAudience"]; ok {
		msgs = append(msgs, msgAudienceNegative)
	}

	for _, f := range optionalFieldLabels {
		if _, ok := failed[f.field]; ok {
			msgs = append(msgs, fmt.Sprintf(msgFieldTooLong, f.label))
		}
	}

	if len(msgs) > 0 {
		return window{}, &ValidationError{Messages: msgs}
	}

	return w, nil
}

// parseLocal разбирает дату и время в часовом поясе агенды
func parseLocal(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(domain.DateFormat+" "+domain.TimeFormat, date+" "+clock, loc)
}

// findConflict возвращает первую блокирующую заявку, пересекающую любое из окон.
// existing отсортированы по start_at.
func findConflict(candidates []window, existing []*domain.Reservation) *domain.Reservation {
	for _, c := range candidates {
		for _, e := range existing {
			if e.IsBlocking() && e.Overlaps(c.start, c.end) {
				return e
			}
		}
	}
	return nil
}

// findSelfOverlap возвращает индекс первого окна серии, которое пересекается с более ранним
func findSelfOverlap(candidates []window) (int, int, bool) {
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if !a.start.After(b.end) && !a.end.Before(b.start) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
