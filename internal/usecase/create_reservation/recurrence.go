package create_reservation

import (
	"fmt"

	"github.com/teambition/rrule-go"
)

// expandOccurrences разворачивает окно по правилу RRULE.
// DTSTART равен началу окна, длительность каждого вхождения совпадает с исходной.
// Без правила возвращает само окно.
func expandOccurrences(w window, rule *string, maxOccurrences int) ([]window, error) {
	if rule == nil {
		return []window{w}, nil
	}

	r, err := rrule.StrToRRule(*rule)
	if err != nil {
		return nil, &ValidationError{Messages: []string{msgRecurrenceInvalid}}
	}

	if r.OrigOptions.Count == 0 && r.OrigOptions.Until.IsZero() {
		return nil, &ValidationError{Messages: []string{msgRecurrenceUnbounded}}
	}

	r.DTStart(w.start)
	duration := w.end.Sub(w.start)

	occurrences := make([]window, 0)
	next := r.Iterator()
	for {
		start, ok := next()
		if !ok {
			break
		}
		if len(occurrences) == maxOccurrences {
			return nil, &ValidationError{Messages: []string{fmt.Sprintf(msgRecurrenceTooLong, maxOccurrences)}}
		}
		occurrences = append(occurrences, window{start: start, end: start.Add(duration)})
	}

	if len(occurrences) == 0 {
		return nil, &ValidationError{Messages: []string{msgRecurrenceEmpty}}
	}

	return occurrences, nil
}
