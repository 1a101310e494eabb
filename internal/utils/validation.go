package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

// ValidateServiceTemplate comprueba el día y la hora de la plantilla y deja la hora como HH:MM:SS.
func ValidateServiceTemplate(tpl *domain.ServiceTemplate) error {
	if tpl.DayOfWeek < 0 || tpl.DayOfWeek > 6 {
		return fmt.Errorf("el día de la semana %d no es válido", tpl.DayOfWeek)
	}

	d, err := calendar.ParseClock(tpl.DefaultStartTime)
	if err != nil {
		return fmt.Errorf("la hora de inicio %q no es válida", tpl.DefaultStartTime)
	}
	tpl.DefaultStartTime = calendar.FormatClock(d)

	return nil
}

const MaxHolidayDescription = 200

// ValidateHoliday comprueba el tipo del festivo. La descripción es opcional.
func ValidateHoliday(h *domain.Holiday) error {
	if !h.Kind.Valid() {
		return fmt.Errorf("el tipo de festivo %q no es válido", h.Kind)
	}
	h.Description = strings.TrimSpace(h.Description)
	if utf8.RuneCountInString(h.Description) > MaxHolidayDescription {
		return fmt.Errorf("la descripción no puede superar %d caracteres", MaxHolidayDescription)
	}
	return nil
}
