// Package calendar reúne la aritmética de fechas y horas que usan los cultos.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

var ErrInvalidMonth = errors.New("mes fuera de rango")

// MonthRange devuelve el primer y el último día del mes, ambos a medianoche UTC.
func MonthRange(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}

// MonthDates enumera todas las fechas del mes.
func MonthDates(year, month int) ([]time.Time, error) {
	first, last, err := MonthRange(year, month)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// Day trunca un instante a su fecha en UTC, sin hora.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ParseClock convierte "HH:MM:SS" (o "HH:MM") en el tiempo transcurrido desde medianoche.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return 0, fmt.Errorf("hora inválida %q", s)
		}
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}

func FormatClock(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}

// ShiftClock desplaza una hora del día. El resultado se limita a [00:00:00, 23:59:59].
func ShiftClock(s string, delta time.Duration) (string, error) {
	d, err := ParseClock(s)
	if err != nil {
		return "", err
	}

	d += delta
	if d < 0 {
		d = 0
	}
	if limit := 24*time.Hour - time.Second; d > limit {
		d = limit
	}
	return FormatClock(d), nil
}
