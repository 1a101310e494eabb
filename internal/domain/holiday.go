package domain

import "time"

type HolidayKind string

const (
	HolidayNational HolidayKind = "national"
	HolidayRegional HolidayKind = "regional"
	HolidayLocal    HolidayKind = "local"
	HolidayWorking  HolidayKind = "working" // festivo laborable: adelanta la hora del culto
)

func (k HolidayKind) Valid() bool {
	switch k {
	case HolidayNational, HolidayRegional, HolidayLocal, HolidayWorking:
		return true
	}
	return false
}

type Holiday struct {
	ID          int64       `json:"id"`
	Date        time.Time   `json:"date"`
	Kind        HolidayKind `json:"kind"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ShiftsStartTime indica si el festivo adelanta los cultos de ese día.
func (h *Holiday) ShiftsStartTime() bool {
	return h.Kind == HolidayWorking
}
