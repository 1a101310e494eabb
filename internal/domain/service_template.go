package domain

import (
	"time"
)

// ServiceTemplate es una fila del patrón semanal: un tipo de culto en un día de la semana.
type ServiceTemplate struct {
	ID               int64     `json:"id"`
	DayOfWeek        int32     `json:"dayOfWeek"` // 0 = domingo, igual que time.Weekday
	ServiceTypeID    int64     `json:"serviceTypeID"`
	DefaultStartTime string    `json:"defaultStartTime"` // HH:MM:SS
	CreatedAt        time.Time `json:"createdAt"`
}
