package domain

import "time"

type ServiceRole string

const (
	ServiceRoleIntroReader       ServiceRole = "intro_reader"
	ServiceRoleClosingReader     ServiceRole = "closing_reader"
	ServiceRoleTeachingLeader    ServiceRole = "teaching_leader"
	ServiceRoleTestimoniesLeader ServiceRole = "testimonies_leader"
)

// RequiresPulpit indica si el rol solo puede asignarse a hermanos habilitados para el púlpito.
func (r ServiceRole) RequiresPulpit() bool {
	return r == ServiceRoleTeachingLeader || r == ServiceRoleTestimoniesLeader
}

func (r ServiceRole) Valid() bool {
	switch r {
	case ServiceRoleIntroReader, ServiceRoleClosingReader, ServiceRoleTeachingLeader, ServiceRoleTestimoniesLeader:
		return true
	}
	return false
}

// Service es un culto concreto en una fecha.
type Service struct {
	ID                  int64     `json:"id"`
	Date                time.Time `json:"date"`
	ServiceTypeID       int64     `json:"serviceTypeID"`
	StartTime           string    `json:"startTime"`
	IsHolidayAdjusted   bool      `json:"isHolidayAdjusted"`
	IntroReaderID       *int64    `json:"introReaderID"`
	ClosingReaderID     *int64    `json:"closingReaderID"`
	TeachingLeaderID    *int64    `json:"teachingLeaderID"`
	TestimoniesLeaderID *int64    `json:"testimoniesLeaderID"`
	CreatedAt           time.Time `json:"createdAt"`
	Version             int32     `json:"-"`
}

// Assignee devuelve el hermano asignado a un rol, nil si está libre.
func (s *Service) Assignee(role ServiceRole) *int64 {
	switch role {
	case ServiceRoleIntroReader:
		return s.IntroReaderID
	case ServiceRoleClosingReader:
		return s.ClosingReaderID
	case ServiceRoleTeachingLeader:
		return s.TeachingLeaderID
	case ServiceRoleTestimoniesLeader:
		return s.TestimoniesLeaderID
	}
	return nil
}

func (s *Service) Assign(role ServiceRole, userID *int64) {
	switch role {
	case ServiceRoleIntroReader:
		s.IntroReaderID = userID
	case ServiceRoleClosingReader:
		s.ClosingReaderID = userID
	case ServiceRoleTeachingLeader:
		s.TeachingLeaderID = userID
	case ServiceRoleTestimoniesLeader:
		s.TestimoniesLeaderID = userID
	}
}
