package domain

import (
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	FullName         string    `json:"fullName"`
	Email            string    `json:"email"`
	Role             Role      `json:"role"`
	IsPulpitEligible bool      `json:"isPulpitEligible"` // puede ocupar roles de púlpito
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	Version          int32     `json:"-"`
}
