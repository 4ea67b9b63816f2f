package entity

import "time"

// User usuario del sistema. Tiene exactamente un rol.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt, nunca en texto plano
	Active       bool
	RoleID       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole indica si el usuario tiene un rol asignado.
func (u *User) HasRole() bool {
	return u != nil && u.RoleID != ""
}
