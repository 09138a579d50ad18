// speddy/models/profile.go

package models

import "gorm.io/gorm"

// Staff roles. A provider owns a caseload of students; specialists and
// SEAs deliver sessions explicitly assigned to them; admins manage a
// whole school site.
const (
	RoleProvider   = "provider"
	RoleSpecialist = "specialist"
	RoleSea        = "sea"
	RoleAdmin      = "admin"
)

// Profile represents a staff account in the 'profiles' table.
type Profile struct {
	gorm.Model
	Email        string `json:"email" gorm:"unique;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	FullName     string `json:"fullName"`
	Role         string `json:"role" gorm:"not null;default:provider"`
	School       string `json:"school"`
	District     string `json:"district"`
}

// RegisterInput binds the registration form.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=provider specialist sea admin"`
	School   string `json:"school"`
	District string `json:"district"`
}

// LoginInput binds the login form.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
