package model

import (
	"hoteldesk/pkg/sanitizer"
	"strings"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleReceptionist Role = "receptionist"
	RoleHousekeeping Role = "housekeeping"
	RoleGuest        Role = "guest"
)

type User struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Role           Role    `json:"role"`
	Phone          string  `json:"phone,omitempty"`
	Address        string  `json:"address,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsStaffMember reports whether the user works at the hotel rather than staying there.
func (u User) IsStaffMember() bool {
	switch u.Role {
	case RoleAdmin, RoleManager, RoleReceptionist, RoleHousekeeping:
		return true
	default:
		return false
	}
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned by both the token and the register endpoints.
type LoginResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user,omitempty"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// RefreshResult carries a new access token and, when the server rotates
// refresh tokens, a new refresh token as well.
type RefreshResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type Registration struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"required,max=150"`
	LastName        string `json:"last_name" validate:"required,max=150"`
	Role            Role   `json:"role,omitempty" validate:"omitempty,oneof=admin manager receptionist housekeeping guest"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,e164"`
	Address         string `json:"address,omitempty"`
}

// Normalized tidies the free-text fields. A phone that cannot be parsed is
// kept as typed so validation reports it.
func (r Registration) Normalized() Registration {
	r.Email = sanitizer.NormalizeEmail(r.Email)
	r.FirstName = sanitizer.NormalizeName(r.FirstName)
	r.LastName = sanitizer.NormalizeName(r.LastName)
	r.Address = sanitizer.TrimAndNormalize(r.Address)
	if phone := sanitizer.NormalizePhone(r.Phone); phone != "" {
		r.Phone = phone
	} else {
		r.Phone = strings.TrimSpace(r.Phone)
	}
	return r
}

type PasswordChange struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}
