package domain

import (
	"strings"
	"time"
)

// Permission is a role tag attached to a user.
type Permission string

// PermissionUser is the only tag granted by the auth core.
const PermissionUser Permission = "USER"

// DefaultPermissions are granted at signup.
func DefaultPermissions() []Permission {
	return []Permission{PermissionUser}
}

// User is the domain model for storefront accounts.
//
// ResetToken and ResetTokenExpiry are either both set or both nil.
type User struct {
	ID               string
	Email            string
	Name             string
	PasswordHash     string
	Permissions      []Permission
	ResetToken       *string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPendingReset reports whether a reset token is present and unexpired at now.
func (u *User) HasPendingReset(now time.Time) bool {
	if u.ResetToken == nil || u.ResetTokenExpiry == nil {
		return false
	}
	return now.Before(*u.ResetTokenExpiry)
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
