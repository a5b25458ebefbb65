// Package models defines data structures and domain types.
package models

import "time"

// Session holds the authenticated identity of the current client.
// It is owned and mutated exclusively by the auth manager; other
// components only read it.
type Session struct {
	AccessToken   string
	RefreshToken  string
	ExpiresAt     time.Time
	Authenticated bool
}

// IsEmpty reports whether the session holds no credentials.
func (s *Session) IsEmpty() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.ExpiresAt.IsZero() && !s.Authenticated
}

// Permission names as delivered in the API profile payload.
const (
	PermissionDownloads   = "Downloads"
	PermissionEvaluations = "Avaliações"
	PermissionErrors      = "Erros"
)

// User represents the authenticated admin user with flattened permissions.
type User struct {
	ID          int
	Name        string
	Email       string
	ProfileID   int
	ProfileName string
	Permissions []string
}

// HasPermission reports whether the user holds the named permission.
func (u *User) HasPermission(name string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the user holds at least one of the named permissions.
func (u *User) HasAnyPermission(names ...string) bool {
	for _, name := range names {
		if u.HasPermission(name) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the user holds every named permission.
func (u *User) HasAllPermissions(names ...string) bool {
	if u == nil {
		return false
	}
	for _, name := range names {
		if !u.HasPermission(name) {
			return false
		}
	}
	return true
}
