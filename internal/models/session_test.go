package models

import (
	"testing"
	"time"
)

func TestSessionIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{"Zero", Session{}, true},
		{"WithAccessToken", Session{AccessToken: "tok"}, false},
		{"WithRefreshToken", Session{RefreshToken: "ref"}, false},
		{"WithExpiry", Session{ExpiresAt: time.Now()}, false},
		{"Authenticated", Session{Authenticated: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserPermissions(t *testing.T) {
	user := &User{
		ID:          1,
		Name:        "Admin",
		Permissions: []string{"Visualizar Downloads", "Visualizar Avaliações"},
	}

	if !user.HasPermission("Visualizar Downloads") {
		t.Error("HasPermission should find an existing permission")
	}
	if user.HasPermission("Visualizar Erros") {
		t.Error("HasPermission should not find a missing permission")
	}

	if !user.HasAnyPermission("Visualizar Erros", "Visualizar Downloads") {
		t.Error("HasAnyPermission should succeed when at least one matches")
	}
	if user.HasAnyPermission("Visualizar Erros", "Gerenciar Perfis") {
		t.Error("HasAnyPermission should fail when none match")
	}

	if !user.HasAllPermissions("Visualizar Downloads", "Visualizar Avaliações") {
		t.Error("HasAllPermissions should succeed when all match")
	}
	if user.HasAllPermissions("Visualizar Downloads", "Visualizar Erros") {
		t.Error("HasAllPermissions should fail when one is missing")
	}
}

func TestUserPermissionsNil(t *testing.T) {
	var user *User

	if user.HasPermission("anything") {
		t.Error("nil user should have no permissions")
	}
	if user.HasAnyPermission("a", "b") {
		t.Error("nil user should have no permissions")
	}
	if user.HasAllPermissions("a") {
		t.Error("nil user should have no permissions")
	}
}
