package models_test

import (
	"testing"

	"natours-api/internal/models"
)

func TestHasRole(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Role
		required []models.Role
		want     bool
	}{
		{"admin may delete", models.RoleAdmin, []models.Role{models.RoleAdmin, models.RoleLeadGuide}, true},
		{"lead guide may delete", models.RoleLeadGuide, []models.Role{models.RoleAdmin, models.RoleLeadGuide}, true},
		{"guide may not delete", models.RoleGuide, []models.Role{models.RoleAdmin, models.RoleLeadGuide}, false},
		{"user may not delete", models.RoleUser, []models.Role{models.RoleAdmin, models.RoleLeadGuide}, false},
		{"empty requirement denies", models.RoleAdmin, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := models.Identity{UserID: "u1", Role: tt.role}
			if got := models.HasRole(id, tt.required...); got != tt.want {
				t.Errorf("HasRole() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role    string
		isValid bool
	}{
		{"admin", true},
		{"lead-guide", true},
		{"guide", true},
		{"user", true},
		{"superuser", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := models.IsValidRole(tt.role); got != tt.isValid {
			t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.isValid)
		}
	}
}
