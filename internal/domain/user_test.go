package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("  johndoe ", "john@example.com", "password123", "John Doe")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if user.Username != "johndoe" {
		t.Errorf("Expected trimmed username johndoe, got %q", user.Username)
	}
	if !user.IsActive {
		t.Error("Expected new user to be active")
	}
	if user.Role != RoleUser {
		t.Errorf("Expected role %s, got %s", RoleUser, user.Role)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}

	// Email is optional
	if _, err := NewUser("janesmith", "", "password123", ""); err != nil {
		t.Errorf("Expected no error without email, got %v", err)
	}
}

func TestUserValidate(t *testing.T) {
	valid := User{
		ID:             uuid.New(),
		Username:       "admin",
		Email:          "admin@example.com",
		HashedPassword: "$2a$12$abcdefghijklmnopqrstuv",
		IsActive:       true,
		Role:           RoleAdmin,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(u *User)
		field  string
	}{
		{"nil id", func(u *User) { u.ID = uuid.Nil }, "id"},
		{"short username", func(u *User) { u.Username = "ab" }, "username"},
		{"long username", func(u *User) { u.Username = strings.Repeat("a", 51) }, "username"},
		{"username with spaces", func(u *User) { u.Username = "john doe" }, "username"},
		{"bad email", func(u *User) { u.Email = "not-an-email" }, "email"},
		{"unknown role", func(u *User) { u.Role = "owner" }, "role"},
		{"empty role", func(u *User) { u.Role = "" }, "role"},
		{"no password", func(u *User) { u.HashedPassword = "" }, "password"},
		{"short plaintext", func(u *User) { u.Password = "short" }, "password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := valid
			tc.mutate(&u)
			err := u.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Errorf("Expected error on field %s, got %v", tc.field, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	for _, pw := range []string{"", "1234567", strings.Repeat("x", MaxPasswordLength+1)} {
		if err := ValidatePassword(pw); !errors.Is(err, ErrValidation) {
			t.Errorf("Expected validation error for %q, got %v", pw, err)
		}
	}
}

func TestUserPatchApply(t *testing.T) {
	user, err := NewUser("johndoe", "john@example.com", "password123", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !(UserPatch{}).IsEmpty() {
		t.Error("Expected zero patch to be empty")
	}

	name := "John Q. Doe"
	admin := RoleAdmin
	patch := UserPatch{FullName: &name, Role: &admin}
	if patch.IsEmpty() {
		t.Error("Expected patch to be non-empty")
	}
	if err := patch.Apply(user); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.FullName != name || user.Role != RoleAdmin {
		t.Errorf("Patch not applied: %+v", user)
	}
	if user.Email != "john@example.com" {
		t.Error("Expected unset fields to be left unchanged")
	}

	bad := "nope"
	if err := (UserPatch{Email: &bad}).Apply(user); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
