package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role of a user. Every user has one.
type Role string

// Supported roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Password length limits. 72 bytes is bcrypt's input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// User represents a registered account.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	FullName       string    `json:"full_name,omitempty"`
	Password       string    `json:"-"` // plaintext, only set transiently before hashing
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates an active user with the default role.
// The caller is responsible for hashing Password before storing the user.
func NewUser(username, email, password, fullName string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		FullName:  strings.TrimSpace(fullName),
		Password:  password,
		IsActive:  true,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if !usernamePattern.MatchString(u.Username) {
		return validationErr("username", "must be 3-50 letters, digits, '.', '_' or '-'")
	}
	if u.Email != "" && !IsValidEmail(u.Email) {
		return validationErr("email", "has invalid format")
	}
	if len(u.FullName) > 100 {
		return validationErr("full_name", "must be at most 100 characters")
	}
	if !u.Role.IsValid() {
		return validationErr("role", "must be one of user, admin")
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return validationErr("password", "cannot be empty")
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidatePassword checks the plaintext password length rules.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return validationErr("password", "cannot be empty")
	case len(password) < MinPasswordLength:
		return validationErr("password", "must be at least 8 characters long")
	case len(password) > MaxPasswordLength:
		return validationErr("password", "must be at most 72 characters long")
	}
	return nil
}

// IsValidEmail performs a basic shape check of an email address.
func IsValidEmail(email string) bool {
	return len(email) <= 254 && emailPattern.MatchString(email)
}

// UserPatch lists the mutable user fields. Nil fields are left unchanged.
type UserPatch struct {
	Email    *string
	FullName *string
	IsActive *bool
	Role     *Role
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.FullName == nil && p.IsActive == nil && p.Role == nil
}

// Apply copies the set fields onto u and validates the result.
func (p UserPatch) Apply(u *User) error {
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.FullName != nil {
		u.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	u.UpdatedAt = time.Now().UTC()
	return u.Validate()
}
