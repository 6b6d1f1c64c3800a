package domain

import (
	"strings"

	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
)

// Role gates which pages a session may see.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// DefaultDepartment is assigned to sessions created through the login form,
// which does not ask for one.
const DefaultDepartment = "IT"

// Session is the locally-held identity of the console user.
//
// Nothing about a Session is verified: any non-empty email and password is
// accepted. It exists only to pick a page set and to stamp tickets with an
// email address.
type Session struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
	Department  string `json:"department"`
}

// IsAdmin reports whether the session may see the administrative pages.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// LoginParams holds the login form fields.
type LoginParams struct {
	Email    string
	Password string
	Role     string
}

// SignupParams holds the signup form fields.
type SignupParams struct {
	FirstName  string
	LastName   string
	Email      string
	Department string
	Password   string
}

// NewLoginSession builds a session from the login form. The requested role
// is honoured only when it is exactly "admin".
func NewLoginSession(params LoginParams) (*Session, error) {
	email := strings.TrimSpace(params.Email)
	password := strings.TrimSpace(params.Password)
	if email == "" || password == "" {
		return nil, apperrors.ErrCredentialsEmpty
	}

	role := RoleUser
	if params.Role == string(RoleAdmin) {
		role = RoleAdmin
	}

	return &Session{
		Email:       email,
		DisplayName: strings.Split(email, "@")[0],
		Role:        role,
		Department:  DefaultDepartment,
	}, nil
}

// NewSignupSession builds a regular-user session from the signup form.
func NewSignupSession(params SignupParams) (*Session, error) {
	first := strings.TrimSpace(params.FirstName)
	last := strings.TrimSpace(params.LastName)
	email := strings.TrimSpace(params.Email)
	password := strings.TrimSpace(params.Password)
	if first == "" || last == "" || email == "" || params.Department == "" || password == "" {
		return nil, apperrors.ErrSignupIncomplete
	}
	if !IsValidDepartment(params.Department) {
		return nil, apperrors.ErrInvalidDepartment
	}

	return &Session{
		Email:       email,
		DisplayName: first + " " + last,
		Role:        RoleUser,
		Department:  params.Department,
	}, nil
}
