// Package validation checks console request bodies before they reach the
// services. Rules that name a domain vocabulary (departments, priorities,
// pages) read it from the domain package so the forms and the API agree.
package validation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
)

// maxBodyBytes caps a decoded request body. Console requests are a few
// short form fields.
const maxBodyBytes = 64 << 10

// Validatable is a request body that checks its own fields.
type Validatable interface {
	Validate() error
}

// Validator collects field errors
type Validator struct {
	errors *apperrors.ValidationErrors
}

func NewValidator() *Validator {
	return &Validator{errors: apperrors.NewValidationErrors()}
}

// Err returns the collected errors, or nil when every rule passed
func (v *Validator) Err() error {
	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// Required rejects blank values
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MaxLength rejects values longer than max bytes
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// Department accepts an empty value or one of the form departments
func (v *Validator) Department(field, value string) *Validator {
	if value != "" && !domain.IsValidDepartment(value) {
		v.errors.Add(field, "Must be one of: "+strings.Join(domain.Departments, ", "))
	}
	return v
}

// Priority accepts an empty value or one of the form priorities
func (v *Validator) Priority(field, value string) *Validator {
	if value != "" && !domain.TicketPriority(value).IsValid() {
		names := make([]string, 0, len(domain.Priorities))
		for _, p := range domain.Priorities {
			names = append(names, string(p))
		}
		v.errors.Add(field, "Must be one of: "+strings.Join(names, ", "))
	}
	return v
}

// Page requires one of the console pages
func (v *Validator) Page(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v.Required(field, value)
	}
	if !domain.Page(value).IsKnown() {
		names := make([]string, 0, len(domain.AdminPages))
		for _, p := range domain.AdminPages {
			names = append(names, string(p))
		}
		v.errors.Add(field, "Must be one of: "+strings.Join(names, ", "))
	}
	return v
}

// DecodeAndValidate decodes a JSON body into T and, when *T is
// Validatable, runs its checks. Malformed bodies are a 400; failed checks
// come back as *apperrors.ValidationErrors.
func DecodeAndValidate[T any](w http.ResponseWriter, r *http.Request) (*T, error) {
	var req T

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, apperrors.NewBadRequestError(
			fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err), "Invalid request body")
	}

	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &req, nil
}
