package service

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

var validate = validator.New()

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("name", "is required")
	}
	return name, nil
}

func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.NewValidationError("email", "is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", domain.NewValidationError("email", "is not a valid email")
	}
	return email, nil
}

func validatePassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if len(password) < domain.MinPasswordLength {
		return "", domain.NewValidationError("password", "must be at least 6 characters")
	}
	if strings.Contains(password, domain.ForbiddenPasswordWord) {
		return "", domain.NewValidationError("password", `must not contain "password"`)
	}
	return password, nil
}

func validateAge(age int) error {
	if age < 0 {
		return domain.NewValidationError("age", "must not be negative")
	}
	return nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", domain.NewValidationError("description", "is required")
	}
	return description, nil
}

// checkKeys rejects a patch holding any key outside allowed.
func checkKeys(patch ports.Patch, allowed ...string) error {
	for key := range patch {
		ok := false
		for _, a := range allowed {
			if key == a {
				ok = true
				break
			}
		}
		if !ok {
			return domain.ErrInvalidUpdates
		}
	}
	return nil
}

func patchString(patch ports.Patch, key string) (*string, error) {
	v, ok := patch[key]
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, domain.NewValidationError(key, "must be a string")
	}
	return &s, nil
}

func patchBool(patch ports.Patch, key string) (*bool, error) {
	v, ok := patch[key]
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, domain.NewValidationError(key, "must be a boolean")
	}
	return &b, nil
}

// patchInt accepts the float64 produced by JSON decoding as long as it is integral.
func patchInt(patch ports.Patch, key string) (*int, error) {
	v, ok := patch[key]
	if !ok {
		return nil, nil
	}
	var n int
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || x > math.MaxInt32 || x < math.MinInt32 {
			return nil, domain.NewValidationError(key, "must be an integer")
		}
		n = int(x)
	case int:
		n = x
	default:
		return nil, domain.NewValidationError(key, "must be an integer")
	}
	return &n, nil
}
