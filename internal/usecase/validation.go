package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/xavierca1/lead-system/internal/entity"
)

const minPasswordLength = 6

var nonDigit = regexp.MustCompile(`\D`)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Email) != "" && !isValidEmail(input.Email) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.Owner) != "" && !isValidEmail(input.Owner) {
		errors = append(errors, ValidationError{"owner", "must be an email"})
	}

	if strings.TrimSpace(input.Phone) != "" && !isValidPhoneNumber(input.Phone) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}

	if input.Value != nil && !entity.ValidValue(*input.Value) {
		errors = append(errors, ValidationError{"value", "must be a non-negative number"})
	}

	return errors
}

func ValidateLeadFields(fields entity.LeadFields) []ValidationError {
	var errors []ValidationError

	if fields.Empty() {
		errors = append(errors, ValidationError{"value", "value or notes is required"})
	}
	if fields.Value != nil && !entity.ValidValue(*fields.Value) {
		errors = append(errors, ValidationError{"value", "must be a non-negative number"})
	}

	return errors
}

func ValidateRegisterInput(input RegisterInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if !isValidEmail(input.Email) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if input.Password == "" {
		errors = append(errors, ValidationError{"password", "is required"})
	} else if len(input.Password) < minPasswordLength {
		errors = append(errors, ValidationError{"password", fmt.Sprintf("must have at least %d characters", minPasswordLength)})
	} else if input.Password != input.PasswordConfirm {
		errors = append(errors, ValidationError{"password_confirm", "does not match"})
	}

	return errors
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return false
	}
	// rejeita "Nome <email>"
	return addr.Address == strings.TrimSpace(email)
}

func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigit.ReplaceAllString(phone, "")
	return len(cleaned) >= 10 && len(cleaned) <= 13
}
