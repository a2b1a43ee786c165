package usecase

import (
	"errors"
	"fmt"

	"github.com/xavierca1/lead-system/internal/entity"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidStage      = "INVALID_STAGE"
	CodeNotFound          = "NOT_FOUND"
	CodeNoNextStage       = "NO_NEXT_STAGE"
	CodeNoPreviousStage   = "NO_PREVIOUS_STAGE"
	CodeForbidden         = "FORBIDDEN"
	CodeForbiddenOwner    = "FORBIDDEN_OWNER"
	CodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	CodeAuthFailed        = "AUTHENTICATION_FAILED"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
)

// DomainError is a rule violation the caller can act on.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// TechnicalError wraps infrastructure failures. Message is safe to show to users.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode extracts the code of a DomainError or TechnicalError, or "" otherwise.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

func invalidStage(raw string) error {
	return &DomainError{
		Code:    CodeInvalidStage,
		Message: fmt.Sprintf("Status inválido: %q", raw),
		Err:     entity.ErrInvalidStage,
	}
}

func leadNotFound() error {
	return &DomainError{
		Code:    CodeNotFound,
		Message: "Lead não encontrado.",
		Err:     entity.ErrLeadNotFound,
	}
}

func validationFailed(errs []ValidationError) error {
	msg := "validation failed: "
	for i, e := range errs {
		if i > 0 {
			msg += ", "
		}
		msg += e.Field + " (" + e.Message + ")"
	}
	return &DomainError{Code: CodeValidation, Message: msg}
}

func storeUnavailable(op string, err error) error {
	return &TechnicalError{
		Code:    CodeStoreUnavailable,
		Message: "Serviço indisponível, tente novamente.",
		Err:     fmt.Errorf("%w: %s: %v", entity.ErrStoreUnavailable, op, err),
	}
}

func valueOutOfRange(err error) error {
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: value (valor fora do intervalo suportado)",
		Err:     err,
	}
}
