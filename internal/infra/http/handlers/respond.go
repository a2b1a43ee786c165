package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/xavierca1/lead-system/internal/usecase"
)

// Response é o envelope único de todas as respostas JSON.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

var statusByCode = map[string]int{
	usecase.CodeValidation:        http.StatusBadRequest,
	usecase.CodeInvalidStage:      http.StatusBadRequest,
	usecase.CodeNotFound:          http.StatusNotFound,
	usecase.CodeNoNextStage:       http.StatusConflict,
	usecase.CodeNoPreviousStage:   http.StatusConflict,
	usecase.CodeForbidden:         http.StatusForbidden,
	usecase.CodeForbiddenOwner:    http.StatusForbidden,
	usecase.CodeDuplicateIdentity: http.StatusConflict,
	usecase.CodeAuthFailed:        http.StatusUnauthorized,
	usecase.CodeUnauthenticated:   http.StatusUnauthorized,
	usecase.CodeStoreUnavailable:  http.StatusServiceUnavailable,
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("erro ao escrever resposta: %v", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Response{Success: false, Code: code, Message: message})
}

// writeUseCaseError traduz erros de domínio/técnicos para o status HTTP.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeErrorResponse(w, statusFor(de.Code), de.Code, de.Message)
		return
	}
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		log.Printf("erro técnico [%s]: %v", te.Code, te.Err)
		writeErrorResponse(w, statusFor(te.Code), te.Code, te.Message)
		return
	}
	log.Printf("erro inesperado: %v", err)
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno.")
}

func statusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorResponse(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Corpo da requisição muito grande.")
			return false
		}
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return false
	}
	return true
}
