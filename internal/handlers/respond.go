package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vendoria/commerce-service/internal/domain"
)

// Response is the uniform API envelope
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// RespondJSON writes a success envelope
func RespondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, Response{Status: "success", Data: data})
}

// RespondMessage writes a success envelope with a human-readable message
func RespondMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, Response{Status: "success", Message: message})
}

// RespondError maps an error onto the envelope. Domain errors surface their
// message and details; anything else becomes an opaque internal error.
func RespondError(w http.ResponseWriter, statusCode int, err error) {
	resp := Response{Status: "error", Message: "internal server error"}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		resp.Message = domainErr.Message
		if len(domainErr.Details) > 0 {
			resp.Data = map[string]interface{}{
				"code":    domainErr.Code,
				"details": domainErr.Details,
			}
		} else {
			resp.Data = map[string]interface{}{"code": domainErr.Code}
		}
	}
	writeJSON(w, statusCode, resp)
}

// RespondDomainError picks the HTTP status from the error's classification
func RespondDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFoundError(err):
		RespondError(w, http.StatusNotFound, err)
	case domain.IsValidationError(err):
		RespondError(w, http.StatusBadRequest, err)
	case domain.IsAuthError(err):
		RespondError(w, http.StatusUnauthorized, err)
	default:
		RespondError(w, http.StatusInternalServerError, err)
	}
}

// WriteJSONRaw writes a body without the envelope, for endpoints whose callers
// expect a fixed shape (webhook acknowledgements)
func WriteJSONRaw(w http.ResponseWriter, statusCode int, body interface{}) {
	writeJSON(w, statusCode, body)
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
