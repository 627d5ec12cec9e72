package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type errorBody struct {
	Code    domain.ErrorKind `json:"code"`
	Message string           `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type listResponse struct {
	Data  any  `json:"data"`
	Stale bool `json:"stale"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func respondWithList(w http.ResponseWriter, data any) {
	respondWithJSON(w, http.StatusOK, listResponse{Data: data})
}

// statusForKind maps an error kind onto its HTTP status code
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrorKindValidation:
		return http.StatusBadRequest
	case domain.ErrorKindNotFound:
		return http.StatusNotFound
	case domain.ErrorKindConflict:
		return http.StatusConflict
	case domain.ErrorKindInvalidTransition:
		return http.StatusUnprocessableEntity
	case domain.ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrorKindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes the error envelope. Storage failures and unclassified errors
// are logged and reported without their cause.
func respondWithError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("Unhandled error", "error", err)
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{Code: domain.ErrorKindStorage, Message: "internal server error"}})
		return
	}
	status := statusForKind(de.Kind)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	}
	respondWithJSON(w, status, errorResponse{Error: errorBody{Code: de.Kind, Message: de.Message}})
}

// decodeJSON reads the request body into dst and validates its struct tags
func decodeJSON(r *http.Request, dst any) error {
	return decodeBody(r, dst, false)
}

// decodeOptionalJSON is decodeJSON for endpoints where an empty body, chunked or not,
// leaves dst at its zero value.
func decodeOptionalJSON(r *http.Request, dst any) error {
	return decodeBody(r, dst, true)
}

func decodeBody(r *http.Request, dst any, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return domain.NewValidationError("invalid request body: %v", io.EOF)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return domain.NewValidationError("invalid request body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError("invalid request: %v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag()+"="+fe.Param())
		} else {
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
	}
	return domain.NewValidationError("%s", strings.Join(msgs, "; "))
}

// splitList parses a comma separated query value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
