package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/go-playground/validator/v10"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"

	msgInvalidRequestBody = "invalid request body"
	msgInternalError      = "Internal server error"
)

var errInvalidRequestBody = errors.New(msgInvalidRequestBody)

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSONResponse(w, status, errorResponse{
		Message: message,
		Status:  status,
	})
}

// writeError maps a failure to its response status. Anything unrecognised
// is logged and reported as a bare internal error.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var validationErrs *model.ValidationErrors

	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, errInvalidRequestBody),
		errors.Is(err, model.ErrInvalidDeviceID),
		errors.Is(err, model.ErrInvalidState):
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrDeviceNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrCannotUpdateInUseDevice),
		errors.Is(err, model.ErrCannotDeleteInUseDevice):
		writeErrorResponse(w, http.StatusConflict, err.Error())
	default:
		reqLogger := log.WithContext(r.Context())
		reqLogger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")

		writeErrorResponse(w, http.StatusInternalServerError, msgInternalError)
	}
}

// toValidationErrors converts validator output into the domain shape so the
// first failing field becomes the response message.
func toValidationErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	validationErrs := model.NewValidationErrors()

	for _, fieldErr := range fieldErrs {
		validationErrs.Add(fieldErr.Field(), validationMessage(fieldErr), fieldErr.Tag())
	}

	return validationErrs
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "uuid":
		return fieldErr.Field() + " must be a valid UUID"
	case deviceStateTag:
		return fieldErr.Field() + " must be one of: " + stateList()
	default:
		return fieldErr.Field() + " is invalid"
	}
}

func stateList() string {
	states := model.AllStates()
	names := make([]string, 0, len(states))

	for _, state := range states {
		names = append(names, state.String())
	}

	return strings.Join(names, " ")
}

func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeErrorResponse(w, http.StatusNotFound, "resource not found")
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
}
