package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/medbook/medbook-ui/internal/domain/booking"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
)

const maxBodyBytes = 1 << 20

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, errorBody(p.ErrCode, p.Err.Error(), p.Err))
}

// errorBody builds the error payload; errors naming a field also report it under fields.
func errorBody(code, message string, err error) map[string]any {
	body := map[string]any{"error": code, "message": message}
	if field := apperrors.GetField(err); field != "" {
		body["fields"] = map[string]string{field: message}
	}
	return body
}

const unavailableMessage = "The server is unavailable. Please try again later."

// writeServiceError maps service and backend failures onto responses.
// Transport and internal failures get a generic message; their detail stays in the logs.
func writeServiceError(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":   string(apperrors.ErrCodeValidation),
			"message": "Please correct the highlighted fields.",
			"fields":  fieldErrors(verrs),
		})
		return
	}
	if errors.Is(err, booking.ErrEndBeforeStart) {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: string(apperrors.ErrCodeValidation), Err: err})
		return
	}

	code := apperrors.GetCode(err)
	status, message := http.StatusInternalServerError, "Something went wrong."
	switch code {
	case apperrors.ErrCodeUnauthorized:
		status, message = http.StatusUnauthorized, "Your session has expired. Please sign in again."
	case apperrors.ErrCodeForbidden:
		status, message = http.StatusForbidden, "You do not have access to this resource."
	case apperrors.ErrCodeNotFound:
		status, message = http.StatusNotFound, appMessage(err, "Not found.")
	case apperrors.ErrCodeConflict:
		status, message = http.StatusConflict, appMessage(err, "The request conflicts with the current state.")
	case apperrors.ErrCodeValidation:
		status, message = http.StatusBadRequest, appMessage(err, "The request is invalid.")
	case apperrors.ErrCodeUnavailable:
		status, message = http.StatusServiceUnavailable, unavailableMessage
		if apperrors.GetStatus(err) != 0 {
			status = http.StatusBadGateway
		}
	case apperrors.ErrCodeTransport, apperrors.ErrCodeCanceled:
		status, message = http.StatusBadGateway, unavailableMessage
	case apperrors.ErrCodeTimeout:
		status, message = http.StatusGatewayTimeout, unavailableMessage
	case "":
		code = apperrors.ErrCodeInternal
	}
	WriteJSON(w, status, errorBody(string(code), message, err))
}

func appMessage(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && strings.TrimSpace(appErr.Message) != "" {
		return appErr.Message
	}
	return fallback
}

func fieldErrors(verrs validation.Errors) map[string]string {
	out := make(map[string]string, len(verrs))
	for field, err := range verrs {
		if err != nil {
			out[field] = err.Error()
		}
	}
	return out
}
