package utils

import (
	"crm/schemas"
	"encoding/json"
	"errors"
	"net/http"
)

func SendResponse(w http.ResponseWriter, statusCode int, message string, data any, internalErrorCode int) {
	if internalErrorCode != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(schemas.ApiResponse{
			Message: SendInternalError(internalErrorCode),
		})
		return
	}

	if (message == "") && (data == nil) {
		w.WriteHeader(statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(schemas.ApiResponse{
		Data:    data,
		Message: message,
	})
}

// SendError maps the service error taxonomy onto a response. The internal
// code is only exposed for failures the caller cannot fix themselves.
func SendError(w http.ResponseWriter, err error, internalErrorCode int) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		SendResponse(w, http.StatusBadRequest, validationErr.Error(), nil, 0)
		return
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		SendResponse(w, http.StatusNotFound, notFoundErr.Error(), nil, 0)
		return
	}

	if IsRemoteWriteError(err) {
		SendResponse(w, http.StatusBadGateway, "", nil, internalErrorCode)
		return
	}

	SendResponse(w, http.StatusInternalServerError, "", nil, internalErrorCode)
}
