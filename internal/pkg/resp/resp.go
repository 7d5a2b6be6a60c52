/*
Package resp writes the JSON envelope used by every REST response:
{"code": 0, "message": "...", "data": ...}.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"taskhub/internal/pkg/errs"
	"taskhub/internal/pkg/logx"
)

// JSONResponse is the envelope returned to REST clients.
type JSONResponse struct {
	// Code is 0 on success, otherwise an errs code.
	Code int `json:"code"`

	Message string `json:"message"`

	Data any `json:"data,omitempty"`
}

// RespondJSON sets the JSON headers and writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends 200 OK with the given message and data.
func RespondSuccess(w http.ResponseWriter, r *http.Request, message string, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{Code: 0, Message: message, Data: data})
}

// RespondCreated sends 201 Created with the given message and data.
func RespondCreated(w http.ResponseWriter, r *http.Request, message string, data any) {
	RespondJSON(w, r, http.StatusCreated, JSONResponse{Code: 0, Message: message, Data: data})
}

// RespondNoContent sends an empty 204.
func RespondNoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondError sends the status and message carried by customErr.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
		Data:    nil,
	}
	RespondJSON(w, r, customErr.Status, res)
}
