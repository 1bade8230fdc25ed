package utils

import (
	"encoding/json"
	"net/http"
	"time"
)

// Machine-readable error codes.
const (
	CodeNotFound            = "not_found"
	CodeConflict            = "conflict"
	CodeCounterOfferExpired = "counter_offer_expired"
	CodeValidation          = "validation"
	CodeForbidden           = "forbidden"
	CodeUnauthorized        = "unauthorized"
	CodeInternal            = "internal"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Field     string      `json:"field,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, code, field string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     message,
		Code:      code,
		Field:     field,
		Timestamp: time.Now(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, SuccessResponse(message, data))
}

func WriteError(w http.ResponseWriter, status int, code, message, field string) {
	WriteJSON(w, status, ErrorResponse(message, code, field))
}
