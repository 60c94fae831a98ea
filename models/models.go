package models

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v4"
)

// RawValue is an undecoded JSON value of a request record.
type RawValue = json.RawMessage

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// --- Responses ---

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// NewErrorResponse builds an ErrorResponse with status "error".
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Status: "error", Code: code, Message: message}
}
