// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/coffeelog/coffee/internal/model"

// RegisterRequest is the body of POST /api/v1/register.
type RegisterRequest struct {
	Email string `json:"email"`
}

// RegisterResponse is returned by POST /api/v1/register.
// Error and Code are set only when Success is false.
type RegisterResponse struct {
	Success bool   `json:"success"`
	APIKey  string `json:"api_key,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// AddCoffeeRequest is the body of POST /api/v1/coffee.
type AddCoffeeRequest struct {
	UTCTime int64 `json:"utc_time"`
	Shots   int32 `json:"shots"`
}

// AddCoffeeResponse is returned by POST /api/v1/coffee.
type AddCoffeeResponse struct {
	Success bool `json:"success"`
}

// ListCoffeeResponse is returned by GET /api/v1/coffee.
type ListCoffeeResponse struct {
	Coffees []model.CoffeeItem `json:"coffees"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInvalidJSON     = "INVALID_JSON"
	CodeForbidden       = "FORBIDDEN"
	CodeInternal        = "INTERNAL_ERROR"
	CodeNotFound        = "NOT_FOUND"
)
