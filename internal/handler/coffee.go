package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coffeelog/coffee/internal/auth"
	"github.com/coffeelog/coffee/internal/handler/dto"
	"github.com/coffeelog/coffee/internal/model"
	"github.com/coffeelog/coffee/internal/service"
)

// CoffeeHandler handles HTTP requests for registration and the coffee log.
type CoffeeHandler struct {
	svc    *service.CoffeeService
	logger *slog.Logger
}

// NewCoffeeHandler creates a new CoffeeHandler.
func NewCoffeeHandler(svc *service.CoffeeService, logger *slog.Logger) *CoffeeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CoffeeHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/v1/register.
func (h *CoffeeHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.RegisterResponse{
			Success: false,
			Error:   "Invalid request body",
			Code:    dto.CodeInvalidJSON,
		})
		return
	}

	result, err := h.svc.Register(r.Context(), req.Email)
	if err != nil {
		status, code, message := h.classify(err)
		writeJSON(w, status, dto.RegisterResponse{
			Success: false,
			Error:   message,
			Code:    code,
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.RegisterResponse{
		Success: result.Success,
		APIKey:  result.APIKey,
	})
}

// Add handles POST /api/v1/coffee.
func (h *CoffeeHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCoffeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, dto.CodeInvalidJSON, "Invalid request body")
		return
	}

	result, err := h.svc.AddCoffee(r.Context(), auth.APIKeyFromContext(r.Context()), req.UTCTime, req.Shots)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AddCoffeeResponse{Success: result.Success})
}

// List handles GET /api/v1/coffee.
func (h *CoffeeHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListCoffee(r.Context(), auth.APIKeyFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if items == nil {
		items = []model.CoffeeItem{}
	}
	writeJSON(w, http.StatusOK, dto.ListCoffeeResponse{Coffees: items})
}

// handleServiceError maps service errors to HTTP responses.
func (h *CoffeeHandler) handleServiceError(w http.ResponseWriter, err error) {
	status, code, message := h.classify(err)
	h.writeError(w, status, code, message)
}

// classify maps a service error to status, code and client-facing message.
// Internal causes are logged, never returned.
func (h *CoffeeHandler) classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.CodeUnauthenticated, "Invalid or missing API key"
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, dto.CodeInvalidArgument, "shots must be a positive number"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, dto.CodeForbidden, "Account is disabled"
	default:
		h.logger.Error("internal_error", "error", err)
		return http.StatusInternalServerError, dto.CodeInternal, "An internal error occurred"
	}
}

// writeError writes an error response.
func (h *CoffeeHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
