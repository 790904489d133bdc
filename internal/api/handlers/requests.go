package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nevermarine/city-backend/internal/api/problem"
	"github.com/nevermarine/city-backend/internal/auth"
	"github.com/nevermarine/city-backend/internal/domain/requests"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

// RequestsHandler serves citizen request endpoints. Visibility is decided by
// the principal's scope: admins see everything, everyone else sees only their
// own records.
type RequestsHandler struct {
	Service  *requests.Service
	Env      string
	validate *validator.Validate
}

func NewRequestsHandler(service *requests.Service, env string) *RequestsHandler {
	return &RequestsHandler{
		Service:  service,
		Env:      env,
		validate: validator.New(),
	}
}

type createRequestRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type updateRequestRequest struct {
	Status   *string `json:"status"`
	Response *string `json:"response" validate:"omitempty,max=4000"`
}

type requestResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Response  *string   `json:"response"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRequestResponse(req requests.Request) requestResponse {
	return requestResponse{
		ID:        req.ID,
		Username:  req.Username,
		Message:   req.Message,
		Status:    string(req.Status),
		Response:  req.Response,
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
}

func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request, principal users.User) {
	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid request body", err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Validation failed", err, h.Env, problem.WithErrors(validationErrors(err)))
		return
	}

	created, err := h.Service.Create(r.Context(), principal.Username, req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestResponse(created))
}

func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request, principal users.User) {
	list, err := h.Service.List(r.Context(), auth.VisibleScope(principal))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]requestResponse, 0, len(list))
	for _, req := range list {
		out = append(out, toRequestResponse(req))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request, principal users.User) {
	req, err := h.Service.Get(r.Context(), pathParam(r, "id"), auth.VisibleScope(principal))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponse(req))
}

// Update applies status and response changes. Any authenticated principal may
// answer a request; the status machine still only moves forward.
func (h *RequestsHandler) Update(w http.ResponseWriter, r *http.Request, principal users.User) {
	var req updateRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid request body", err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Validation failed", err, h.Env, problem.WithErrors(validationErrors(err)))
		return
	}

	var status *requests.Status
	if req.Status != nil {
		value := requests.Status(*req.Status)
		status = &value
	}

	updated, err := h.Service.Update(r.Context(), pathParam(r, "id"), principal.Username, requests.UpdateParams{
		Status:   status,
		Response: req.Response,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponse(updated))
}

func (h *RequestsHandler) Delete(w http.ResponseWriter, r *http.Request, principal users.User) {
	err := h.Service.Delete(r.Context(), pathParam(r, "id"), principal.Username, auth.VisibleScope(principal))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RequestsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, requests.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Request not found", err, h.Env)
	case errors.Is(err, requests.ErrOwnerNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Owner not found", err, h.Env)
	case errors.Is(err, requests.ErrAlreadyResolved):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict,
			"Request already resolved", err, h.Env)
	case errors.Is(err, requests.ErrInvalidStatus):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid status", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Server error", err, h.Env)
	}
}
