package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nevermarine/city-backend/internal/api/problem"
	"github.com/nevermarine/city-backend/internal/domain/events"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

// EventsHandler serves public event announcements. Reads are public, writes
// admin-only.
type EventsHandler struct {
	Service  *events.Service
	Env      string
	validate *validator.Validate
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{
		Service:  service,
		Env:      env,
		validate: validator.New(),
	}
}

type createEventRequest struct {
	Title       string     `json:"title" validate:"required,max=256"`
	Description string     `json:"description"`
	Location    string     `json:"location" validate:"max=256"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at"`
}

type updateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=256"`
	Description *string    `json:"description"`
	Location    *string    `json:"location" validate:"omitempty,max=256"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

type eventResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toEventResponse(event events.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request, principal users.User) {
	var req createEventRequest
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

	event, err := h.Service.Create(r.Context(), principal.Username, events.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]eventResponse, 0, len(list))
	for _, event := range list {
		out = append(out, toEventResponse(event))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request, principal users.User) {
	var req updateEventRequest
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

	event, err := h.Service.Update(r.Context(), pathParam(r, "id"), principal.Username, events.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request, principal users.User) {
	if err := h.Service.Delete(r.Context(), pathParam(r, "id"), principal.Username); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Event not found", err, h.Env)
	case errors.Is(err, events.ErrInvalidSchedule):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Event ends before it starts", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Server error", err, h.Env)
	}
}
