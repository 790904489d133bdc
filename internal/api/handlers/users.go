package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nevermarine/city-backend/internal/api/problem"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

// UsersHandler serves registration and user lifecycle endpoints.
type UsersHandler struct {
	Service  *users.Service
	Env      string
	validate *validator.Validate
}

func NewUsersHandler(service *users.Service, env string) *UsersHandler {
	return &UsersHandler{
		Service:  service,
		Env:      env,
		validate: validator.New(),
	}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	FullName string `json:"full_name" validate:"max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type updateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=128"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Disabled *bool   `json:"disabled"`
}

type userResponse struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Disabled  bool      `json:"disabled"`
	Admin     bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(user users.User) userResponse {
	return userResponse{
		Username:  user.Username,
		FullName:  user.FullName,
		Email:     user.Email,
		Disabled:  user.Disabled,
		Admin:     user.Admin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Create handles POST /users/create. Registration is open; duplicates come
// back as 409.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
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

	user, err := h.Service.Register(r.Context(), users.RegisterParams{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request, _ users.User) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(list))
	for _, user := range list {
		out = append(out, toUserResponse(user))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request, _ users.User) {
	username := pathParam(r, "username")

	user, err := h.Service.Get(r.Context(), username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Me handles GET /users/me; the principal is already resolved so this is a
// straight echo.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request, principal users.User) {
	writeJSON(w, http.StatusOK, toUserResponse(principal))
}

// Update patches profile fields. Self-or-admin; only admins may flip the
// disabled flag.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request, principal users.User) {
	username := pathParam(r, "username")
	if !sameOrAdmin(principal, username) {
		h.forbidden(w, r)
		return
	}

	var req updateUserRequest
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
	if req.Disabled != nil && !principal.Admin {
		h.forbidden(w, r)
		return
	}

	user, err := h.Service.Update(r.Context(), username, users.UpdateParams{
		FullName: req.FullName,
		Email:    req.Email,
		Disabled: req.Disabled,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Delete removes a user with everything it owns and returns the snapshot.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request, principal users.User) {
	username := pathParam(r, "username")
	if !sameOrAdmin(principal, username) {
		h.forbidden(w, r)
		return
	}

	user, err := h.Service.Delete(r.Context(), username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func sameOrAdmin(principal users.User, username string) bool {
	return principal.Admin || principal.Username == username
}

func (h *UsersHandler) forbidden(w http.ResponseWriter, r *http.Request) {
	problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
		"Not allowed to manage this user", errors.New("self-or-admin required"), h.Env)
}

func (h *UsersHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"User not found", err, h.Env)
	case errors.Is(err, users.ErrUsernameTaken), errors.Is(err, users.ErrEmailTaken):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict,
			"User already exists", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Server error", err, h.Env)
	}
}
