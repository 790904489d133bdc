package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nevermarine/city-backend/internal/api/problem"
	"github.com/nevermarine/city-backend/internal/domain/news"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

// NewsHandler serves municipal news. Reads are public, writes are admin-only
// and routed through the admin middleware.
type NewsHandler struct {
	Service  *news.Service
	Env      string
	validate *validator.Validate
}

func NewNewsHandler(service *news.Service, env string) *NewsHandler {
	return &NewsHandler{
		Service:  service,
		Env:      env,
		validate: validator.New(),
	}
}

type createArticleRequest struct {
	Title string `json:"title" validate:"required,max=256"`
	Body  string `json:"body" validate:"required"`
}

type updateArticleRequest struct {
	Title *string `json:"title" validate:"omitempty,max=256"`
	Body  *string `json:"body"`
}

type articleResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toArticleResponse(article news.Article) articleResponse {
	return articleResponse{
		ID:        article.ID,
		Title:     article.Title,
		Body:      article.Body,
		Author:    article.Author,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
}

func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request, principal users.User) {
	var req createArticleRequest
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

	article, err := h.Service.Create(r.Context(), principal.Username, req.Title, req.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toArticleResponse(article))
}

func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]articleResponse, 0, len(list))
	for _, article := range list {
		out = append(out, toArticleResponse(article))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.Service.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request, principal users.User) {
	var req updateArticleRequest
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

	article, err := h.Service.Update(r.Context(), pathParam(r, "id"), principal.Username, news.UpdateParams{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request, principal users.User) {
	if err := h.Service.Delete(r.Context(), pathParam(r, "id"), principal.Username); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NewsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, news.ErrNotFound) {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Article not found", err, h.Env)
		return
	}
	problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
		"Server error", err, h.Env)
}
