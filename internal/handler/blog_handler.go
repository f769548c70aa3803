package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
)

type BlogHandler struct {
	posts *service.BlogService
	forms formDecoder
}

func NewBlogHandler(posts *service.BlogService, maxUploadSize int64) *BlogHandler {
	return &BlogHandler{posts: posts, forms: formDecoder{maxUploadSize: maxUploadSize}}
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context(), queryFlag(r, "published"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", posts, nil)
}

func (h *BlogHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", post, nil)
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.BlogPostInput
	cover, err := h.forms.decode(w, r, &payload, "coverImage")
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), actor, payload, cover)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Blog post created successfully", post, nil)
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.BlogPostInput
	cover, err := h.forms.decode(w, r, &payload, "coverImage")
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Update(r.Context(), actor, chi.URLParam(r, "id"), payload, cover)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Blog post updated successfully", post, nil)
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Blog post deleted successfully", nil, nil)
}
