package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
)

type SocialLinkHandler struct {
	links *service.SocialLinkService
}

func NewSocialLinkHandler(links *service.SocialLinkService) *SocialLinkHandler {
	return &SocialLinkHandler{links: links}
}

func (h *SocialLinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("profileId")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", links, nil)
}

func (h *SocialLinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", link, nil)
}

func (h *SocialLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.SocialLinkInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	link, err := h.links.Create(r.Context(), actor, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Social link created successfully", link, nil)
}

func (h *SocialLinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.SocialLinkInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	link, err := h.links.Update(r.Context(), actor, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Social link updated successfully", link, nil)
}

func (h *SocialLinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.links.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Social link deleted successfully", nil, nil)
}
