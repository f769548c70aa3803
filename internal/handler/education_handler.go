package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
)

type EducationHandler struct {
	education *service.EducationService
	forms     formDecoder
}

func NewEducationHandler(education *service.EducationService, maxUploadSize int64) *EducationHandler {
	return &EducationHandler{education: education, forms: formDecoder{maxUploadSize: maxUploadSize}}
}

func (h *EducationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.education.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("profileId")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", items, nil)
}

func (h *EducationHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.education.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", item, nil)
}

func (h *EducationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.EducationInput
	if _, err := h.forms.decode(w, r, &payload, ""); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.education.Create(r.Context(), actor, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Education created successfully", item, nil)
}

func (h *EducationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.EducationInput
	if _, err := h.forms.decode(w, r, &payload, ""); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.education.Update(r.Context(), actor, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Education updated successfully", item, nil)
}

func (h *EducationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.education.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Education deleted successfully", nil, nil)
}
