package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
)

type WorkExperienceHandler struct {
	work  *service.WorkExperienceService
	forms formDecoder
}

func NewWorkExperienceHandler(work *service.WorkExperienceService, maxUploadSize int64) *WorkExperienceHandler {
	return &WorkExperienceHandler{work: work, forms: formDecoder{maxUploadSize: maxUploadSize}}
}

func (h *WorkExperienceHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.work.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("profileId")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", items, nil)
}

func (h *WorkExperienceHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.work.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", item, nil)
}

func (h *WorkExperienceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.WorkExperienceInput
	logo, err := h.forms.decode(w, r, &payload, "logo")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.work.Create(r.Context(), actor, payload, logo)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Work experience created successfully", item, nil)
}

func (h *WorkExperienceHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.WorkExperienceInput
	logo, err := h.forms.decode(w, r, &payload, "logo")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.work.Update(r.Context(), actor, chi.URLParam(r, "id"), payload, logo)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Work experience updated successfully", item, nil)
}

func (h *WorkExperienceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.work.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Work experience deleted successfully", nil, nil)
}
