package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
	forms    formDecoder
}

func NewProjectHandler(projects *service.ProjectService, maxUploadSize int64) *ProjectHandler {
	return &ProjectHandler{projects: projects, forms: formDecoder{maxUploadSize: maxUploadSize}}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.ProjectFilter{
		Featured: queryFlag(r, "featured"),
		Active:   queryFlag(r, "active"),
	}

	projects, err := h.projects.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", projects, nil)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", project, nil)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.ProjectInput
	image, err := h.forms.decode(w, r, &payload, "image")
	if err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Create(r.Context(), actor, payload, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Project created successfully", project, nil)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.ProjectInput
	image, err := h.forms.decode(w, r, &payload, "image")
	if err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Update(r.Context(), actor, chi.URLParam(r, "id"), payload, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Project updated successfully", project, nil)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Project deleted successfully", nil, nil)
}
