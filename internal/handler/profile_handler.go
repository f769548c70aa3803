package handler

import (
	"net/http"
	"strings"

	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/apierror"
)

type ProfileHandler struct {
	profiles    *service.ProfileService
	defaultSlug string
	forms       formDecoder
}

func NewProfileHandler(profiles *service.ProfileService, defaultSlug string, maxUploadSize int64) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, defaultSlug: defaultSlug, forms: formDecoder{maxUploadSize: maxUploadSize}}
}

// Get serves the public portfolio page for ?slug=, falling back to the
// site owner's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.URL.Query().Get("slug"))
	if slug == "" {
		slug = h.defaultSlug
	}

	detail, err := h.profiles.Detail(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", detail, nil)
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.ProfileInput
	image, err := h.forms.decode(w, r, &payload, "image")
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profiles.Create(r.Context(), actor, payload, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Profile created successfully", profile, nil)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	slug, err := requiredSlug(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.ProfileInput
	image, err := h.forms.decode(w, r, &payload, "image")
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profiles.Update(r.Context(), actor, slug, payload, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Profile updated successfully", profile, nil)
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	slug, err := requiredSlug(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.profiles.Delete(r.Context(), actor, slug); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Profile deleted successfully", nil, nil)
}

func requiredSlug(r *http.Request) (string, error) {
	slug := strings.TrimSpace(r.URL.Query().Get("slug"))
	if slug == "" {
		return "", apierror.Validation("slug", "Slug is required")
	}
	return slug, nil
}
