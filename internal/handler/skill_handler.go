package handler

import (
	"net/http"

	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
)

type SkillHandler struct {
	skills *service.SkillService
}

func NewSkillHandler(skills *service.SkillService) *SkillHandler {
	return &SkillHandler{skills: skills}
}

func (h *SkillHandler) List(w http.ResponseWriter, r *http.Request) {
	skills, err := h.skills.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", skills, nil)
}

func (h *SkillHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFromRequest(w, r); !ok {
		return
	}

	var payload model.SkillInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	skill, err := h.skills.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Skill created successfully", skill, nil)
}
