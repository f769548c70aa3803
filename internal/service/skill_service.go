package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-api/internal/model"
	"portfolio-api/pkg/apierror"
)

type SkillService struct {
	skills SkillStore
	now    func() time.Time
}

func NewSkillService(skills SkillStore, now func() time.Time) *SkillService {
	if now == nil {
		now = time.Now
	}
	return &SkillService{skills: skills, now: now}
}

func (s *SkillService) List(ctx context.Context) ([]model.Skill, error) {
	skills, err := s.skills.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

func (s *SkillService) Create(ctx context.Context, in model.SkillInput) (model.Skill, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Skill{}, apierror.Validation("name", "Name is required")
	}

	skill := model.Skill{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  optionalText(in.Category),
		CreatedAt: s.now().UTC(),
	}
	if err := s.skills.Create(ctx, skill); err != nil {
		return model.Skill{}, contentError("create skill", "skill", name, err)
	}
	return skill, nil
}
