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

type EducationService struct {
	education EducationStore
	owners    ownership
	now       func() time.Time
}

func NewEducationService(education EducationStore, profiles ProfileStore, now func() time.Time) *EducationService {
	if now == nil {
		now = time.Now
	}
	return &EducationService{education: education, owners: ownership{profiles: profiles}, now: now}
}

func (s *EducationService) List(ctx context.Context, profileID string) ([]model.Education, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID != "" && !isRowID(profileID) {
		return []model.Education{}, nil
	}
	items, err := s.education.List(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list education: %w", err)
	}
	return items, nil
}

func (s *EducationService) Get(ctx context.Context, id string) (model.Education, error) {
	if !isRowID(id) {
		return model.Education{}, apierror.NotFound("education", id)
	}
	e, err := s.education.FindByID(ctx, id)
	if err != nil {
		return model.Education{}, contentError("get education", "education", id, err)
	}
	return e, nil
}

func (s *EducationService) Create(ctx context.Context, actor model.AuthClaims, in model.EducationInput) (model.Education, error) {
	institution, err := requiredText("institution", "Institution", in.Institution)
	if err != nil {
		return model.Education{}, err
	}
	degree, err := requiredText("degree", "Degree", in.Degree)
	if err != nil {
		return model.Education{}, err
	}
	start := in.StartDate.TimePtr()
	if start == nil {
		return model.Education{}, apierror.Validation("startDate", "Start date is required")
	}

	profile, err := s.owners.resolve(ctx, actor, in.ProfileID)
	if err != nil {
		return model.Education{}, err
	}

	now := s.now().UTC()
	e := model.Education{
		ID:          uuid.NewString(),
		Institution: institution,
		Degree:      degree,
		LogoURL:     optionalText(in.LogoURL),
		StartDate:   *start,
		EndDate:     in.EndDate.TimePtr(),
		ProfileID:   profile.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.education.Create(ctx, e); err != nil {
		return model.Education{}, contentError("create education", "education", e.ID, err)
	}
	return e, nil
}

func (s *EducationService) Update(ctx context.Context, actor model.AuthClaims, id string, in model.EducationInput) (model.Education, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return model.Education{}, err
	}
	if _, err := s.owners.authorize(ctx, actor, e.ProfileID); err != nil {
		return model.Education{}, err
	}

	if in.Institution != nil {
		if e.Institution, err = requiredText("institution", "Institution", in.Institution); err != nil {
			return model.Education{}, err
		}
	}
	if in.Degree != nil {
		if e.Degree, err = requiredText("degree", "Degree", in.Degree); err != nil {
			return model.Education{}, err
		}
	}
	if start := in.StartDate.TimePtr(); start != nil {
		e.StartDate = *start
	}
	if in.EndDate != nil {
		e.EndDate = in.EndDate.TimePtr()
	}
	if in.ProfileID != nil && strings.TrimSpace(*in.ProfileID) != "" {
		target, err := s.owners.target(ctx, actor, *in.ProfileID)
		if err != nil {
			return model.Education{}, err
		}
		e.ProfileID = target.ID
	}
	e.LogoURL = patchText(e.LogoURL, in.LogoURL)
	e.UpdatedAt = s.now().UTC()

	if err := s.education.Update(ctx, e); err != nil {
		return model.Education{}, contentError("update education", "education", id, err)
	}
	return e, nil
}

func (s *EducationService) Delete(ctx context.Context, actor model.AuthClaims, id string) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.owners.authorize(ctx, actor, e.ProfileID); err != nil {
		return err
	}
	return contentError("delete education", "education", id, s.education.Delete(ctx, id))
}
