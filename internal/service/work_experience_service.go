package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-api/internal/model"
	"portfolio-api/internal/storage"
	"portfolio-api/pkg/apierror"
)

const (
	logoFolder = "logos"
	logoMaxDim = 256
)

type WorkExperienceService struct {
	work   WorkExperienceStore
	owners ownership
	images storage.ImageStore
	now    func() time.Time
}

func NewWorkExperienceService(work WorkExperienceStore, profiles ProfileStore, images storage.ImageStore, now func() time.Time) *WorkExperienceService {
	if now == nil {
		now = time.Now
	}
	return &WorkExperienceService{work: work, owners: ownership{profiles: profiles}, images: images, now: now}
}

func (s *WorkExperienceService) List(ctx context.Context, profileID string) ([]model.WorkExperience, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID != "" && !isRowID(profileID) {
		return []model.WorkExperience{}, nil
	}
	items, err := s.work.List(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list work experience: %w", err)
	}
	return items, nil
}

func (s *WorkExperienceService) Get(ctx context.Context, id string) (model.WorkExperience, error) {
	if !isRowID(id) {
		return model.WorkExperience{}, apierror.NotFound("work experience", id)
	}
	w, err := s.work.FindByID(ctx, id)
	if err != nil {
		return model.WorkExperience{}, contentError("get work experience", "work experience", id, err)
	}
	return w, nil
}

func (s *WorkExperienceService) Create(ctx context.Context, actor model.AuthClaims, in model.WorkExperienceInput, logo []byte) (model.WorkExperience, error) {
	company, err := requiredText("company", "Company", in.Company)
	if err != nil {
		return model.WorkExperience{}, err
	}
	position, err := requiredText("position", "Position", in.Position)
	if err != nil {
		return model.WorkExperience{}, err
	}
	start := in.StartDate.TimePtr()
	if start == nil {
		return model.WorkExperience{}, apierror.Validation("startDate", "Start date is required")
	}

	profile, err := s.owners.resolve(ctx, actor, in.ProfileID)
	if err != nil {
		return model.WorkExperience{}, err
	}

	now := s.now().UTC()
	w := model.WorkExperience{
		ID:          uuid.NewString(),
		Company:     company,
		Position:    position,
		Location:    optionalText(in.Location),
		Website:     optionalText(in.Website),
		Description: optionalText(in.Description),
		LogoURL:     optionalText(in.LogoURL),
		StartDate:   *start,
		EndDate:     in.EndDate.TimePtr(),
		ProfileID:   profile.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var newKey string
	if len(logo) > 0 {
		obj, err := putImage(ctx, s.images, logoFolder, logo, logoMaxDim)
		if err != nil {
			return model.WorkExperience{}, err
		}
		w.LogoURL, w.LogoKey = &obj.URL, &obj.Key
		newKey = obj.Key
	}

	if err := s.work.Create(ctx, w); err != nil {
		discardImage(ctx, s.images, newKey)
		return model.WorkExperience{}, contentError("create work experience", "work experience", w.ID, err)
	}
	return w, nil
}

func (s *WorkExperienceService) Update(ctx context.Context, actor model.AuthClaims, id string, in model.WorkExperienceInput, logo []byte) (model.WorkExperience, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return model.WorkExperience{}, err
	}
	if _, err := s.owners.authorize(ctx, actor, w.ProfileID); err != nil {
		return model.WorkExperience{}, err
	}

	if in.Company != nil {
		if w.Company, err = requiredText("company", "Company", in.Company); err != nil {
			return model.WorkExperience{}, err
		}
	}
	if in.Position != nil {
		if w.Position, err = requiredText("position", "Position", in.Position); err != nil {
			return model.WorkExperience{}, err
		}
	}
	if start := in.StartDate.TimePtr(); start != nil {
		w.StartDate = *start
	}
	if in.EndDate != nil {
		w.EndDate = in.EndDate.TimePtr()
	}
	if in.ProfileID != nil && strings.TrimSpace(*in.ProfileID) != "" {
		target, err := s.owners.target(ctx, actor, *in.ProfileID)
		if err != nil {
			return model.WorkExperience{}, err
		}
		w.ProfileID = target.ID
	}
	w.Location = patchText(w.Location, in.Location)
	w.Website = patchText(w.Website, in.Website)
	w.Description = patchText(w.Description, in.Description)
	w.UpdatedAt = s.now().UTC()

	oldKey := w.LogoKey
	var newKey string
	if len(logo) > 0 {
		obj, err := putImage(ctx, s.images, logoFolder, logo, logoMaxDim)
		if err != nil {
			return model.WorkExperience{}, err
		}
		w.LogoURL, w.LogoKey = &obj.URL, &obj.Key
		newKey = obj.Key
	} else if in.LogoURL != nil {
		w.LogoURL = optionalText(in.LogoURL)
		w.LogoKey = nil
	}

	if err := s.work.Update(ctx, w); err != nil {
		discardImage(ctx, s.images, newKey)
		return model.WorkExperience{}, contentError("update work experience", "work experience", id, err)
	}
	if oldKey != nil && (w.LogoKey == nil || *w.LogoKey != *oldKey) {
		discardImage(ctx, s.images, *oldKey)
	}
	return w, nil
}

func (s *WorkExperienceService) Delete(ctx context.Context, actor model.AuthClaims, id string) error {
	w, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.owners.authorize(ctx, actor, w.ProfileID); err != nil {
		return err
	}
	if err := s.work.Delete(ctx, id); err != nil {
		return contentError("delete work experience", "work experience", id, err)
	}
	if w.LogoKey != nil {
		discardImage(ctx, s.images, *w.LogoKey)
	}
	return nil
}
