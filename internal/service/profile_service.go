package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-api/internal/model"
	"portfolio-api/internal/storage"
	"portfolio-api/internal/util"
	"portfolio-api/pkg/apierror"
)

const (
	profileImageFolder = "profiles"
	profileImageMaxDim = 800
)

type ProfileService struct {
	profiles ProfileStore
	images   storage.ImageStore
	now      func() time.Time
}

func NewProfileService(profiles ProfileStore, images storage.ImageStore, now func() time.Time) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{profiles: profiles, images: images, now: now}
}

// Detail returns the public portfolio page for slug.
func (s *ProfileService) Detail(ctx context.Context, slug string) (model.ProfileDetail, error) {
	slug = strings.TrimSpace(slug)
	detail, err := s.profiles.Detail(ctx, slug)
	if errors.Is(err, model.ErrNotFound) {
		return model.ProfileDetail{}, apierror.NotFound("profile", slug)
	}
	if err != nil {
		return model.ProfileDetail{}, fmt.Errorf("profile detail: %w", err)
	}
	return detail, nil
}

// Create makes the caller's profile. Each user owns at most one and the
// avatar image is mandatory.
func (s *ProfileService) Create(ctx context.Context, actor model.AuthClaims, in model.ProfileInput, image []byte) (model.Profile, error) {
	if len(image) == 0 {
		return model.Profile{}, apierror.BadRequest("No file uploaded", "image")
	}

	fullName, err := requiredText("fullName", "Full name", in.FullName)
	if err != nil {
		return model.Profile{}, err
	}
	slug, err := slugFor(in.Slug, fullName)
	if err != nil {
		return model.Profile{}, err
	}

	_, err = s.profiles.FindByUserID(ctx, actor.UserID)
	switch {
	case err == nil:
		return model.Profile{}, apierror.Conflict("Profile already exists", actor.UserID)
	case !errors.Is(err, model.ErrNotFound):
		return model.Profile{}, fmt.Errorf("find profile: %w", err)
	}

	obj, err := putImage(ctx, s.images, profileImageFolder, image, profileImageMaxDim)
	if err != nil {
		return model.Profile{}, err
	}

	now := s.now().UTC()
	p := model.Profile{
		ID:           uuid.NewString(),
		Slug:         slug,
		FullName:     fullName,
		Headline:     optionalText(in.Headline),
		Location:     optionalText(in.Location),
		LocationLink: optionalText(in.LocationLink),
		AvatarURL:    &obj.URL,
		AvatarKey:    &obj.Key,
		ShortBio:     optionalText(in.ShortBio),
		Email:        optionalText(in.Email),
		Telephone:    optionalText(in.Telephone),
		UserID:       actor.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profiles.Create(ctx, p); err != nil {
		discardImage(ctx, s.images, obj.Key)
		return model.Profile{}, contentError("create profile", "profile", slug, err)
	}

	slog.Info("profile created", "profile_id", p.ID, "slug", p.Slug)
	return p, nil
}

// Update patches the profile identified by slug. A new image replaces the
// stored avatar.
func (s *ProfileService) Update(ctx context.Context, actor model.AuthClaims, slug string, in model.ProfileInput, image []byte) (model.Profile, error) {
	p, err := s.manageable(ctx, actor, slug)
	if err != nil {
		return model.Profile{}, err
	}

	if in.FullName != nil {
		if p.FullName, err = requiredText("fullName", "Full name", in.FullName); err != nil {
			return model.Profile{}, err
		}
	}
	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
		if p.Slug, err = slugFor(in.Slug, p.FullName); err != nil {
			return model.Profile{}, err
		}
	}
	p.Headline = patchText(p.Headline, in.Headline)
	p.Location = patchText(p.Location, in.Location)
	p.LocationLink = patchText(p.LocationLink, in.LocationLink)
	p.ShortBio = patchText(p.ShortBio, in.ShortBio)
	p.Email = patchText(p.Email, in.Email)
	p.Telephone = patchText(p.Telephone, in.Telephone)
	p.UpdatedAt = s.now().UTC()

	oldKey := p.AvatarKey
	var newKey string
	if len(image) > 0 {
		obj, err := putImage(ctx, s.images, profileImageFolder, image, profileImageMaxDim)
		if err != nil {
			return model.Profile{}, err
		}
		p.AvatarURL, p.AvatarKey = &obj.URL, &obj.Key
		newKey = obj.Key
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		discardImage(ctx, s.images, newKey)
		return model.Profile{}, contentError("update profile", "profile", p.Slug, err)
	}
	if newKey != "" && oldKey != nil {
		discardImage(ctx, s.images, *oldKey)
	}
	return p, nil
}

// Delete removes the profile and its stored avatar.
func (s *ProfileService) Delete(ctx context.Context, actor model.AuthClaims, slug string) error {
	p, err := s.manageable(ctx, actor, slug)
	if err != nil {
		return err
	}

	if err := s.profiles.Delete(ctx, p.ID); err != nil {
		return contentError("delete profile", "profile", slug, err)
	}
	if p.AvatarKey != nil {
		discardImage(ctx, s.images, *p.AvatarKey)
	}

	slog.Info("profile deleted", "profile_id", p.ID, "slug", p.Slug)
	return nil
}

// EnsureDefault gives a freshly seeded owner the profile served at slug, so
// GET /profile works on a new install. Existing profiles are left alone.
func (s *ProfileService) EnsureDefault(ctx context.Context, owner model.User, slug string) (model.Profile, error) {
	slug = strings.TrimSpace(slug)
	if !util.IsSlug(slug) {
		return model.Profile{}, fmt.Errorf("default profile slug %q is not a valid slug", slug)
	}

	if p, err := s.profiles.FindBySlug(ctx, slug); err == nil {
		return p, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, fmt.Errorf("find default profile: %w", err)
	}

	if p, err := s.profiles.FindByUserID(ctx, owner.ID); err == nil {
		slog.Warn("default profile slug is unused but the owner already has a profile",
			"slug", slug, "owner_slug", p.Slug)
		return p, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, fmt.Errorf("find owner profile: %w", err)
	}

	now := s.now().UTC()
	p := model.Profile{
		ID:        uuid.NewString(),
		Slug:      slug,
		FullName:  owner.Name,
		UserID:    owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return model.Profile{}, fmt.Errorf("create default profile: %w", err)
	}

	slog.Info("default profile created", "profile_id", p.ID, "slug", slug)
	return p, nil
}

func (s *ProfileService) manageable(ctx context.Context, actor model.AuthClaims, slug string) (model.Profile, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Profile{}, apierror.Validation("slug", "Slug is required")
	}

	p, err := s.profiles.FindBySlug(ctx, slug)
	if errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, apierror.NotFound("profile", slug)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("find profile: %w", err)
	}
	if !canManage(actor, p.UserID) {
		return model.Profile{}, model.ErrForbidden
	}
	return p, nil
}
