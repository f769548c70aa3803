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

type SocialLinkService struct {
	links  SocialLinkStore
	owners ownership
	now    func() time.Time
}

func NewSocialLinkService(links SocialLinkStore, profiles ProfileStore, now func() time.Time) *SocialLinkService {
	if now == nil {
		now = time.Now
	}
	return &SocialLinkService{links: links, owners: ownership{profiles: profiles}, now: now}
}

func (s *SocialLinkService) List(ctx context.Context, profileID string) ([]model.SocialLink, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID != "" && !isRowID(profileID) {
		return []model.SocialLink{}, nil
	}
	links, err := s.links.List(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list social links: %w", err)
	}
	return links, nil
}

func (s *SocialLinkService) Get(ctx context.Context, id string) (model.SocialLink, error) {
	if !isRowID(id) {
		return model.SocialLink{}, apierror.NotFound("social link", id)
	}
	l, err := s.links.FindByID(ctx, id)
	if err != nil {
		return model.SocialLink{}, contentError("get social link", "social link", id, err)
	}
	return l, nil
}

func (s *SocialLinkService) Create(ctx context.Context, actor model.AuthClaims, in model.SocialLinkInput) (model.SocialLink, error) {
	platform, err := requiredText("platform", "Platform", in.Platform)
	if err != nil {
		return model.SocialLink{}, err
	}
	url, err := requiredText("url", "URL", in.URL)
	if err != nil {
		return model.SocialLink{}, err
	}

	profile, err := s.owners.resolve(ctx, actor, in.ProfileID)
	if err != nil {
		return model.SocialLink{}, err
	}

	now := s.now().UTC()
	l := model.SocialLink{
		ID:        uuid.NewString(),
		Platform:  platform,
		URL:       url,
		Icon:      optionalText(in.Icon),
		Navbar:    boolOr(in.Navbar, false),
		ProfileID: profile.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.SortOrder != nil {
		l.SortOrder = *in.SortOrder
	}

	if err := s.links.Create(ctx, l); err != nil {
		return model.SocialLink{}, contentError("create social link", "social link", l.ID, err)
	}
	return l, nil
}

func (s *SocialLinkService) Update(ctx context.Context, actor model.AuthClaims, id string, in model.SocialLinkInput) (model.SocialLink, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return model.SocialLink{}, err
	}
	if _, err := s.owners.authorize(ctx, actor, l.ProfileID); err != nil {
		return model.SocialLink{}, err
	}

	if in.Platform != nil {
		if l.Platform, err = requiredText("platform", "Platform", in.Platform); err != nil {
			return model.SocialLink{}, err
		}
	}
	if in.URL != nil {
		if l.URL, err = requiredText("url", "URL", in.URL); err != nil {
			return model.SocialLink{}, err
		}
	}
	if in.ProfileID != nil && strings.TrimSpace(*in.ProfileID) != "" {
		target, err := s.owners.target(ctx, actor, *in.ProfileID)
		if err != nil {
			return model.SocialLink{}, err
		}
		l.ProfileID = target.ID
	}
	l.Icon = patchText(l.Icon, in.Icon)
	l.Navbar = boolOr(in.Navbar, l.Navbar)
	if in.SortOrder != nil {
		l.SortOrder = *in.SortOrder
	}
	l.UpdatedAt = s.now().UTC()

	if err := s.links.Update(ctx, l); err != nil {
		return model.SocialLink{}, contentError("update social link", "social link", id, err)
	}
	return l, nil
}

func (s *SocialLinkService) Delete(ctx context.Context, actor model.AuthClaims, id string) error {
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.owners.authorize(ctx, actor, l.ProfileID); err != nil {
		return err
	}
	return contentError("delete social link", "social link", id, s.links.Delete(ctx, id))
}
