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
	projectImageFolder = "projects"
	projectImageMaxDim = 1600
)

type ProjectService struct {
	projects ProjectStore
	owners   ownership
	images   storage.ImageStore
	now      func() time.Time
}

func NewProjectService(projects ProjectStore, profiles ProfileStore, images storage.ImageStore, now func() time.Time) *ProjectService {
	if now == nil {
		now = time.Now
	}
	return &ProjectService{projects: projects, owners: ownership{profiles: profiles}, images: images, now: now}
}

func (s *ProjectService) List(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	projects, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (model.Project, error) {
	if !isRowID(id) {
		return model.Project{}, apierror.NotFound("project", id)
	}
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return model.Project{}, contentError("get project", "project", id, err)
	}
	return p, nil
}

// Create stores a project on the caller's profile, or on the named profile
// when the caller may manage it. Technologies double as tags and are linked
// as skills.
func (s *ProjectService) Create(ctx context.Context, actor model.AuthClaims, in model.ProjectInput, image []byte) (model.Project, error) {
	title, err := requiredText("title", "Title", in.Title)
	if err != nil {
		return model.Project{}, err
	}
	slug, err := slugFor(in.Slug, title)
	if err != nil {
		return model.Project{}, err
	}

	profile, err := s.owners.resolve(ctx, actor, in.ProfileID)
	if err != nil {
		return model.Project{}, err
	}

	technologies := normalizeNames(in.Technologies)
	now := s.now().UTC()
	p := model.Project{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        slug,
		Description: optionalText(in.Description),
		WebsiteURL:  optionalText(in.WebsiteURL),
		RepoURL:     optionalText(in.RepoURL),
		VideoURL:    optionalText(in.VideoURL),
		ImageURL:    optionalText(in.ImageURL),
		Tags:        technologies,
		StartDate:   in.StartDate.TimePtr(),
		EndDate:     in.EndDate.TimePtr(),
		IsActive:    boolOr(in.IsActive, true),
		IsFeatured:  boolOr(in.IsFeatured, false),
		ProfileID:   &profile.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var newKey string
	if len(image) > 0 {
		obj, err := putImage(ctx, s.images, projectImageFolder, image, projectImageMaxDim)
		if err != nil {
			return model.Project{}, err
		}
		p.ImageURL, p.ImageKey = &obj.URL, &obj.Key
		newKey = obj.Key
	}

	if err := s.projects.Create(ctx, p, technologies); err != nil {
		discardImage(ctx, s.images, newKey)
		return model.Project{}, contentError("create project", "project", slug, err)
	}
	return s.Get(ctx, p.ID)
}

// Update patches a project. Technologies, when present, replace the tags
// and the linked skills.
func (s *ProjectService) Update(ctx context.Context, actor model.AuthClaims, id string, in model.ProjectInput, image []byte) (model.Project, error) {
	p, err := s.manageable(ctx, actor, id)
	if err != nil {
		return model.Project{}, err
	}

	if in.Title != nil {
		if p.Title, err = requiredText("title", "Title", in.Title); err != nil {
			return model.Project{}, err
		}
	}
	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
		if p.Slug, err = slugFor(in.Slug, p.Title); err != nil {
			return model.Project{}, err
		}
	}
	if in.ProfileID != nil && strings.TrimSpace(*in.ProfileID) != "" {
		target, err := s.owners.target(ctx, actor, *in.ProfileID)
		if err != nil {
			return model.Project{}, err
		}
		p.ProfileID = &target.ID
	}

	p.Description = patchText(p.Description, in.Description)
	p.WebsiteURL = patchText(p.WebsiteURL, in.WebsiteURL)
	p.RepoURL = patchText(p.RepoURL, in.RepoURL)
	p.VideoURL = patchText(p.VideoURL, in.VideoURL)
	if in.StartDate != nil {
		p.StartDate = in.StartDate.TimePtr()
	}
	if in.EndDate != nil {
		p.EndDate = in.EndDate.TimePtr()
	}
	p.IsActive = boolOr(in.IsActive, p.IsActive)
	p.IsFeatured = boolOr(in.IsFeatured, p.IsFeatured)

	var technologies []string
	if in.Technologies != nil {
		technologies = normalizeNames(in.Technologies)
		p.Tags = technologies
	}
	p.UpdatedAt = s.now().UTC()

	oldKey := p.ImageKey
	var newKey string
	if len(image) > 0 {
		obj, err := putImage(ctx, s.images, projectImageFolder, image, projectImageMaxDim)
		if err != nil {
			return model.Project{}, err
		}
		p.ImageURL, p.ImageKey = &obj.URL, &obj.Key
		newKey = obj.Key
	} else if in.ImageURL != nil {
		p.ImageURL = optionalText(in.ImageURL)
		p.ImageKey = nil
	}

	if err := s.projects.Update(ctx, p, technologies); err != nil {
		discardImage(ctx, s.images, newKey)
		return model.Project{}, contentError("update project", "project", id, err)
	}
	if oldKey != nil && (p.ImageKey == nil || *p.ImageKey != *oldKey) {
		discardImage(ctx, s.images, *oldKey)
	}
	return s.Get(ctx, p.ID)
}

func (s *ProjectService) Delete(ctx context.Context, actor model.AuthClaims, id string) error {
	p, err := s.manageable(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return contentError("delete project", "project", id, err)
	}
	if p.ImageKey != nil {
		discardImage(ctx, s.images, *p.ImageKey)
	}
	return nil
}

// manageable loads a project the actor may change. Projects detached from
// any profile are ADMIN-only.
func (s *ProjectService) manageable(ctx context.Context, actor model.AuthClaims, id string) (model.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if p.ProfileID == nil {
		if actor.Role != model.RoleAdmin {
			return model.Project{}, model.ErrForbidden
		}
		return p, nil
	}
	if _, err := s.owners.authorize(ctx, actor, *p.ProfileID); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// normalizeNames trims and de-duplicates names case-insensitively, keeping
// the first spelling.
func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

