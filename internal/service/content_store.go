package service

import (
	"context"

	"portfolio-api/internal/model"
)

// Content stores report model.ErrNotFound for missing rows,
// model.ErrAlreadyExists for unique collisions and model.ErrInvalidInput
// for dangling references.

type ProfileStore interface {
	FindByID(ctx context.Context, id string) (model.Profile, error)
	FindBySlug(ctx context.Context, slug string) (model.Profile, error)
	FindByUserID(ctx context.Context, userID string) (model.Profile, error)
	Detail(ctx context.Context, slug string) (model.ProfileDetail, error)
	Create(ctx context.Context, p model.Profile) error
	Update(ctx context.Context, p model.Profile) error
	Delete(ctx context.Context, id string) error
}

type SkillStore interface {
	List(ctx context.Context) ([]model.Skill, error)
	Create(ctx context.Context, s model.Skill) error
}

type ProjectStore interface {
	List(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error)
	FindByID(ctx context.Context, id string) (model.Project, error)
	Create(ctx context.Context, p model.Project, technologies []string) error
	Update(ctx context.Context, p model.Project, technologies []string) error
	Delete(ctx context.Context, id string) error
}

type EducationStore interface {
	List(ctx context.Context, profileID string) ([]model.Education, error)
	FindByID(ctx context.Context, id string) (model.Education, error)
	Create(ctx context.Context, e model.Education) error
	Update(ctx context.Context, e model.Education) error
	Delete(ctx context.Context, id string) error
}

type WorkExperienceStore interface {
	List(ctx context.Context, profileID string) ([]model.WorkExperience, error)
	FindByID(ctx context.Context, id string) (model.WorkExperience, error)
	Create(ctx context.Context, w model.WorkExperience) error
	Update(ctx context.Context, w model.WorkExperience) error
	Delete(ctx context.Context, id string) error
}

type SocialLinkStore interface {
	List(ctx context.Context, profileID string) ([]model.SocialLink, error)
	FindByID(ctx context.Context, id string) (model.SocialLink, error)
	Create(ctx context.Context, l model.SocialLink) error
	Update(ctx context.Context, l model.SocialLink) error
	Delete(ctx context.Context, id string) error
}

type BlogStore interface {
	List(ctx context.Context, publishedOnly bool) ([]model.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (model.BlogPost, error)
	FindByID(ctx context.Context, id string) (model.BlogPost, error)
	Create(ctx context.Context, b model.BlogPost) error
	Update(ctx context.Context, b model.BlogPost) error
	Delete(ctx context.Context, id string) error
}
