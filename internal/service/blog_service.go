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
	coverFolder = "blog"
	coverMaxDim = 1600
)

type BlogService struct {
	posts  BlogStore
	owners ownership
	images storage.ImageStore
	now    func() time.Time
}

func NewBlogService(posts BlogStore, profiles ProfileStore, images storage.ImageStore, now func() time.Time) *BlogService {
	if now == nil {
		now = time.Now
	}
	return &BlogService{posts: posts, owners: ownership{profiles: profiles}, images: images, now: now}
}

func (s *BlogService) List(ctx context.Context, publishedOnly bool) ([]model.BlogPost, error) {
	posts, err := s.posts.List(ctx, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	return posts, nil
}

func (s *BlogService) GetBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	slug = strings.TrimSpace(slug)
	b, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return model.BlogPost{}, contentError("get blog post", "blog post", slug, err)
	}
	return b, nil
}

// Create publishes a post authored by the caller's profile.
func (s *BlogService) Create(ctx context.Context, actor model.AuthClaims, in model.BlogPostInput, cover []byte) (model.BlogPost, error) {
	title, err := requiredText("title", "Title", in.Title)
	if err != nil {
		return model.BlogPost{}, err
	}
	content, err := requiredText("content", "Content", in.Content)
	if err != nil {
		return model.BlogPost{}, err
	}
	slug, err := slugFor(in.Slug, title)
	if err != nil {
		return model.BlogPost{}, err
	}

	author, err := s.owners.resolve(ctx, actor, nil)
	if err != nil {
		return model.BlogPost{}, err
	}

	now := s.now().UTC()
	b := model.BlogPost{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        slug,
		Content:     content,
		Summary:     optionalText(in.Summary),
		CoverImage:  optionalText(in.CoverImage),
		Tags:        normalizeNames(in.Tags),
		PublishedAt: in.PublishedAt.TimePtr(),
		AuthorID:    author.ID,
		Author:      model.BlogAuthor{FullName: author.FullName, AvatarURL: author.AvatarURL},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var newKey string
	if len(cover) > 0 {
		obj, err := putImage(ctx, s.images, coverFolder, cover, coverMaxDim)
		if err != nil {
			return model.BlogPost{}, err
		}
		b.CoverImage, b.CoverKey = &obj.URL, &obj.Key
		newKey = obj.Key
	}

	if err := s.posts.Create(ctx, b); err != nil {
		discardImage(ctx, s.images, newKey)
		return model.BlogPost{}, contentError("create blog post", "blog post", slug, err)
	}
	return b, nil
}

func (s *BlogService) Update(ctx context.Context, actor model.AuthClaims, id string, in model.BlogPostInput, cover []byte) (model.BlogPost, error) {
	b, err := s.manageable(ctx, actor, id)
	if err != nil {
		return model.BlogPost{}, err
	}

	if in.Title != nil {
		if b.Title, err = requiredText("title", "Title", in.Title); err != nil {
			return model.BlogPost{}, err
		}
	}
	if in.Content != nil {
		if b.Content, err = requiredText("content", "Content", in.Content); err != nil {
			return model.BlogPost{}, err
		}
	}
	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
		if b.Slug, err = slugFor(in.Slug, b.Title); err != nil {
			return model.BlogPost{}, err
		}
	}
	b.Summary = patchText(b.Summary, in.Summary)
	if in.Tags != nil {
		b.Tags = normalizeNames(in.Tags)
	}
	if in.PublishedAt != nil {
		b.PublishedAt = in.PublishedAt.TimePtr()
	}
	b.UpdatedAt = s.now().UTC()

	oldKey := b.CoverKey
	var newKey string
	if len(cover) > 0 {
		obj, err := putImage(ctx, s.images, coverFolder, cover, coverMaxDim)
		if err != nil {
			return model.BlogPost{}, err
		}
		b.CoverImage, b.CoverKey = &obj.URL, &obj.Key
		newKey = obj.Key
	} else if in.CoverImage != nil {
		b.CoverImage = optionalText(in.CoverImage)
		b.CoverKey = nil
	}

	if err := s.posts.Update(ctx, b); err != nil {
		discardImage(ctx, s.images, newKey)
		return model.BlogPost{}, contentError("update blog post", "blog post", id, err)
	}
	if oldKey != nil && (b.CoverKey == nil || *b.CoverKey != *oldKey) {
		discardImage(ctx, s.images, *oldKey)
	}
	return b, nil
}

func (s *BlogService) Delete(ctx context.Context, actor model.AuthClaims, id string) error {
	b, err := s.manageable(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return contentError("delete blog post", "blog post", id, err)
	}
	if b.CoverKey != nil {
		discardImage(ctx, s.images, *b.CoverKey)
	}
	return nil
}

func (s *BlogService) manageable(ctx context.Context, actor model.AuthClaims, id string) (model.BlogPost, error) {
	if !isRowID(id) {
		return model.BlogPost{}, apierror.NotFound("blog post", id)
	}
	b, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return model.BlogPost{}, contentError("get blog post", "blog post", id, err)
	}
	if _, err := s.owners.authorize(ctx, actor, b.AuthorID); err != nil {
		return model.BlogPost{}, err
	}
	return b, nil
}
