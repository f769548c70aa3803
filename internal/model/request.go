package model

import (
	"encoding/json"
	"strings"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Date accepts either a calendar date (2006-01-02) or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.DateOnly, raw); err == nil {
		d.Time = parsed.UTC()
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return err
	}
	d.Time = parsed.UTC()
	return nil
}

// TimePtr returns nil for an absent or empty date.
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type ProfileInput struct {
	Slug         *string `json:"slug"`
	FullName     *string `json:"fullName"`
	Headline     *string `json:"headline"`
	Location     *string `json:"location"`
	LocationLink *string `json:"locationLink"`
	ShortBio     *string `json:"shortBio"`
	Email        *string `json:"email"`
	Telephone    *string `json:"telephone"`
}

type ProjectInput struct {
	Title        *string  `json:"title"`
	Slug         *string  `json:"slug"`
	Description  *string  `json:"description"`
	WebsiteURL   *string  `json:"websiteUrl"`
	RepoURL      *string  `json:"repoUrl"`
	VideoURL     *string  `json:"videoUrl"`
	ImageURL     *string  `json:"imageUrl"`
	Technologies []string `json:"technologies"`
	StartDate    *Date    `json:"startDate"`
	EndDate      *Date    `json:"endDate"`
	IsActive     *bool    `json:"isActive"`
	IsFeatured   *bool    `json:"isFeatured"`
	ProfileID    *string  `json:"profileId"`
}

type SkillInput struct {
	Name     string  `json:"name"`
	Category *string `json:"category"`
}

type EducationInput struct {
	Institution *string `json:"institution"`
	Degree      *string `json:"degree"`
	LogoURL     *string `json:"logoUrl"`
	StartDate   *Date   `json:"startDate"`
	EndDate     *Date   `json:"endDate"`
	ProfileID   *string `json:"profileId"`
}

type WorkExperienceInput struct {
	Company     *string `json:"company"`
	Position    *string `json:"position"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
	StartDate   *Date   `json:"startDate"`
	EndDate     *Date   `json:"endDate"`
	ProfileID   *string `json:"profileId"`
}

type SocialLinkInput struct {
	Platform  *string `json:"platform"`
	URL       *string `json:"url"`
	Icon      *string `json:"icon"`
	Navbar    *bool   `json:"navbar"`
	SortOrder *int    `json:"sortOrder"`
	ProfileID *string `json:"profileId"`
}

type BlogPostInput struct {
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug"`
	Content     *string  `json:"content"`
	Summary     *string  `json:"summary"`
	CoverImage  *string  `json:"coverImage"`
	Tags        []string `json:"tags"`
	PublishedAt *Date    `json:"publishedAt"`
}
