package model

import "time"

type Profile struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	FullName     string    `json:"fullName"`
	Headline     *string   `json:"headline"`
	Location     *string   `json:"location"`
	LocationLink *string   `json:"locationLink"`
	AvatarURL    *string   `json:"avatarUrl"`
	AvatarKey    *string   `json:"-"`
	ShortBio     *string   `json:"shortBio"`
	Email        *string   `json:"email"`
	Telephone    *string   `json:"telephone"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileDetail is the public portfolio page payload.
type ProfileDetail struct {
	Profile
	SocialLinks    []SocialLink     `json:"socialLinks"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
	Projects       []Project        `json:"projects"`
	Skills         []ProfileSkill   `json:"profileSkills"`
}

type Skill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  *string   `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProfileSkill struct {
	Skill     Skill `json:"skill"`
	SortOrder int   `json:"sortOrder"`
}

type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	WebsiteURL  *string    `json:"websiteUrl"`
	RepoURL     *string    `json:"repoUrl"`
	VideoURL    *string    `json:"videoUrl"`
	ImageURL    *string    `json:"imageUrl"`
	ImageKey    *string    `json:"-"`
	Tags        []string   `json:"tags"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	IsActive    bool       `json:"isActive"`
	IsFeatured  bool       `json:"isFeatured"`
	ProfileID   *string    `json:"profileId"`
	Skills      []Skill    `json:"skills"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type ProjectFilter struct {
	Featured bool
	Active   bool
}

type Education struct {
	ID          string     `json:"id"`
	Institution string     `json:"institution"`
	Degree      string     `json:"degree"`
	LogoURL     *string    `json:"logoUrl"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	ProfileID   string     `json:"profileId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type WorkExperience struct {
	ID          string     `json:"id"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Location    *string    `json:"location"`
	Website     *string    `json:"website"`
	Description *string    `json:"description"`
	LogoURL     *string    `json:"logoUrl"`
	LogoKey     *string    `json:"-"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	ProfileID   string     `json:"profileId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type SocialLink struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	URL       string    `json:"url"`
	Icon      *string   `json:"icon"`
	Navbar    bool      `json:"navbar"`
	SortOrder int       `json:"sortOrder"`
	ProfileID string    `json:"profileId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BlogAuthor struct {
	FullName  string  `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
}

type BlogPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Summary     *string    `json:"summary"`
	CoverImage  *string    `json:"coverImage"`
	CoverKey    *string    `json:"-"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"publishedAt"`
	AuthorID    string     `json:"authorId"`
	Author      BlogAuthor `json:"author"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
