package testutil

import (
	"context"
	"sort"
	"sync"

	"portfolio-api/internal/model"
)

// records is the shared core of the in-memory content stores. conflict
// callbacks run under the lock so uniqueness checks and writes are atomic.
type records[T any] struct {
	mu    sync.Mutex
	rows  map[string]T
	order map[string]int
	next  int
}

func newRecords[T any]() *records[T] {
	return &records[T]{rows: map[string]T{}, order: map[string]int{}}
}

func (r *records[T]) get(id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok {
		var zero T
		return zero, model.ErrNotFound
	}
	return v, nil
}

func (r *records[T]) find(match func(T) bool) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.rows {
		if match(v) {
			return v, nil
		}
	}
	var zero T
	return zero, model.ErrNotFound
}

func (r *records[T]) insert(id string, v T, conflict func(T) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; ok {
		return model.ErrAlreadyExists
	}
	for _, existing := range r.rows {
		if conflict != nil && conflict(existing) {
			return model.ErrAlreadyExists
		}
	}
	r.rows[id] = v
	r.order[id] = r.next
	r.next++
	return nil
}

func (r *records[T]) replace(id string, v T, conflict func(T) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return model.ErrNotFound
	}
	for otherID, existing := range r.rows {
		if otherID != id && conflict != nil && conflict(existing) {
			return model.ErrAlreadyExists
		}
	}
	r.rows[id] = v
	return nil
}

func (r *records[T]) remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.rows, id)
	delete(r.order, id)
	return nil
}

// list returns matching rows, most recently inserted first.
func (r *records[T]) list(keep func(T) bool) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.rows))
	for id, v := range r.rows {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return r.order[ids[i]] > r.order[ids[j]] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.rows[id])
	}
	return out
}

func (r *records[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type MemoryProfileStore struct {
	*records[model.Profile]
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{records: newRecords[model.Profile]()}
}

func (s *MemoryProfileStore) FindByID(_ context.Context, id string) (model.Profile, error) {
	return s.get(id)
}

func (s *MemoryProfileStore) FindBySlug(_ context.Context, slug string) (model.Profile, error) {
	return s.find(func(p model.Profile) bool { return p.Slug == slug })
}

func (s *MemoryProfileStore) FindByUserID(_ context.Context, userID string) (model.Profile, error) {
	return s.find(func(p model.Profile) bool { return p.UserID == userID })
}

// Detail returns the profile with empty collections.
func (s *MemoryProfileStore) Detail(ctx context.Context, slug string) (model.ProfileDetail, error) {
	p, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return model.ProfileDetail{}, err
	}
	return model.ProfileDetail{
		Profile:        p,
		SocialLinks:    []model.SocialLink{},
		WorkExperience: []model.WorkExperience{},
		Education:      []model.Education{},
		Projects:       []model.Project{},
		Skills:         []model.ProfileSkill{},
	}, nil
}

func (s *MemoryProfileStore) Create(_ context.Context, p model.Profile) error {
	return s.insert(p.ID, p, func(e model.Profile) bool { return e.Slug == p.Slug || e.UserID == p.UserID })
}

func (s *MemoryProfileStore) Update(_ context.Context, p model.Profile) error {
	return s.replace(p.ID, p, func(e model.Profile) bool { return e.Slug == p.Slug })
}

func (s *MemoryProfileStore) Delete(_ context.Context, id string) error {
	return s.remove(id)
}

type MemorySkillStore struct {
	*records[model.Skill]
}

func NewMemorySkillStore() *MemorySkillStore {
	return &MemorySkillStore{records: newRecords[model.Skill]()}
}

func (s *MemorySkillStore) List(context.Context) ([]model.Skill, error) {
	skills := s.list(nil)
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills, nil
}

func (s *MemorySkillStore) Create(_ context.Context, sk model.Skill) error {
	return s.insert(sk.ID, sk, func(e model.Skill) bool { return e.Name == sk.Name })
}

// MemoryProjectStore keeps linked skill names instead of skill rows.
type MemoryProjectStore struct {
	*records[model.Project]
}

func NewMemoryProjectStore() *MemoryProjectStore {
	return &MemoryProjectStore{records: newRecords[model.Project]()}
}

func (s *MemoryProjectStore) List(_ context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	return s.list(func(p model.Project) bool {
		return (!filter.Featured || p.IsFeatured) && (!filter.Active || p.IsActive)
	}), nil
}

func (s *MemoryProjectStore) FindByID(_ context.Context, id string) (model.Project, error) {
	return s.get(id)
}

func linkSkills(p model.Project, technologies []string) model.Project {
	p.Skills = make([]model.Skill, 0, len(technologies))
	for _, name := range technologies {
		p.Skills = append(p.Skills, model.Skill{ID: name, Name: name})
	}
	return p
}

func (s *MemoryProjectStore) Create(_ context.Context, p model.Project, technologies []string) error {
	p = linkSkills(p, technologies)
	return s.insert(p.ID, p, func(e model.Project) bool { return e.Slug == p.Slug })
}

func (s *MemoryProjectStore) Update(_ context.Context, p model.Project, technologies []string) error {
	if technologies != nil {
		p = linkSkills(p, technologies)
	}
	return s.replace(p.ID, p, func(e model.Project) bool { return e.Slug == p.Slug })
}

func (s *MemoryProjectStore) Delete(_ context.Context, id string) error {
	return s.remove(id)
}

type MemoryEducationStore struct {
	*records[model.Education]
}

func NewMemoryEducationStore() *MemoryEducationStore {
	return &MemoryEducationStore{records: newRecords[model.Education]()}
}

func (s *MemoryEducationStore) List(_ context.Context, profileID string) ([]model.Education, error) {
	items := s.list(func(e model.Education) bool { return profileID == "" || e.ProfileID == profileID })
	sort.SliceStable(items, func(i, j int) bool { return items[i].StartDate.After(items[j].StartDate) })
	return items, nil
}

func (s *MemoryEducationStore) FindByID(_ context.Context, id string) (model.Education, error) {
	return s.get(id)
}

func (s *MemoryEducationStore) Create(_ context.Context, e model.Education) error {
	return s.insert(e.ID, e, nil)
}

func (s *MemoryEducationStore) Update(_ context.Context, e model.Education) error {
	return s.replace(e.ID, e, nil)
}

func (s *MemoryEducationStore) Delete(_ context.Context, id string) error {
	return s.remove(id)
}

type MemoryWorkExperienceStore struct {
	*records[model.WorkExperience]
}

func NewMemoryWorkExperienceStore() *MemoryWorkExperienceStore {
	return &MemoryWorkExperienceStore{records: newRecords[model.WorkExperience]()}
}

func (s *MemoryWorkExperienceStore) List(_ context.Context, profileID string) ([]model.WorkExperience, error) {
	items := s.list(func(w model.WorkExperience) bool { return profileID == "" || w.ProfileID == profileID })
	sort.SliceStable(items, func(i, j int) bool { return items[i].StartDate.After(items[j].StartDate) })
	return items, nil
}

func (s *MemoryWorkExperienceStore) FindByID(_ context.Context, id string) (model.WorkExperience, error) {
	return s.get(id)
}

func (s *MemoryWorkExperienceStore) Create(_ context.Context, w model.WorkExperience) error {
	return s.insert(w.ID, w, nil)
}

func (s *MemoryWorkExperienceStore) Update(_ context.Context, w model.WorkExperience) error {
	return s.replace(w.ID, w, nil)
}

func (s *MemoryWorkExperienceStore) Delete(_ context.Context, id string) error {
	return s.remove(id)
}

type MemorySocialLinkStore struct {
	*records[model.SocialLink]
}

func NewMemorySocialLinkStore() *MemorySocialLinkStore {
	return &MemorySocialLinkStore{records: newRecords[model.SocialLink]()}
}

func (s *MemorySocialLinkStore) List(_ context.Context, profileID string) ([]model.SocialLink, error) {
	links := s.list(func(l model.SocialLink) bool { return profileID == "" || l.ProfileID == profileID })
	sort.SliceStable(links, func(i, j int) bool { return links[i].SortOrder < links[j].SortOrder })
	return links, nil
}

func (s *MemorySocialLinkStore) FindByID(_ context.Context, id string) (model.SocialLink, error) {
	return s.get(id)
}

func (s *MemorySocialLinkStore) Create(_ context.Context, l model.SocialLink) error {
	return s.insert(l.ID, l, nil)
}

func (s *MemorySocialLinkStore) Update(_ context.Context, l model.SocialLink) error {
	return s.replace(l.ID, l, nil)
}

func (s *MemorySocialLinkStore) Delete(_ context.Context, id string) error {
	return s.remove(id)
}

type MemoryBlogStore struct {
	*records[model.BlogPost]
}

func NewMemoryBlogStore() *MemoryBlogStore {
	return &MemoryBlogStore{records: newRecords[model.BlogPost]()}
}

func (s *MemoryBlogStore) List(_ context.Context, publishedOnly bool) ([]model.BlogPost, error) {
	return s.list(func(b model.BlogPost) bool { return !publishedOnly || b.PublishedAt != nil }), nil
}

func (s *MemoryBlogStore) FindBySlug(_ context.Context, slug string) (model.BlogPost, error) {
	return s.find(func(b model.BlogPost) bool { return b.Slug == slug })
}

func (s *MemoryBlogStore) FindByID(_ context.Context, id string) (model.BlogPost, error) {
	return s.get(id)
}

func (s *MemoryBlogStore) Create(_ context.Context, b model.BlogPost) error {
	return s.insert(b.ID, b, func(e model.BlogPost) bool { return e.Slug == b.Slug })
}

func (s *MemoryBlogStore) Update(_ context.Context, b model.BlogPost) error {
	return s.replace(b.ID, b, func(e model.BlogPost) bool { return e.Slug == b.Slug })
}

func (s *MemoryBlogStore) Delete(_ context.Context, id string) error {
	return s.remove(id)
}
