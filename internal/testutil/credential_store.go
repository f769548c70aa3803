package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"portfolio-api/internal/model"
)

// MemoryCredentialStore mirrors the semantics of the Postgres user
// repository: every method is a single atomic step under one mutex.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{users: map[string]model.User{}}
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func live(u model.User) bool { return u.DeletedAt == nil }

func (s *MemoryCredentialStore) Get(id string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *MemoryCredentialStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !live(u) {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryCredentialStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == strings.TrimSpace(email) && live(u) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *MemoryCredentialStore) FindByRefreshTokenHash(_ context.Context, hash string, now time.Time) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.RefreshTokenHash != nil && *u.RefreshTokenHash == hash &&
			u.RefreshTokenExpiry != nil && u.RefreshTokenExpiry.After(now) && live(u) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *MemoryCredentialStore) FindByResetTokenHash(_ context.Context, hash string, now time.Time) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == hash &&
			u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) && live(u) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *MemoryCredentialStore) Create(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return model.ErrUserAlreadyExists
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *MemoryCredentialStore) update(id string, fn func(u *model.User) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !live(u) {
		return false
	}
	if !fn(&u) {
		return false
	}
	s.users[id] = u
	return true
}

func (s *MemoryCredentialStore) SetRefreshToken(_ context.Context, userID string, hash string, expiry time.Time) error {
	if !s.update(userID, func(u *model.User) bool {
		u.RefreshTokenHash, u.RefreshTokenExpiry = strPtr(hash), timePtr(expiry)
		return true
	}) {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *MemoryCredentialStore) RotateRefreshToken(_ context.Context, userID string, oldHash string, newHash string, expiry time.Time) error {
	if !s.update(userID, func(u *model.User) bool {
		if u.RefreshTokenHash == nil || *u.RefreshTokenHash != oldHash {
			return false
		}
		u.RefreshTokenHash, u.RefreshTokenExpiry = strPtr(newHash), timePtr(expiry)
		return true
	}) {
		return model.ErrTokenInvalid
	}
	return nil
}

func (s *MemoryCredentialStore) ClearRefreshToken(_ context.Context, userID string) error {
	if !s.update(userID, func(u *model.User) bool {
		u.RefreshTokenHash, u.RefreshTokenExpiry = nil, nil
		return true
	}) {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *MemoryCredentialStore) SetResetToken(_ context.Context, userID string, hash string, expiry time.Time) error {
	if !s.update(userID, func(u *model.User) bool {
		u.ResetTokenHash, u.ResetTokenExpiry = strPtr(hash), timePtr(expiry)
		return true
	}) {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *MemoryCredentialStore) ClearResetToken(_ context.Context, userID string, tokenHash string) error {
	if !s.update(userID, func(u *model.User) bool {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash {
			return false
		}
		u.ResetTokenHash, u.ResetTokenExpiry = nil, nil
		return true
	}) {
		return model.ErrTokenInvalid
	}
	return nil
}

func (s *MemoryCredentialStore) ResetPassword(_ context.Context, userID string, tokenHash string, passwordHash string, now time.Time) error {
	if !s.update(userID, func(u *model.User) bool {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash ||
			u.ResetTokenExpiry == nil || !u.ResetTokenExpiry.After(now) {
			return false
		}
		u.PasswordHash = passwordHash
		u.ResetTokenHash, u.ResetTokenExpiry = nil, nil
		u.RefreshTokenHash, u.RefreshTokenExpiry = nil, nil
		u.UpdatedAt = now
		return true
	}) {
		return model.ErrTokenInvalid
	}
	return nil
}

func (s *MemoryCredentialStore) UpdateAvatar(_ context.Context, userID string, url string, key string) error {
	if !s.update(userID, func(u *model.User) bool {
		u.AvatarURL, u.AvatarKey = strPtr(url), strPtr(key)
		return true
	}) {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *MemoryCredentialStore) ClearAvatar(_ context.Context, userID string) error {
	if !s.update(userID, func(u *model.User) bool {
		u.AvatarURL, u.AvatarKey = nil, nil
		return true
	}) {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *MemoryCredentialStore) UpdateRole(_ context.Context, userID string, role string) error {
	if !s.update(userID, func(u *model.User) bool {
		u.Role = role
		return true
	}) {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *MemoryCredentialStore) SoftDelete(_ context.Context, userID string, at time.Time) error {
	if !s.update(userID, func(u *model.User) bool {
		u.DeletedAt = timePtr(at)
		u.RefreshTokenHash, u.RefreshTokenExpiry = nil, nil
		return true
	}) {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *MemoryCredentialStore) List(_ context.Context, query model.UserQuery) ([]model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(query.Search))
	matched := make([]model.User, 0)
	for _, u := range s.users {
		if !live(u) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		matched = append(matched, u)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (query.Page - 1) * query.Limit
	if start > total {
		start = total
	}
	end := start + query.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryCredentialStore) UpsertAdmin(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.Email == user.Email {
			u.PasswordHash = user.PasswordHash
			u.Role = model.RoleAdmin
			u.DeletedAt = nil
			s.users[id] = u
			return nil
		}
	}
	user.Role = model.RoleAdmin
	s.users[user.ID] = user
	return nil
}
