package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/model"
	"portfolio-api/pkg/apierror"
)

const (
	defaultUserPageSize = 10
	maxUserPageSize     = 100
)

// UserAdminService backs the ADMIN-only user management routes.
type UserAdminService struct {
	store UserStore
	cache cache.Cache
	now   func() time.Time
}

func NewUserAdminService(store UserStore, c cache.Cache, now func() time.Time) *UserAdminService {
	if now == nil {
		now = time.Now
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &UserAdminService{store: store, cache: c, now: now}
}

func (s *UserAdminService) List(ctx context.Context, query model.UserQuery) (model.UserList, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultUserPageSize
	}
	if query.Limit > maxUserPageSize {
		query.Limit = maxUserPageSize
	}
	query.Search = strings.TrimSpace(query.Search)

	users, total, err := s.store.List(ctx, query)
	if err != nil {
		return model.UserList{}, fmt.Errorf("list users: %w", err)
	}

	views := make([]model.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.Public())
	}

	meta := model.NewMeta(query.Page, query.Limit, total)
	return model.UserList{Users: views, Total: total, Page: query.Page, TotalPages: meta.TotalPages}, nil
}

func (s *UserAdminService) Get(ctx context.Context, id string) (model.UserView, error) {
	if !isRowID(id) {
		return model.UserView{}, apierror.NotFound("user", id)
	}
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.UserView{}, apierror.NotFound("user", id)
	}
	if err != nil {
		return model.UserView{}, fmt.Errorf("get user: %w", err)
	}
	return user.Public(), nil
}

func (s *UserAdminService) UpdateRole(ctx context.Context, id string, role string) (model.UserView, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if !model.ValidRole(role) {
		return model.UserView{}, apierror.Validation("role", "Role must be USER or ADMIN")
	}
	if !isRowID(id) {
		return model.UserView{}, apierror.NotFound("user", id)
	}

	if err := s.store.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.UserView{}, apierror.NotFound("user", id)
		}
		return model.UserView{}, fmt.Errorf("update role: %w", err)
	}
	s.invalidate(ctx, id)

	slog.Info("user role updated", "user_id", id, "role", role)
	return s.Get(ctx, id)
}

// Delete soft-deletes a user and revokes their refresh token. Admins cannot
// delete their own account.
func (s *UserAdminService) Delete(ctx context.Context, actorID string, id string) error {
	if actorID == id {
		return apierror.BadRequest("You cannot delete your own account", id)
	}
	if !isRowID(id) {
		return apierror.NotFound("user", id)
	}

	if err := s.store.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return apierror.NotFound("user", id)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.invalidate(ctx, id)

	slog.Info("user deleted", "user_id", id, "actor_id", actorID)
	return nil
}

func (s *UserAdminService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(context.WithoutCancel(ctx), cache.ProfileKey(userID)); err != nil {
		slog.Warn("invalidate profile cache", "user_id", userID, "error", err)
	}
}
