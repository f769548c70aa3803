package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/event"
	"portfolio-api/internal/model"
	"portfolio-api/internal/storage"
	"portfolio-api/pkg/apierror"
)

const (
	avatarFolder = "avatars"
	avatarMaxDim = 512
)

type UserService struct {
	store    UserStore
	cache    cache.Cache
	cacheTTL time.Duration
	images   storage.ImageStore
	bus      event.Bus
	now      func() time.Time
}

func NewUserService(store UserStore, c cache.Cache, cacheTTL time.Duration, images storage.ImageStore, bus event.Bus, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &UserService{store: store, cache: c, cacheTTL: cacheTTL, images: images, bus: bus, now: now}
}

func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.UserView, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if err := validateName(name); err != nil {
		return model.UserView{}, err
	}
	if err := validateEmail(email); err != nil {
		return model.UserView{}, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return model.UserView{}, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return model.UserView{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.UserView{}, apierror.Conflict("User with this email already exists", email)
		}
		return model.UserView{}, fmt.Errorf("register: %w", err)
	}

	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeUserRegistered, user.ID, event.UserRegistered{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
		}))
	}

	slog.Info("user registered", "user_id", user.ID)
	return user.Public(), nil
}

// Profile is a read-through lookup. hit reports whether the cache answered.
func (s *UserService) Profile(ctx context.Context, userID string) (view model.UserView, hit bool, err error) {
	key := cache.ProfileKey(userID)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("profile cache read failed", "user_id", userID, "error", err)
	}
	if ok && json.Unmarshal(raw, &view) == nil {
		return view, true, nil
	}

	user, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.UserView{}, false, apierror.NotFound("user", userID)
	}
	if err != nil {
		return model.UserView{}, false, fmt.Errorf("profile: %w", err)
	}

	view = user.Public()
	if encoded, err := json.Marshal(view); err == nil {
		if err := s.cache.Set(ctx, key, encoded, s.cacheTTL); err != nil {
			slog.Warn("profile cache write failed", "user_id", userID, "error", err)
		}
	}
	return view, false, nil
}

// UploadAvatar stores a normalised copy of data and replaces any previous
// avatar.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, data []byte) (model.UserView, error) {
	user, err := s.findLive(ctx, userID)
	if err != nil {
		return model.UserView{}, err
	}

	obj, err := putImage(ctx, s.images, avatarFolder, data, avatarMaxDim)
	if err != nil {
		return model.UserView{}, err
	}

	if err := s.store.UpdateAvatar(ctx, user.ID, obj.URL, obj.Key); err != nil {
		discardImage(ctx, s.images, obj.Key)
		return model.UserView{}, fmt.Errorf("update avatar: %w", err)
	}

	if user.AvatarKey != nil {
		discardImage(ctx, s.images, *user.AvatarKey)
	}
	s.invalidate(ctx, user.ID)

	user.AvatarURL, user.AvatarKey = &obj.URL, &obj.Key
	return user.Public(), nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	user, err := s.findLive(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarURL == nil {
		return apierror.NotFound("avatar", userID)
	}

	if err := s.store.ClearAvatar(ctx, user.ID); err != nil {
		return fmt.Errorf("clear avatar: %w", err)
	}
	if user.AvatarKey != nil {
		discardImage(ctx, s.images, *user.AvatarKey)
	}
	s.invalidate(ctx, user.ID)
	return nil
}

// SeedAdmin creates the configured administrator, or resets its password and
// role when the email already exists. It returns the stored account.
func (s *UserService) SeedAdmin(ctx context.Context, name string, email string, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return model.User{}, fmt.Errorf("seed admin: %w", err)
	}
	if err := validatePassword("ADMIN_PASSWORD", password); err != nil {
		return model.User{}, fmt.Errorf("seed admin: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	err = s.store.UpsertAdmin(ctx, model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("seed admin: %w", err)
	}

	admin, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return model.User{}, fmt.Errorf("seed admin: %w", err)
	}

	slog.Info("admin user ensured", "email", email)
	return admin, nil
}

func (s *UserService) findLive(ctx context.Context, userID string) (model.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, apierror.NotFound("user", userID)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *UserService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(context.WithoutCancel(ctx), cache.ProfileKey(userID)); err != nil {
		slog.Warn("invalidate profile cache", "user_id", userID, "error", err)
	}
}
