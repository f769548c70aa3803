package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"portfolio-api/internal/model"
	"portfolio-api/pkg/apierror"
)

// ownership decides who may write profile-scoped content: the user that owns
// the profile, or any ADMIN.
type ownership struct {
	profiles ProfileStore
}

func canManage(actor model.AuthClaims, ownerID string) bool {
	return actor.Role == model.RoleAdmin || (actor.UserID != "" && actor.UserID == ownerID)
}

// resolve returns the profile a write targets: the requested one, or the
// caller's own profile when none is named.
func (o ownership) resolve(ctx context.Context, actor model.AuthClaims, requested *string) (model.Profile, error) {
	if requested == nil || strings.TrimSpace(*requested) == "" {
		p, err := o.profiles.FindByUserID(ctx, actor.UserID)
		if errors.Is(err, model.ErrNotFound) {
			return model.Profile{}, apierror.BadRequest("Profile not found for user", actor.UserID)
		}
		if err != nil {
			return model.Profile{}, fmt.Errorf("find caller profile: %w", err)
		}
		return p, nil
	}

	return o.target(ctx, actor, *requested)
}

// target authorizes a client-supplied profile ID.
func (o ownership) target(ctx context.Context, actor model.AuthClaims, profileID string) (model.Profile, error) {
	profileID = strings.TrimSpace(profileID)
	if !isRowID(profileID) {
		return model.Profile{}, apierror.Validation("profileId", "Profile not found")
	}
	return o.authorize(ctx, actor, profileID)
}

// isRowID reports whether id is a canonical UUID. Every row key is one, so
// any other value cannot match a row and must not reach the database.
func isRowID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// authorize checks that actor may write content belonging to profileID.
func (o ownership) authorize(ctx context.Context, actor model.AuthClaims, profileID string) (model.Profile, error) {
	p, err := o.profiles.FindByID(ctx, profileID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, apierror.Validation("profileId", "Profile not found")
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("find profile: %w", err)
	}
	if !canManage(actor, p.UserID) {
		return model.Profile{}, model.ErrForbidden
	}
	return p, nil
}

// contentError turns a content store error into its client-facing shape.
func contentError(op string, resource string, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotFound):
		return apierror.NotFound(resource, id)
	case errors.Is(err, model.ErrAlreadyExists):
		return apierror.Conflict(resource+" already exists", id)
	case errors.Is(err, model.ErrInvalidInput):
		return apierror.BadRequest("Invalid reference", id)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
