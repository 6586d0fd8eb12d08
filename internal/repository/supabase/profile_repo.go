package supabase

import (
	"context"
	"net/http"

	apperrors "socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/model"
	sb "socialmarket-backend/internal/supabase"
)

// ProfileRepository 用户资料存储库的 PostgREST 实现
type ProfileRepository struct {
	client *sb.Client
}

func NewProfileRepository(client *sb.Client) *ProfileRepository {
	return &ProfileRepository{client}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return r.getOne(ctx, "id", id)
}

func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return r.getOne(ctx, "username", username)
}

func (r *ProfileRepository) getOne(ctx context.Context, column, value string) (*model.Profile, error) {
	resp, err := r.client.From("profiles").
		Select("*").
		Eq(column, value).
		Single().
		Execute(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get profile", err)
	}
	if resp.StatusCode == http.StatusNotAcceptable || resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.New(apperrors.ErrProfileNotFound, "Profile not found")
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get profile", err)
	}

	var profile model.Profile
	if err := resp.JSON(&profile); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get profile", err)
	}
	return &profile, nil
}

// Update 只更新调用者自己的资料行，id 即认证身份
func (r *ProfileRepository) Update(ctx context.Context, id string, upd *model.ProfileUpdate) (*model.Profile, error) {
	resp, err := r.client.From("profiles").
		Select("*").
		Eq("id", id).
		Update(ctx, upd)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to update profile", err)
	}
	if resp.StatusCode == http.StatusConflict {
		return nil, apperrors.New(apperrors.ErrResourceExists, "Username already taken")
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to update profile", err)
	}

	var rows []model.Profile
	if err := resp.JSON(&rows); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to update profile", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.New(apperrors.ErrProfileNotFound, "Profile not found")
	}
	return &rows[0], nil
}
