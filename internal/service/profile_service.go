package service

import (
	"context"

	"go.uber.org/zap"

	"socialmarket-backend/internal/cache"
	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/repository/interfaces"
	"socialmarket-backend/internal/util"
)

// ProfileService 处理用户资料的业务逻辑
type ProfileService struct {
	profileRepo interfaces.ProfileRepository
	cache       *cache.Cache
}

// NewProfileService 创建一个新的 ProfileService 实例
func NewProfileService(profileRepo interfaces.ProfileRepository, c *cache.Cache) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, cache: c}
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	key := cache.ProfileKey(id)
	if v, ok := s.cache.Get(key); ok {
		return v.(*model.Profile), nil
	}
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, profile, cache.TTLEntity)
	return profile, nil
}

func (s *ProfileService) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	key := cache.ProfileByUsernameKey(username)
	if v, ok := s.cache.Get(key); ok {
		return v.(*model.Profile), nil
	}
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, profile, cache.TTLEntity)
	return profile, nil
}

// UpdateProfile 更新调用者自己的资料。帖子/商品里嵌入的资料副本
// 不主动失效，靠短TTL自然过期。
func (s *ProfileService) UpdateProfile(ctx context.Context, id string, upd *model.ProfileUpdate) (*model.Profile, error) {
	profile, err := s.profileRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateFamily(cache.FamilyProfiles)
	util.Logger.Info("资料更新成功", zap.String("user_id", id))
	return profile, nil
}

// ProfileServiceInterface 定义资料服务的方法集合
type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, id string, upd *model.ProfileUpdate) (*model.Profile, error)
}

// 确保 ProfileService 实现了 ProfileServiceInterface
var _ ProfileServiceInterface = (*ProfileService)(nil)
