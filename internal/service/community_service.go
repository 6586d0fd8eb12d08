package service

import (
	"context"

	"go.uber.org/zap"

	"socialmarket-backend/internal/cache"
	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/repository/interfaces"
	"socialmarket-backend/internal/util"
)

// CommunityService 处理社区与成员关系的业务逻辑
type CommunityService struct {
	communityRepo interfaces.CommunityRepository
	cache         *cache.Cache
}

// NewCommunityService 创建一个新的 CommunityService 实例
func NewCommunityService(communityRepo interfaces.CommunityRepository, c *cache.Cache) *CommunityService {
	return &CommunityService{communityRepo: communityRepo, cache: c}
}

type communityListPage struct {
	Communities []*model.Community
	Total       int
}

func (s *CommunityService) ListCommunities(ctx context.Context, page, limit int) ([]*model.Community, int, error) {
	key := cache.CommunityListKey(page, limit)
	if v, ok := s.cache.Get(key); ok {
		cached := v.(communityListPage)
		return cached.Communities, cached.Total, nil
	}
	communities, total, err := s.communityRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	s.cache.Set(key, communityListPage{Communities: communities, Total: total}, cache.TTLList)
	return communities, total, nil
}

func (s *CommunityService) GetCommunity(ctx context.Context, id string) (*model.Community, error) {
	key := cache.CommunityKey(id)
	if v, ok := s.cache.Get(key); ok {
		return v.(*model.Community), nil
	}
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, community, cache.TTLEntity)
	return community, nil
}

func (s *CommunityService) CreateCommunity(ctx context.Context, community *model.Community) error {
	if err := s.communityRepo.Create(ctx, community); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyCommunities)
	util.Logger.Info("社区创建成功", zap.String("community_id", community.ID), zap.String("name", community.Name))
	return nil
}

func (s *CommunityService) JoinCommunity(ctx context.Context, communityID, userID string) error {
	if err := s.communityRepo.Join(ctx, communityID, userID); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyCommunities)
	return nil
}

func (s *CommunityService) LeaveCommunity(ctx context.Context, communityID, userID string) error {
	if err := s.communityRepo.Leave(ctx, communityID, userID); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyCommunities)
	return nil
}

func (s *CommunityService) ListMembers(ctx context.Context, communityID string, page, limit int) ([]*model.Membership, error) {
	key := cache.MemberListKey(communityID, page, limit)
	if v, ok := s.cache.Get(key); ok {
		return v.([]*model.Membership), nil
	}
	members, err := s.communityRepo.Members(ctx, communityID, page, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, members, cache.TTLList)
	return members, nil
}

// CommunityServiceInterface 定义社区服务的方法集合
type CommunityServiceInterface interface {
	ListCommunities(ctx context.Context, page, limit int) ([]*model.Community, int, error)
	GetCommunity(ctx context.Context, id string) (*model.Community, error)
	CreateCommunity(ctx context.Context, community *model.Community) error
	JoinCommunity(ctx context.Context, communityID, userID string) error
	LeaveCommunity(ctx context.Context, communityID, userID string) error
	ListMembers(ctx context.Context, communityID string, page, limit int) ([]*model.Membership, error)
}

// 确保 CommunityService 实现了 CommunityServiceInterface
var _ CommunityServiceInterface = (*CommunityService)(nil)
