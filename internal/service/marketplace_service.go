package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"socialmarket-backend/internal/cache"
	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/repository/interfaces"
	"socialmarket-backend/internal/util"
)

// MarketplaceService 处理商品的业务逻辑
type MarketplaceService struct {
	itemRepo interfaces.MarketplaceRepository
	cache    *cache.Cache
}

// NewMarketplaceService 创建一个新的 MarketplaceService 实例
func NewMarketplaceService(itemRepo interfaces.MarketplaceRepository, c *cache.Cache) *MarketplaceService {
	return &MarketplaceService{itemRepo: itemRepo, cache: c}
}

type itemListPage struct {
	Items []*model.MarketplaceItem
	Total int
}

func (s *MarketplaceService) ListItems(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int, error) {
	key := cache.ItemListKey(filterKey(filter))
	if v, ok := s.cache.Get(key); ok {
		page := v.(itemListPage)
		return page.Items, page.Total, nil
	}
	items, total, err := s.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	s.cache.Set(key, itemListPage{Items: items, Total: total}, cache.TTLList)
	return items, total, nil
}

// filterKey 把筛选条件编码进缓存键，不同筛选互不串页
func filterKey(f model.ItemFilter) string {
	minPrice, maxPrice := "", ""
	if f.MinPrice != nil {
		minPrice = fmt.Sprintf("%g", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		maxPrice = fmt.Sprintf("%g", *f.MaxPrice)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s:%t:%s:%d:%d",
		f.Category, f.Condition, minPrice, maxPrice, f.Search,
		f.SortBy, f.SortOrder, f.IncludeSold, f.SellerID, f.Page, f.Limit)
}

func (s *MarketplaceService) GetItem(ctx context.Context, id string) (*model.MarketplaceItem, error) {
	key := cache.ItemKey(id)
	if v, ok := s.cache.Get(key); ok {
		return v.(*model.MarketplaceItem), nil
	}
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, item, cache.TTLEntity)
	return item, nil
}

// MyItems 卖家视角的商品列表，含已售出的
func (s *MarketplaceService) MyItems(ctx context.Context, sellerID string, page, limit int) ([]*model.MarketplaceItem, int, error) {
	return s.ListItems(ctx, model.ItemFilter{
		SellerID:    sellerID,
		IncludeSold: true,
		Page:        page,
		Limit:       limit,
	})
}

func (s *MarketplaceService) CreateItem(ctx context.Context, item *model.MarketplaceItem) error {
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyMarketplace)
	util.Logger.Info("商品发布成功", zap.String("item_id", item.ID), zap.String("category", item.Category))
	return nil
}

func (s *MarketplaceService) UpdateItem(ctx context.Context, id, sellerID string, upd *model.ItemUpdate) (*model.MarketplaceItem, error) {
	item, err := s.itemRepo.Update(ctx, id, sellerID, upd)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateFamily(cache.FamilyMarketplace)
	return item, nil
}

func (s *MarketplaceService) SetSold(ctx context.Context, id, sellerID string, sold bool) (*model.MarketplaceItem, error) {
	item, err := s.itemRepo.SetSold(ctx, id, sellerID, sold)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateFamily(cache.FamilyMarketplace)
	util.Logger.Info("商品售出状态变更", zap.String("item_id", id), zap.Bool("sold", sold))
	return item, nil
}

func (s *MarketplaceService) DeleteItem(ctx context.Context, id, sellerID string) error {
	if err := s.itemRepo.Delete(ctx, id, sellerID); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyMarketplace)
	return nil
}

// MarketplaceServiceInterface 定义商品服务的方法集合
type MarketplaceServiceInterface interface {
	ListItems(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int, error)
	GetItem(ctx context.Context, id string) (*model.MarketplaceItem, error)
	MyItems(ctx context.Context, sellerID string, page, limit int) ([]*model.MarketplaceItem, int, error)
	CreateItem(ctx context.Context, item *model.MarketplaceItem) error
	UpdateItem(ctx context.Context, id, sellerID string, upd *model.ItemUpdate) (*model.MarketplaceItem, error)
	SetSold(ctx context.Context, id, sellerID string, sold bool) (*model.MarketplaceItem, error)
	DeleteItem(ctx context.Context, id, sellerID string) error
}

// 确保 MarketplaceService 实现了 MarketplaceServiceInterface
var _ MarketplaceServiceInterface = (*MarketplaceService)(nil)
