package interfaces

import (
	"context"

	"socialmarket-backend/internal/model"
)

// MarketplaceRepository 定义了市场商品相关的后端数据操作接口
type MarketplaceRepository interface {
	List(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int, error)
	GetByID(ctx context.Context, id string) (*model.MarketplaceItem, error)
	Create(ctx context.Context, item *model.MarketplaceItem) error
	Update(ctx context.Context, id, sellerID string, upd *model.ItemUpdate) (*model.MarketplaceItem, error)
	SetSold(ctx context.Context, id, sellerID string, sold bool) (*model.MarketplaceItem, error)
	Delete(ctx context.Context, id, sellerID string) error
}
