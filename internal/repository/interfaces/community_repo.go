package interfaces

import (
	"context"

	"socialmarket-backend/internal/model"
)

// CommunityRepository 定义了社区相关的后端数据操作接口
type CommunityRepository interface {
	List(ctx context.Context, page, limit int) ([]*model.Community, int, error)
	GetByID(ctx context.Context, id string) (*model.Community, error)
	Create(ctx context.Context, community *model.Community) error
	Join(ctx context.Context, communityID, userID string) error
	Leave(ctx context.Context, communityID, userID string) error
	Members(ctx context.Context, communityID string, page, limit int) ([]*model.Membership, error)
}
