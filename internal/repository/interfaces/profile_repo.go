package interfaces

import (
	"context"

	"socialmarket-backend/internal/model"
)

// ProfileRepository 定义了用户资料相关的后端数据操作接口
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	Update(ctx context.Context, id string, upd *model.ProfileUpdate) (*model.Profile, error)
}
