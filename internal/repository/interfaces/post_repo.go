package interfaces

import (
	"context"

	"socialmarket-backend/internal/model"
)

// PostRepository 定义了帖子相关的后端数据操作接口
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id, viewerID string) (*model.Post, error)
	List(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error)
	Update(ctx context.Context, id, userID string, upd *model.PostUpdate) (*model.Post, error)
	Delete(ctx context.Context, id, userID string) error
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, likeCount int, err error)
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListComments(ctx context.Context, postID string, page, limit int) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, id, userID string) error
}
