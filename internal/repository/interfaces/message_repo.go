package interfaces

import (
	"context"

	"socialmarket-backend/internal/model"
)

// MessageRepository 定义了私信相关的后端数据操作接口
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error)
	Thread(ctx context.Context, userID, otherUserID string, page, limit int) ([]*model.Message, error)
	MarkRead(ctx context.Context, messageID, receiverID string) (*model.Message, error)
}
