package service

import (
	"context"

	"go.uber.org/zap"

	"socialmarket-backend/internal/cache"
	apperrors "socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/repository/interfaces"
	"socialmarket-backend/internal/util"
)

// MessageService 处理私信的业务逻辑。会话ID由参与双方的用户ID
// 派生，与谁先发起无关。
type MessageService struct {
	messageRepo interfaces.MessageRepository
	cache       *cache.Cache
}

// NewMessageService 创建一个新的 MessageService 实例
func NewMessageService(messageRepo interfaces.MessageRepository, c *cache.Cache) *MessageService {
	return &MessageService{messageRepo: messageRepo, cache: c}
}

func (s *MessageService) SendMessage(ctx context.Context, msg *model.Message) error {
	if msg.SenderID == msg.ReceiverID {
		return apperrors.New(apperrors.ErrValidation, "Cannot send a message to yourself")
	}
	msg.ConversationID = model.ConversationID(msg.SenderID, msg.ReceiverID)
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyMessages)
	util.Logger.Info("私信发送成功", zap.String("conversation_id", msg.ConversationID))
	return nil
}

func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	key := cache.ConversationListKey(userID)
	if v, ok := s.cache.Get(key); ok {
		return v.([]*model.Conversation), nil
	}
	conversations, err := s.messageRepo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, conversations, cache.TTLDynamic)
	return conversations, nil
}

func (s *MessageService) GetThread(ctx context.Context, userID, otherUserID string, page, limit int) ([]*model.Message, error) {
	conversationID := model.ConversationID(userID, otherUserID)
	key := cache.ThreadKey(conversationID, page, limit)
	if v, ok := s.cache.Get(key); ok {
		return v.([]*model.Message), nil
	}
	messages, err := s.messageRepo.Thread(ctx, userID, otherUserID, page, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, messages, cache.TTLDynamic)
	return messages, nil
}

func (s *MessageService) MarkRead(ctx context.Context, messageID, receiverID string) (*model.Message, error) {
	msg, err := s.messageRepo.MarkRead(ctx, messageID, receiverID)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateFamily(cache.FamilyMessages)
	return msg, nil
}

// MessageServiceInterface 定义私信服务的方法集合
type MessageServiceInterface interface {
	SendMessage(ctx context.Context, msg *model.Message) error
	ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error)
	GetThread(ctx context.Context, userID, otherUserID string, page, limit int) ([]*model.Message, error)
	MarkRead(ctx context.Context, messageID, receiverID string) (*model.Message, error)
}

// 确保 MessageService 实现了 MessageServiceInterface
var _ MessageServiceInterface = (*MessageService)(nil)
