package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"socialmarket-backend/internal/cache"
	apperrors "socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/repository/interfaces"
)

// MockMessageRepository 是 MessageRepository 的模拟实现
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Conversation), args.Error(1)
}

func (m *MockMessageRepository) Thread(ctx context.Context, userID, otherUserID string, page, limit int) ([]*model.Message, error) {
	args := m.Called(ctx, userID, otherUserID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, messageID, receiverID string) (*model.Message, error) {
	args := m.Called(ctx, messageID, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

// 确保 MockMessageRepository 实现了 MessageRepository
var _ interfaces.MessageRepository = (*MockMessageRepository)(nil)

// TestSendMessageDerivesConversation 发送前派生会话ID
func TestSendMessageDerivesConversation(t *testing.T) {
	mockRepo := new(MockMessageRepository)
	c := cache.New(0)
	defer c.Stop()
	svc := NewMessageService(mockRepo, c)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Message")).Return(nil)

	msg := &model.Message{SenderID: "bob", ReceiverID: "alice", Content: "hi"}
	err := svc.SendMessage(context.Background(), msg)

	assert.NoError(t, err)
	assert.Equal(t, "alice_bob", msg.ConversationID)
	mockRepo.AssertExpectations(t)
}

// TestSendMessageToSelf 不允许给自己发私信
func TestSendMessageToSelf(t *testing.T) {
	mockRepo := new(MockMessageRepository)
	c := cache.New(0)
	defer c.Stop()
	svc := NewMessageService(mockRepo, c)

	msg := &model.Message{SenderID: "alice", ReceiverID: "alice", Content: "hi"}
	err := svc.SendMessage(context.Background(), msg)

	assert.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestThreadCached 线程读取走缓存，发送后失效
func TestThreadCached(t *testing.T) {
	mockRepo := new(MockMessageRepository)
	c := cache.New(0)
	defer c.Stop()
	svc := NewMessageService(mockRepo, c)

	mockRepo.On("Thread", mock.Anything, "alice", "bob", 1, 50).
		Return([]*model.Message{{ID: "m1"}}, nil).Twice()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Message")).Return(nil)

	_, err := svc.GetThread(context.Background(), "alice", "bob", 1, 50)
	assert.NoError(t, err)
	_, err = svc.GetThread(context.Background(), "alice", "bob", 1, 50)
	assert.NoError(t, err)
	mockRepo.AssertNumberOfCalls(t, "Thread", 1)

	err = svc.SendMessage(context.Background(), &model.Message{SenderID: "alice", ReceiverID: "bob", Content: "yo"})
	assert.NoError(t, err)

	_, err = svc.GetThread(context.Background(), "alice", "bob", 1, 50)
	assert.NoError(t, err)
	mockRepo.AssertNumberOfCalls(t, "Thread", 2)
}
