package supabase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/model"
	sb "socialmarket-backend/internal/supabase"
)

// 会话列表一次扫描的最近消息上限。这是一个近似：最新消息落在窗口外的
// 会话不会出现在列表里，未读计数也只统计窗口内的消息。
const conversationScanLimit = 200

// MessageRepository 私信存储库的 PostgREST 实现
type MessageRepository struct {
	client *sb.Client
}

func NewMessageRepository(client *sb.Client) *MessageRepository {
	return &MessageRepository{client}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	payload := map[string]any{
		"sender_id":       msg.SenderID,
		"receiver_id":     msg.ReceiverID,
		"content":         msg.Content,
		"conversation_id": msg.ConversationID,
	}
	if msg.ItemID != nil {
		payload["item_id"] = *msg.ItemID
	}

	resp, err := r.client.From("messages").Select("*").Insert(ctx, payload)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to send message", err)
	}
	if err := resp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to send message", err)
	}

	var rows []model.Message
	if err := resp.JSON(&rows); err != nil || len(rows) == 0 {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to send message", err)
	}
	*msg = rows[0]
	return nil
}

// ListConversations 拉取该用户最近的消息流，在内存里按会话折叠：
// 每个会话保留最新一条，未读数只统计发给自己的未读行。
func (r *MessageRepository) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	resp, err := r.client.From("messages").
		Select("*").
		Or(fmt.Sprintf("(sender_id.eq.%s,receiver_id.eq.%s)", userID, userID)).
		Order("created_at", false).
		Limit(conversationScanLimit).
		Execute(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to list conversations", err)
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to list conversations", err)
	}

	var messages []*model.Message
	if err := resp.JSON(&messages); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to list conversations", err)
	}

	byID := make(map[string]*model.Conversation)
	order := make([]string, 0)
	for _, m := range messages {
		conv, ok := byID[m.ConversationID]
		if !ok {
			other := m.SenderID
			if other == userID {
				other = m.ReceiverID
			}
			conv = &model.Conversation{
				ConversationID: m.ConversationID,
				OtherUserID:    other,
				LastMessage:    m, // 倒序扫描，首条即最新
			}
			byID[m.ConversationID] = conv
			order = append(order, m.ConversationID)
		}
		if m.ReceiverID == userID && m.ReadAt == nil {
			conv.UnreadCount++
		}
	}

	conversations := make([]*model.Conversation, 0, len(order))
	for _, id := range order {
		conversations = append(conversations, byID[id])
	}
	return conversations, nil
}

// Thread 按会话取一页消息，倒序分页后反转为时间正序返回
func (r *MessageRepository) Thread(ctx context.Context, userID, otherUserID string, page, limit int) ([]*model.Message, error) {
	conversationID := model.ConversationID(userID, otherUserID)

	resp, err := r.client.From("messages").
		Select("*").
		Eq("conversation_id", conversationID).
		Order("created_at", false).
		Limit(limit).
		Offset((page - 1) * limit).
		Execute(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get messages", err)
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get messages", err)
	}

	var messages []*model.Message
	if err := resp.JSON(&messages); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get messages", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	return messages, nil
}

// MarkRead 只有收件人能标记已读；已读消息重复标记保持原值
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, receiverID string) (*model.Message, error) {
	resp, err := r.client.From("messages").
		Select("*").
		Eq("id", messageID).
		Eq("receiver_id", receiverID).
		Is("read_at", "null").
		Update(ctx, map[string]any{"read_at": time.Now().UTC().Format(time.RFC3339Nano)})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to mark message read", err)
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to mark message read", err)
	}

	var rows []model.Message
	if err := resp.JSON(&rows); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to mark message read", err)
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}

	// 空结果：消息不存在、不是收件人、或早已读过
	check, err := r.client.From("messages").
		Select("*").
		Eq("id", messageID).
		Single().
		Execute(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to mark message read", err)
	}
	if check.StatusCode == http.StatusNotAcceptable || check.StatusCode == http.StatusNotFound {
		return nil, apperrors.New(apperrors.ErrMessageNotFound, "Message not found")
	}
	if err := check.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to mark message read", err)
	}

	var msg model.Message
	if err := check.JSON(&msg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to mark message read", err)
	}
	if msg.ReceiverID != receiverID {
		return nil, apperrors.New(apperrors.ErrForbidden, "Not authorized to mark this message read")
	}
	return &msg, nil
}
