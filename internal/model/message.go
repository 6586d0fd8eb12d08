package model

import (
	"strings"
	"time"
)

// Message 私信模型
type Message struct {
	ID             string     `json:"id"`
	SenderID       string     `json:"sender_id"`
	ReceiverID     string     `json:"receiver_id"`
	Content        string     `json:"content"`
	ItemID         *string    `json:"item_id,omitempty"`
	ConversationID string     `json:"conversation_id"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Conversation 会话摘要：最新一条消息加未读计数
type Conversation struct {
	ConversationID string   `json:"conversation_id"`
	OtherUserID    string   `json:"other_user_id"`
	LastMessage    *Message `json:"last_message"`
	UnreadCount    int      `json:"unread_count"`
}

// ConversationID 由两个参与者ID按字典序排序后拼接得到。
// 对称：ConversationID(a, b) == ConversationID(b, a)。
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return strings.Join([]string{a, b}, "_")
}
