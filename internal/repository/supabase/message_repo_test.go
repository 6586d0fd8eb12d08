package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sb "socialmarket-backend/internal/supabase"
)

func newTestMessageRepo(t *testing.T, handler http.HandlerFunc) *MessageRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := sb.New(sb.Config{URL: srv.URL, ServiceKey: "key"})
	require.NoError(t, err)
	return NewMessageRepository(client)
}

// TestListConversationsFolding 消息流按会话折叠：
// 每个会话保留最新一条，未读只数发给自己的
func TestListConversationsFolding(t *testing.T) {
	repo := newTestMessageRepo(t, func(w http.ResponseWriter, r *http.Request) {
		// 倒序消息流：alice 与 bob、carol 各有一个会话
		w.Write([]byte(`[
			{"id":"m4","sender_id":"bob","receiver_id":"alice","content":"newest","conversation_id":"alice_bob","read_at":null,"created_at":"2026-08-30T12:00:00Z"},
			{"id":"m3","sender_id":"alice","receiver_id":"carol","content":"hi carol","conversation_id":"alice_carol","read_at":null,"created_at":"2026-08-30T11:00:00Z"},
			{"id":"m2","sender_id":"bob","receiver_id":"alice","content":"older","conversation_id":"alice_bob","read_at":null,"created_at":"2026-08-30T10:00:00Z"},
			{"id":"m1","sender_id":"alice","receiver_id":"bob","content":"oldest","conversation_id":"alice_bob","read_at":"2026-08-30T09:30:00Z","created_at":"2026-08-30T09:00:00Z"}
		]`))
	})

	conversations, err := repo.ListConversations(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// 顺序跟随最新消息
	first := conversations[0]
	assert.Equal(t, "alice_bob", first.ConversationID)
	assert.Equal(t, "bob", first.OtherUserID)
	require.NotNil(t, first.LastMessage)
	assert.Equal(t, "m4", first.LastMessage.ID)
	// m4 和 m2 未读，m1 是 alice 自己发的
	assert.Equal(t, 2, first.UnreadCount)

	second := conversations[1]
	assert.Equal(t, "alice_carol", second.ConversationID)
	assert.Equal(t, "carol", second.OtherUserID)
	// alice 发出的消息不计入自己的未读
	assert.Equal(t, 0, second.UnreadCount)
}

// TestThreadChronological 倒序分页后反转为时间正序
func TestThreadChronological(t *testing.T) {
	repo := newTestMessageRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.alice_bob", r.URL.Query().Get("conversation_id"))
		w.Write([]byte(`[
			{"id":"m3","sender_id":"bob","receiver_id":"alice","content":"c","conversation_id":"alice_bob","created_at":"2026-08-30T12:00:00Z"},
			{"id":"m2","sender_id":"alice","receiver_id":"bob","content":"b","conversation_id":"alice_bob","created_at":"2026-08-30T11:00:00Z"},
			{"id":"m1","sender_id":"bob","receiver_id":"alice","content":"a","conversation_id":"alice_bob","created_at":"2026-08-30T10:00:00Z"}
		]`))
	})

	messages, err := repo.Thread(context.Background(), "bob", "alice", 1, 50)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m3", messages[2].ID)
}
