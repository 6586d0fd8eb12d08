package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		URL:        srv.URL,
		ServiceKey: "service-key",
	})
	require.NoError(t, err)
	return client, srv
}

// TestQueryEncoding 过滤、排序和分页参数全部落到查询串
func TestQueryEncoding(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Write([]byte(`[]`))
	})

	_, err := client.From("posts").
		Select("*,profiles(*)").
		Eq("visibility", "public").
		Order("created_at", false).
		Limit(20).
		Offset(40).
		Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/posts", captured.URL.Path)
	q := captured.URL.Query()
	assert.Equal(t, "*,profiles(*)", q.Get("select"))
	assert.Equal(t, "eq.public", q.Get("visibility"))
	assert.Equal(t, "created_at.desc", q.Get("order"))
	assert.Equal(t, "20", q.Get("limit"))
	assert.Equal(t, "40", q.Get("offset"))
	assert.Equal(t, "service-key", captured.Header.Get("apikey"))
	assert.Equal(t, "Bearer service-key", captured.Header.Get("Authorization"))
}

// TestInsertPreferHeaders 插入带回表示，upsert 叠加忽略冲突
func TestInsertPreferHeaders(t *testing.T) {
	var prefer string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		prefer = r.Header.Get("Prefer")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"1"}]`))
	})

	_, err := client.From("likes").Insert(context.Background(), map[string]any{"post_id": "p1"})
	require.NoError(t, err)
	assert.Equal(t, "return=representation", prefer)

	_, err = client.From("likes").Upsert().Insert(context.Background(), map[string]any{"post_id": "p1"})
	require.NoError(t, err)
	assert.Equal(t, "resolution=ignore-duplicates,return=representation", prefer)
}

// TestSingleAccept 单行查询使用对象 Accept 头
func TestSingleAccept(t *testing.T) {
	var accept string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.Write([]byte(`{"id":"1"}`))
	})

	_, err := client.From("profiles").Select("*").Eq("id", "1").Single().Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.pgrst.object+json", accept)
}

// TestTotalParsing 从 Content-Range 解析精确总数
func TestTotalParsing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		w.Header().Set("Content-Range", "0-19/57")
		w.Write([]byte(`[]`))
	})

	resp, err := client.From("posts").Select("*").Count().Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 57, resp.Total())
}

// TestTotalEmpty 空结果的 Content-Range
func TestTotalEmpty(t *testing.T) {
	resp := &Response{Header: http.Header{}}
	resp.Header.Set("Content-Range", "*/0")
	assert.Equal(t, 0, resp.Total())

	resp.Header.Del("Content-Range")
	assert.Equal(t, 0, resp.Total())
}

// TestResponseErr 错误响应转成可读错误
func TestResponseErr(t *testing.T) {
	ok := &Response{StatusCode: 200, Body: []byte(`[]`)}
	assert.NoError(t, ok.Err())

	bad := &Response{StatusCode: 409, Body: []byte(`{"message":"duplicate key"}`)}
	err := bad.Err()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
}

// TestRPC 存储过程调用路径
func TestRPC(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Write([]byte(`null`))
	})

	resp, err := client.RPC(context.Background(), "increment_member_count", map[string]any{"cid": "c1"})
	require.NoError(t, err)
	assert.NoError(t, resp.Err())
	assert.Equal(t, "/rest/v1/rpc/increment_member_count", captured.URL.Path)
	assert.Equal(t, http.MethodPost, captured.Method)
}
