package post

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/service"
	"socialmarket-backend/internal/util"
)

// MockPostService 是 PostServiceInterface 的模拟实现
type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) CreatePost(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostService) GetPost(ctx context.Context, id, viewerID string) (*model.Post, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) ListPosts(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *MockPostService) UpdatePost(ctx context.Context, id, userID string, upd *model.PostUpdate) (*model.Post, error) {
	args := m.Called(ctx, id, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) DeletePost(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockPostService) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func (m *MockPostService) AddComment(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockPostService) ListComments(ctx context.Context, postID string, page, limit int) ([]*model.Comment, error) {
	args := m.Called(ctx, postID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Comment), args.Error(1)
}

func (m *MockPostService) DeleteComment(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// 确保 MockPostService 实现了 PostServiceInterface
var _ service.PostServiceInterface = (*MockPostService)(nil)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.InitLogger("error")
	m.Run()
}

func setupRouter(handler *PostHandler) *gin.Engine {
	router := gin.New()
	authed := func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	}
	router.GET("/posts", handler.ListPosts)
	router.POST("/posts", authed, handler.CreatePost)
	router.POST("/posts/:id/like", authed, handler.ToggleLike)
	router.POST("/posts/:id/comments", authed, handler.AddComment)
	return router
}

// TestCreatePost 测试发帖处理器
func TestCreatePost(t *testing.T) {
	mockService := new(MockPostService)
	handler := NewPostHandler(mockService)
	router := setupRouter(handler)

	mockService.On("CreatePost", mock.Anything, mock.AnythingOfType("*model.Post")).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*model.Post)
			p.ID = "post-1"
		}).Return(nil)

	body := []byte(`{"content": "hello world", "visibility": "anonymous"}`)
	req, _ := http.NewRequest("POST", "/posts", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp model.Post
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "post-1", resp.ID)
	assert.Equal(t, model.VisibilityAnonymous, resp.Visibility)
	assert.Nil(t, resp.Profile)
	mockService.AssertExpectations(t)
}

// TestCreatePostValidation 超长内容直接 400，不触达服务层
func TestCreatePostValidation(t *testing.T) {
	mockService := new(MockPostService)
	handler := NewPostHandler(mockService)
	router := setupRouter(handler)

	body, _ := json.Marshal(gin.H{"content": strings.Repeat("a", 2001)})
	req, _ := http.NewRequest("POST", "/posts", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
	mockService.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
}

// TestListPostsInvalidVisibility 非法分区参数返回 400
func TestListPostsInvalidVisibility(t *testing.T) {
	mockService := new(MockPostService)
	handler := NewPostHandler(mockService)
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/posts?visibility=secret", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ListPosts", mock.Anything, mock.Anything)
}

// TestListPostsEnvelope 列表响应携带分页元数据
func TestListPostsEnvelope(t *testing.T) {
	mockService := new(MockPostService)
	handler := NewPostHandler(mockService)
	router := setupRouter(handler)

	posts := []*model.Post{{ID: "p1", Content: "hi", Visibility: model.VisibilityPublic}}
	mockService.On("ListPosts", mock.Anything, mock.AnythingOfType("model.PostFilter")).
		Return(posts, 41, nil)

	req, _ := http.NewRequest("GET", "/posts?page=2&limit=20", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Posts      []*model.Post `json:"posts"`
		Pagination struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Posts, 1)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 41, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
}

// TestToggleLike 点赞开关的响应形状
func TestToggleLike(t *testing.T) {
	mockService := new(MockPostService)
	handler := NewPostHandler(mockService)
	router := setupRouter(handler)

	mockService.On("ToggleLike", mock.Anything, "post-1", "user-1").Return(true, 5, nil)

	req, _ := http.NewRequest("POST", "/posts/post-1/like", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Liked     bool `json:"liked"`
		LikeCount int  `json:"likeCount"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Liked)
	assert.Equal(t, 5, resp.LikeCount)
	mockService.AssertExpectations(t)
}

// TestAddCommentValidation 空评论被拒绝
func TestAddCommentValidation(t *testing.T) {
	mockService := new(MockPostService)
	handler := NewPostHandler(mockService)
	router := setupRouter(handler)

	req, _ := http.NewRequest("POST", "/posts/post-1/comments", bytes.NewBufferString(`{"content": ""}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything)
}
