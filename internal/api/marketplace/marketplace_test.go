package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/service"
	"socialmarket-backend/internal/util"
)

// MockMarketplaceService 是 MarketplaceServiceInterface 的模拟实现
type MockMarketplaceService struct {
	mock.Mock
}

func (m *MockMarketplaceService) ListItems(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.MarketplaceItem), args.Int(1), args.Error(2)
}

func (m *MockMarketplaceService) GetItem(ctx context.Context, id string) (*model.MarketplaceItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MarketplaceItem), args.Error(1)
}

func (m *MockMarketplaceService) MyItems(ctx context.Context, sellerID string, page, limit int) ([]*model.MarketplaceItem, int, error) {
	args := m.Called(ctx, sellerID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.MarketplaceItem), args.Int(1), args.Error(2)
}

func (m *MockMarketplaceService) CreateItem(ctx context.Context, item *model.MarketplaceItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockMarketplaceService) UpdateItem(ctx context.Context, id, sellerID string, upd *model.ItemUpdate) (*model.MarketplaceItem, error) {
	args := m.Called(ctx, id, sellerID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MarketplaceItem), args.Error(1)
}

func (m *MockMarketplaceService) SetSold(ctx context.Context, id, sellerID string, sold bool) (*model.MarketplaceItem, error) {
	args := m.Called(ctx, id, sellerID, sold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MarketplaceItem), args.Error(1)
}

func (m *MockMarketplaceService) DeleteItem(ctx context.Context, id, sellerID string) error {
	args := m.Called(ctx, id, sellerID)
	return args.Error(0)
}

// 确保 MockMarketplaceService 实现了 MarketplaceServiceInterface
var _ service.MarketplaceServiceInterface = (*MockMarketplaceService)(nil)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.InitLogger("error")
	m.Run()
}

func setupRouter(handler *MarketplaceHandler) *gin.Engine {
	router := gin.New()
	authed := func(c *gin.Context) {
		c.Set("user_id", "seller-1")
		c.Next()
	}
	router.GET("/marketplace", handler.ListItems)
	router.POST("/marketplace", authed, handler.CreateItem)
	router.PATCH("/marketplace/:id/sold", authed, handler.SetSold)
	return router
}

// TestListItemsInvalidCategory 非法分类直接 400，不触达服务层
func TestListItemsInvalidCategory(t *testing.T) {
	mockService := new(MockMarketplaceService)
	handler := NewMarketplaceHandler(mockService)
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/marketplace?category=weapons", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ListItems", mock.Anything, mock.Anything)
}

// TestListItemsFilterPassthrough 组合筛选条件传递到服务层
func TestListItemsFilterPassthrough(t *testing.T) {
	mockService := new(MockMarketplaceService)
	handler := NewMarketplaceHandler(mockService)
	router := setupRouter(handler)

	var captured model.ItemFilter
	mockService.On("ListItems", mock.Anything, mock.AnythingOfType("model.ItemFilter")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(model.ItemFilter)
		}).Return([]*model.MarketplaceItem{}, 0, nil)

	req, _ := http.NewRequest("GET", "/marketplace?category=books&condition=good&minPrice=5&maxPrice=50&search=golang&sortBy=price&sortOrder=asc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "books", captured.Category)
	assert.Equal(t, "good", captured.Condition)
	assert.NotNil(t, captured.MinPrice)
	assert.Equal(t, 5.0, *captured.MinPrice)
	assert.NotNil(t, captured.MaxPrice)
	assert.Equal(t, 50.0, *captured.MaxPrice)
	assert.Equal(t, "golang", captured.Search)
	assert.Equal(t, "price", captured.SortBy)
	assert.Equal(t, "asc", captured.SortOrder)
	assert.False(t, captured.IncludeSold)
}

// TestCreateItemInvalidCondition 非法成色被验证器拒绝
func TestCreateItemInvalidCondition(t *testing.T) {
	mockService := new(MockMarketplaceService)
	handler := NewMarketplaceHandler(mockService)
	router := setupRouter(handler)

	body, _ := json.Marshal(gin.H{
		"title":       "Old bike",
		"description": "A bike",
		"price":       50,
		"category":    "sports",
		"condition":   "broken",
	})
	req, _ := http.NewRequest("POST", "/marketplace", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
}

// TestCreateItemZeroPrice 免费商品（价格为0）是合法的
func TestCreateItemZeroPrice(t *testing.T) {
	mockService := new(MockMarketplaceService)
	handler := NewMarketplaceHandler(mockService)
	router := setupRouter(handler)

	mockService.On("CreateItem", mock.Anything, mock.AnythingOfType("*model.MarketplaceItem")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.MarketplaceItem).ID = "item-1"
		}).Return(nil)

	body, _ := json.Marshal(gin.H{
		"title":       "Free couch",
		"description": "Come pick it up",
		"price":       0,
		"category":    "furniture",
		"condition":   "fair",
	})
	req, _ := http.NewRequest("POST", "/marketplace", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

// TestSetSold 标记售出需要显式的布尔值
func TestSetSold(t *testing.T) {
	mockService := new(MockMarketplaceService)
	handler := NewMarketplaceHandler(mockService)
	router := setupRouter(handler)

	item := &model.MarketplaceItem{ID: "item-1", Sold: true}
	mockService.On("SetSold", mock.Anything, "item-1", "seller-1", true).Return(item, nil)

	req, _ := http.NewRequest("PATCH", "/marketplace/item-1/sold", bytes.NewBufferString(`{"sold": true}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp model.MarketplaceItem
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Sold)
	mockService.AssertExpectations(t)

	// 缺少 sold 字段
	req, _ = http.NewRequest("PATCH", "/marketplace/item-1/sold", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
