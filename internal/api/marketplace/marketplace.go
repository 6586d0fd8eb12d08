package marketplace

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/middleware"
	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/service"
	"socialmarket-backend/internal/util"
)

// MarketplaceHandler 处理商品相关的HTTP请求
type MarketplaceHandler struct {
	itemService service.MarketplaceServiceInterface
}

// NewMarketplaceHandler 创建一个新的 MarketplaceHandler 实例
func NewMarketplaceHandler(itemService service.MarketplaceServiceInterface) *MarketplaceHandler {
	return &MarketplaceHandler{itemService}
}

// ListItems 商品列表，支持分类/成色/价格区间/关键词组合筛选
func (h *MarketplaceHandler) ListItems(c *gin.Context) {
	page, limit := parsePagination(c)
	filter := model.ItemFilter{
		Category:  c.Query("category"),
		Condition: c.Query("condition"),
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
		Page:      page,
		Limit:     limit,
	}

	if filter.Category != "" && !contains(model.ItemCategories, filter.Category) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Invalid category"))
		return
	}
	if filter.Condition != "" && !contains(model.ItemConditions, filter.Condition) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Invalid condition"))
		return
	}
	if filter.SortBy != "created_at" && filter.SortBy != "price" {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Invalid sortBy"))
		return
	}
	if filter.SortOrder != "asc" && filter.SortOrder != "desc" {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Invalid sortOrder"))
		return
	}

	var err error
	if filter.MinPrice, err = parsePrice(c.Query("minPrice")); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Invalid minPrice"))
		return
	}
	if filter.MaxPrice, err = parsePrice(c.Query("maxPrice")); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Invalid maxPrice"))
		return
	}

	items, total, err := h.itemService.ListItems(c.Request.Context(), filter)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, limit, total),
	})
}

// MyItems 当前卖家的商品列表，含已售出的
func (h *MarketplaceHandler) MyItems(c *gin.Context) {
	page, limit := parsePagination(c)
	items, total, err := h.itemService.MyItems(c.Request.Context(), middleware.CallerID(c), page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, limit, total),
	})
}

// GetItem 读取单个商品
func (h *MarketplaceHandler) GetItem(c *gin.Context) {
	item, err := h.itemService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem 发布商品
func (h *MarketplaceHandler) CreateItem(c *gin.Context) {
	var req struct {
		Title       string   `json:"title" binding:"required,min=3,max=100"`
		Description string   `json:"description" binding:"required,min=1,max=2000"`
		Price       *float64 `json:"price" binding:"required,gte=0"`
		Category    string   `json:"category" binding:"required,oneof=electronics clothing furniture books sports toys vehicles other"`
		Condition   string   `json:"condition" binding:"required,oneof=new like_new good fair poor"`
		Images      []string `json:"images" binding:"omitempty,max=10,dive,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, util.FirstValidationError(err)))
		return
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	item := &model.MarketplaceItem{
		SellerID:    middleware.CallerID(c),
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Images:      images,
	}

	if err := h.itemService.CreateItem(c.Request.Context(), item); err != nil {
		util.Logger.Error("发布商品失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem 只有卖家能改自己的商品
func (h *MarketplaceHandler) UpdateItem(c *gin.Context) {
	var req struct {
		Title       *string   `json:"title" binding:"omitempty,min=3,max=100"`
		Description *string   `json:"description" binding:"omitempty,min=1,max=2000"`
		Price       *float64  `json:"price" binding:"omitempty,gte=0"`
		Category    *string   `json:"category" binding:"omitempty,oneof=electronics clothing furniture books sports toys vehicles other"`
		Condition   *string   `json:"condition" binding:"omitempty,oneof=new like_new good fair poor"`
		Images      *[]string `json:"images" binding:"omitempty,max=10,dive,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, util.FirstValidationError(err)))
		return
	}

	upd := &model.ItemUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Images:      req.Images,
	}
	item, err := h.itemService.UpdateItem(c.Request.Context(), c.Param("id"), middleware.CallerID(c), upd)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// SetSold 标记售出或重新上架
func (h *MarketplaceHandler) SetSold(c *gin.Context) {
	var req struct {
		Sold *bool `json:"sold" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, util.FirstValidationError(err)))
		return
	}

	item, err := h.itemService.SetSold(c.Request.Context(), c.Param("id"), middleware.CallerID(c), *req.Sold)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem 只有卖家能删自己的商品
func (h *MarketplaceHandler) DeleteItem(c *gin.Context) {
	if err := h.itemService.DeleteItem(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func parsePrice(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, errors.New(errors.ErrValidation, "Invalid price")
	}
	return &v, nil
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func paginationMeta(page, limit, total int) gin.H {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return gin.H{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	}
}
