package community

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

// CommunityHandler 处理社区相关的HTTP请求
type CommunityHandler struct {
	communityService service.CommunityServiceInterface
}

// NewCommunityHandler 创建一个新的 CommunityHandler 实例
func NewCommunityHandler(communityService service.CommunityServiceInterface) *CommunityHandler {
	return &CommunityHandler{communityService}
}

// ListCommunities 社区列表，按成员数排序
func (h *CommunityHandler) ListCommunities(c *gin.Context) {
	page, limit := parsePagination(c)
	communities, total, err := h.communityService.ListCommunities(c.Request.Context(), page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"communities": communities,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + limit - 1) / limit,
		},
	})
}

// GetCommunity 读取单个社区
func (h *CommunityHandler) GetCommunity(c *gin.Context) {
	community, err := h.communityService.GetCommunity(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

// CreateCommunity 创建社区，创建者自动成为管理员
func (h *CommunityHandler) CreateCommunity(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=3,max=50"`
		Description string `json:"description" binding:"omitempty,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, util.FirstValidationError(err)))
		return
	}

	community := &model.Community{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   middleware.CallerID(c),
	}
	if err := h.communityService.CreateCommunity(c.Request.Context(), community); err != nil {
		util.Logger.Error("创建社区失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, community)
}

// Join 加入社区
func (h *CommunityHandler) Join(c *gin.Context) {
	if err := h.communityService.JoinCommunity(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined community"})
}

// Leave 退出社区
func (h *CommunityHandler) Leave(c *gin.Context) {
	if err := h.communityService.LeaveCommunity(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left community"})
}

// ListMembers 社区成员列表
func (h *CommunityHandler) ListMembers(c *gin.Context) {
	page, limit := parsePagination(c)
	members, err := h.communityService.ListMembers(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
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
