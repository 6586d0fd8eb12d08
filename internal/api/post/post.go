package post

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

// PostHandler 处理帖子相关的HTTP请求
type PostHandler struct {
	postService service.PostServiceInterface
}

// NewPostHandler 创建一个新的 PostHandler 实例
func NewPostHandler(postService service.PostServiceInterface) *PostHandler {
	return &PostHandler{postService}
}

// ListPosts 信息流：按可见性分区，可按社区过滤
func (h *PostHandler) ListPosts(c *gin.Context) {
	visibility := c.DefaultQuery("visibility", model.VisibilityPublic)
	if visibility != model.VisibilityPublic && visibility != model.VisibilityAnonymous {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Invalid visibility"))
		return
	}
	page, limit := parsePagination(c)

	filter := model.PostFilter{
		Visibility:  visibility,
		CommunityID: c.Query("communityId"),
		ViewerID:    middleware.CallerID(c),
		Page:        page,
		Limit:       limit,
	}

	posts, total, err := h.postService.ListPosts(c.Request.Context(), filter)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      posts,
		"pagination": paginationMeta(page, limit, total),
	})
}

// GetPost 读取单个帖子
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost 发布帖子，匿名帖对所有读者隐藏作者资料
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req struct {
		Content     string   `json:"content" binding:"required,min=1,max=2000"`
		Images      []string `json:"images" binding:"omitempty,max=10,dive,url"`
		Visibility  string   `json:"visibility" binding:"omitempty,oneof=public anonymous"`
		CommunityID string   `json:"communityId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, util.FirstValidationError(err)))
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	images := req.Images
	if images == nil {
		images = []string{}
	}

	post := &model.Post{
		UserID:     middleware.CallerID(c),
		Content:    req.Content,
		Images:     images,
		Visibility: visibility,
	}
	if req.CommunityID != "" {
		post.CommunityID = &req.CommunityID
	}

	if err := h.postService.CreatePost(c.Request.Context(), post); err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost 只有作者能改自己的帖子
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req struct {
		Content *string   `json:"content" binding:"omitempty,min=1,max=2000"`
		Images  *[]string `json:"images" binding:"omitempty,max=10,dive,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, util.FirstValidationError(err)))
		return
	}
	if req.Content == nil && req.Images == nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "Nothing to update"))
		return
	}

	upd := &model.PostUpdate{Content: req.Content, Images: req.Images}
	post, err := h.postService.UpdatePost(c.Request.Context(), c.Param("id"), middleware.CallerID(c), upd)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost 只有作者能删自己的帖子
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postService.DeletePost(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// ToggleLike 点赞开关，返回最新状态和计数
func (h *PostHandler) ToggleLike(c *gin.Context) {
	liked, likeCount, err := h.postService.ToggleLike(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"liked":     liked,
		"likeCount": likeCount,
	})
}

// ListComments 帖子评论列表，时间正序
func (h *PostHandler) ListComments(c *gin.Context) {
	page, limit := parsePagination(c)
	comments, err := h.postService.ListComments(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// AddComment 发表评论
func (h *PostHandler) AddComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required,min=1,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, util.FirstValidationError(err)))
		return
	}

	comment := &model.Comment{
		PostID:  c.Param("id"),
		UserID:  middleware.CallerID(c),
		Content: req.Content,
	}
	if err := h.postService.AddComment(c.Request.Context(), comment); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment 只有评论作者能删除
func (h *PostHandler) DeleteComment(c *gin.Context) {
	if err := h.postService.DeleteComment(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
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
