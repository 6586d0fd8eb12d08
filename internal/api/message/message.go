package message

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/middleware"
	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/service"
	"socialmarket-backend/internal/util"
)

// MessageHandler 处理私信相关的HTTP请求
type MessageHandler struct {
	messageService service.MessageServiceInterface
}

// NewMessageHandler 创建一个新的 MessageHandler 实例
func NewMessageHandler(messageService service.MessageServiceInterface) *MessageHandler {
	return &MessageHandler{messageService}
}

// SendMessage 发送私信，可附带关联商品
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		ReceiverID string  `json:"receiverId" binding:"required"`
		Content    string  `json:"content" binding:"required,min=1,max=1000"`
		ItemID     *string `json:"itemId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, util.FirstValidationError(err)))
		return
	}

	msg := &model.Message{
		SenderID:   middleware.CallerID(c),
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		ItemID:     req.ItemID,
	}
	if err := h.messageService.SendMessage(c.Request.Context(), msg); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListConversations 当前用户的会话列表，附未读数
func (h *MessageHandler) ListConversations(c *gin.Context) {
	conversations, err := h.messageService.ListConversations(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetThread 与某个用户的消息线程，时间正序
func (h *MessageHandler) GetThread(c *gin.Context) {
	page, limit := parsePagination(c)
	messages, err := h.messageService.GetThread(
		c.Request.Context(), middleware.CallerID(c), c.Param("userId"), page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// MarkRead 收件人标记消息已读
func (h *MessageHandler) MarkRead(c *gin.Context) {
	msg, err := h.messageService.MarkRead(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return page, limit
}
