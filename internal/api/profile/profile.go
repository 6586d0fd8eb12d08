package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/middleware"
	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/service"
	"socialmarket-backend/internal/util"
)

// ProfileHandler 处理用户资料相关的HTTP请求
type ProfileHandler struct {
	profileService service.ProfileServiceInterface
}

// NewProfileHandler 创建一个新的 ProfileHandler 实例
func NewProfileHandler(profileService service.ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{profileService}
}

// GetMe 当前登录用户自己的资料
func (h *ProfileHandler) GetMe(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfile 按用户ID查资料
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfileByUsername 按用户名查资料
func (h *ProfileHandler) GetProfileByUsername(c *gin.Context) {
	profile, err := h.profileService.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe 更新自己的资料
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Username    *string `json:"username" binding:"omitempty,min=3,max=30,username_format"`
		DisplayName *string `json:"display_name" binding:"omitempty,max=50"`
		Bio         *string `json:"bio" binding:"omitempty,max=500"`
		AvatarURL   *string `json:"avatar_url" binding:"omitempty,url"`
		Website     *string `json:"website" binding:"omitempty,url"`
		Location    *string `json:"location" binding:"omitempty,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, util.FirstValidationError(err)))
		return
	}

	upd := &model.ProfileUpdate{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		Website:     req.Website,
		Location:    req.Location,
	}
	profile, err := h.profileService.UpdateProfile(c.Request.Context(), middleware.CallerID(c), upd)
	if err != nil {
		util.Logger.Warn("更新资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
