package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse 定义错误响应结构，对外只暴露 error 字段
type ErrorResponse struct {
	Error string `json:"error"`
}

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal: http.StatusInternalServerError,
	ErrBackend:  http.StatusInternalServerError,
	ErrCache:    http.StatusInternalServerError,
	ErrTimeout:  http.StatusRequestTimeout,

	// 认证错误 (2000-2999)
	ErrUnauthorized: http.StatusUnauthorized,
	ErrForbidden:    http.StatusForbidden,
	ErrInvalidToken: http.StatusUnauthorized,
	ErrTokenExpired: http.StatusUnauthorized,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,
	ErrResourceExists:   http.StatusConflict,

	// 业务错误 (4000-4999)
	ErrProfileNotFound:   http.StatusNotFound,
	ErrPostNotFound:      http.StatusNotFound,
	ErrItemNotFound:      http.StatusNotFound,
	ErrCommunityNotFound: http.StatusNotFound,
	ErrMessageNotFound:   http.StatusNotFound,
	ErrAlreadyMember:     http.StatusConflict,
	ErrUploadRejected:    http.StatusBadRequest,
}

// HandleError 统一处理错误响应。
// 对外只返回 message；底层错误细节只进日志，不下发给客户端。
func HandleError(c *gin.Context, err error) {
	if appErr, ok := err.(*AppError); ok {
		status := errorStatusMap[appErr.Code]
		if status == 0 {
			status = http.StatusInternalServerError
		}

		if appErr.Err != nil {
			zap.L().Error("请求处理失败",
				zap.Int("error_code", int(appErr.Code)),
				zap.String("message", appErr.Message),
				zap.Error(appErr.Err),
				zap.String("path", c.Request.URL.Path))
		}

		// 交给错误监控中间件统计
		_ = c.Error(appErr)

		c.JSON(status, ErrorResponse{Error: appErr.Message})
		return
	}

	// 处理非 AppError 类型的错误
	zap.L().Error("未分类的内部错误", zap.Error(err), zap.String("path", c.Request.URL.Path))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}
