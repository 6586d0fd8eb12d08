package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/supabase"
	"socialmarket-backend/internal/util"
)

// TokenVerifier 校验访问令牌并返回认证身份
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*supabase.AuthUser, error)
}

// AuthMiddleware 要求请求携带有效的 Bearer 令牌，
// 校验通过后把身份信息写入请求上下文
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		token, ok := bearerToken(c)
		if !ok {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
			c.Abort()
			return
		}

		user, err := verifier.VerifyToken(ctx, token)
		if err != nil {
			util.Logger.Warn("令牌校验失败",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Invalid or expired token", err))
			c.Abort()
			return
		}

		setIdentity(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware 允许匿名访问：没有令牌时继续放行，
// 带了令牌但无效时仍然拒绝，避免调用方误以为自己已登录
func OptionalAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		user, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Invalid or expired token", err))
			c.Abort()
			return
		}

		setIdentity(c, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c *gin.Context, user *supabase.AuthUser) {
	c.Set("user_id", user.ID)
	c.Set("user_email", user.Email)
	role := user.Role
	if role == "" {
		role = "user"
	}
	c.Set("user_role", role)
}

// CallerID 读取认证中间件写入的用户ID，匿名请求返回空串
func CallerID(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
