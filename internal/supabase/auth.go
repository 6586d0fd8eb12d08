package supabase

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dgrijalva/jwt-go"
)

// AuthUser 认证后附加到请求上的用户身份
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// VerifyToken 把 Bearer 令牌解析为用户身份。
// 配置了项目 JWT 密钥时在本地校验（Supabase 访问令牌是 HS256 签名的 JWT），
// 否则回退到 GoTrue 的 /auth/v1/user 远程校验。
func (c *Client) VerifyToken(ctx context.Context, token string) (*AuthUser, error) {
	if token == "" {
		return nil, fmt.Errorf("令牌为空")
	}
	if c.jwtSecret != "" {
		return c.verifyTokenLocal(token)
	}
	return c.verifyTokenRemote(ctx, token)
}

func (c *Client) verifyTokenLocal(tokenString string) (*AuthUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不支持的签名算法: %v", t.Header["alg"])
		}
		return []byte(c.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("令牌校验失败: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("无效令牌")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("无效的令牌载荷")
	}

	user := &AuthUser{}
	if sub, ok := claims["sub"].(string); ok {
		user.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		user.Role = role
	}
	if user.ID == "" {
		return nil, fmt.Errorf("令牌缺少用户标识")
	}
	return user, nil
}

func (c *Client) verifyTokenRemote(ctx context.Context, token string) (*AuthUser, error) {
	reqURL := fmt.Sprintf("%s/auth/v1/user", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("令牌校验失败: status %d", resp.StatusCode)
	}

	var user AuthUser
	if err := resp.JSON(&user); err != nil {
		return nil, fmt.Errorf("解析用户身份失败: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("校验结果不含用户标识")
	}
	return &user, nil
}
