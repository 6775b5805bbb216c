package handlers

import (
	"msghub/internal/services"
	"msghub/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// currentClaims 从上下文读取JWT声明
func currentClaims(c *gin.Context) *jwt.JWTClaims {
	if v, exists := c.Get("claims"); exists {
		if claims, ok := v.(*jwt.JWTClaims); ok {
			return claims
		}
	}
	return nil
}

// currentTenantID 从受信上下文读取租户ID，缺失返回0
// 核心服务对0值租户ID一律失败关闭
func currentTenantID(c *gin.Context) uint {
	if v, exists := c.Get("tenant_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// requestMeta 从请求构造审计元信息
func requestMeta(c *gin.Context) *services.RequestMeta {
	meta := &services.RequestMeta{
		Endpoint: c.FullPath(),
		Method:   c.Request.Method,
		IP:       c.ClientIP(),
	}
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			meta.UserID = id
		}
	}
	return meta
}
