package middleware

import (
	"strconv"

	"msghub/internal/services"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
)

// TenantMiddleware 租户隔离门禁
// 所有校验失败关闭：上下文缺失一律视为拒绝，且只返回不含资源细节的通用文案
type TenantMiddleware struct {
	ownership *services.OwnershipService
	audit     *services.AuditService
}

func NewTenantMiddleware(ownership *services.OwnershipService, audit *services.AuditService) *TenantMiddleware {
	return &TenantMiddleware{ownership: ownership, audit: audit}
}

// currentTenantID 从受信上下文读取租户ID，缺失返回0
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

// RequireTenantContext 要求受信租户上下文存在
// 缺失时恰好拒绝一次后中止，后续处理器不会再写响应
func (m *TenantMiddleware) RequireTenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentTenantID(c) == 0 {
			response.Forbidden(c, "访问被拒绝")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ValidateUserIDParam 校验路径参数指向的用户归属当前租户
// 检查顺序固定：租户上下文 → 参数存在且合法 → 归属校验。
// 归属校验通过后将目标用户所属账户写入上下文供处理器使用
func (m *TenantMiddleware) ValidateUserIDParam(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := currentTenantID(c)
		if tenantID == 0 {
			response.Forbidden(c, "访问被拒绝")
			c.Abort()
			return
		}

		paramValue := c.Param(paramName)
		if paramValue == "" {
			response.BadRequest(c, "缺少必需的用户ID参数")
			c.Abort()
			return
		}
		userID, err := strconv.ParseUint(paramValue, 10, 32)
		if err != nil || userID == 0 {
			response.BadRequest(c, "用户ID格式错误")
			c.Abort()
			return
		}

		valid, account, err := m.ownership.ValidateUserTenant(uint(userID), tenantID)
		if err != nil {
			response.ServerError(c, "服务器内部错误")
			c.Abort()
			return
		}
		if !valid {
			// 用户存在但属于其他租户时记录安全审计事件，对外响应不做区分
			if actualTenantID, lookupErr := m.ownership.LookupUserTenant(uint(userID)); lookupErr == nil && actualTenantID != 0 {
				m.audit.LogSecurityViolation(tenantID, actualTenantID, uint(userID), "users", requestMeta(c))
			}
			response.Forbidden(c, "访问被拒绝")
			c.Abort()
			return
		}

		c.Set("target_user_id", uint(userID))
		c.Set("target_account", account)
		c.Next()
	}
}
