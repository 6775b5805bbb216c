package handlers

import (
	"strconv"

	"msghub/internal/services"
	"msghub/pkg/pagination"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
)

// TenantHandler 租户处理器（仅平台运营方可用）
type TenantHandler struct {
	service *services.TenantService
}

func NewTenantHandler(service *services.TenantService) *TenantHandler {
	return &TenantHandler{service: service}
}

// CreateTenantRequest 创建租户请求
type CreateTenantRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// UpdateTenantNameRequest 更新租户名称请求
type UpdateTenantNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateTenantStatusRequest 更新租户状态请求
type UpdateTenantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Create 创建租户
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenant, err := h.service.Create(req.Name, req.Code)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, tenant)
}

// GetByID 获取租户详情
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenant, err := h.service.GetByID(uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, tenant)
}

// List 获取租户列表
func (h *TenantHandler) List(c *gin.Context) {
	status := c.Query("status")
	keyword := c.Query("keyword")
	pageParams := pagination.ParsePageParams(c)

	tenants, total, err := h.service.GetWithFiltersAndPage(status, keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, tenants, pageInfo)
}

// UpdateName 更新租户名称
func (h *TenantHandler) UpdateName(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateTenantNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenant, err := h.service.UpdateName(uint(id), req.Name)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, tenant)
}

// UpdateStatus 更新租户状态
// 状态切换立即影响该租户所有令牌的Webhook路由结果
func (h *TenantHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateTenantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenant, err := h.service.UpdateStatus(uint(id), req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, tenant)
}

// Stats 获取租户统计
func (h *TenantHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats()
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, stats)
}
