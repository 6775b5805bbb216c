package handlers

import (
	"encoding/json"
	"strconv"

	"msghub/internal/services"
	"msghub/pkg/pagination"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingHandler struct {
	service *services.SettingService
}

func NewSettingHandler(service *services.SettingService) *SettingHandler {
	return &SettingHandler{service: service}
}

// CreateSettingRequest 创建配置项请求
type CreateSettingRequest struct {
	Key   string          `json:"key" binding:"required"`
	Value json.RawMessage `json:"value"`
}

// UpdateSettingRequest 更新配置项请求
type UpdateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// Create 创建配置项
func (h *SettingHandler) Create(c *gin.Context) {
	var req CreateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	setting, err := h.service.Create(currentTenantID(c), req.Key, req.Value, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, setting)
}

// GetByID 获取配置项详情
func (h *SettingHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	setting, err := h.service.GetByID(uint(id), currentTenantID(c), requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, setting)
}

// GetByKey 按键获取配置项
func (h *SettingHandler) GetByKey(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		response.BadRequest(c, "缺少配置键")
		return
	}

	setting, err := h.service.GetByKey(currentTenantID(c), key)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, setting)
}

// List 获取配置项列表
func (h *SettingHandler) List(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	pageParams := pagination.ParsePageParams(c)

	settings, total, err := h.service.List(currentTenantID(c), activeOnly, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, settings, pageInfo)
}

// Update 更新配置值
func (h *SettingHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	setting, err := h.service.UpdateValue(uint(id), currentTenantID(c), req.Value, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, setting)
}

// Delete 软删除配置项
func (h *SettingHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.SoftDelete(uint(id), currentTenantID(c), requestMeta(c)); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, nil)
}

// HardDelete 物理删除配置项（显式、不可逆）
func (h *SettingHandler) HardDelete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.HardDelete(uint(id), currentTenantID(c), requestMeta(c)); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, nil)
}
