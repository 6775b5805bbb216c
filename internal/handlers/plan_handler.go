package handlers

import (
	"strconv"

	"msghub/internal/services"
	"msghub/pkg/pagination"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	service *services.PlanService
}

func NewPlanHandler(service *services.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

// CreatePlanRequest 创建套餐请求
type CreatePlanRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	MessageLimit int    `json:"message_limit"`
}

// UpdatePlanRequest 更新套餐请求
type UpdatePlanRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	PriceCents   *int64  `json:"price_cents"`
	MessageLimit *int    `json:"message_limit"`
}

// Create 创建套餐
func (h *PlanHandler) Create(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	plan, err := h.service.Create(currentTenantID(c), req.Name, req.Description, req.PriceCents, req.MessageLimit, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, plan)
}

// GetByID 获取套餐详情
func (h *PlanHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	plan, err := h.service.GetByID(uint(id), currentTenantID(c), requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, plan)
}

// List 获取套餐列表
func (h *PlanHandler) List(c *gin.Context) {
	status := c.Query("status")
	activeOnly := c.Query("active_only") == "true"
	pageParams := pagination.ParsePageParams(c)

	plans, total, err := h.service.List(currentTenantID(c), status, activeOnly, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, plans, pageInfo)
}

// Update 更新套餐
func (h *PlanHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	plan, err := h.service.Update(uint(id), currentTenantID(c), services.UpdatePlanParams{
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		MessageLimit: req.MessageLimit,
	}, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, plan)
}

// Delete 软删除套餐
func (h *PlanHandler) Delete(c *gin.Context) {
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

// HardDelete 物理删除套餐（显式、不可逆）
func (h *PlanHandler) HardDelete(c *gin.Context) {
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
