package handlers

import (
	"strconv"

	"msghub/internal/services"
	"msghub/pkg/pagination"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreditPackageHandler struct {
	service *services.CreditPackageService
}

func NewCreditPackageHandler(service *services.CreditPackageService) *CreditPackageHandler {
	return &CreditPackageHandler{service: service}
}

// CreateCreditPackageRequest 创建点数包请求
type CreateCreditPackageRequest struct {
	Name       string `json:"name" binding:"required"`
	Credits    int    `json:"credits" binding:"required"`
	PriceCents int64  `json:"price_cents"`
}

// UpdateCreditPackageRequest 更新点数包请求
type UpdateCreditPackageRequest struct {
	Name       *string `json:"name"`
	Credits    *int    `json:"credits"`
	PriceCents *int64  `json:"price_cents"`
}

// Create 创建点数包
func (h *CreditPackageHandler) Create(c *gin.Context) {
	var req CreateCreditPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	pkg, err := h.service.Create(currentTenantID(c), req.Name, req.Credits, req.PriceCents, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, pkg)
}

// GetByID 获取点数包详情
func (h *CreditPackageHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	pkg, err := h.service.GetByID(uint(id), currentTenantID(c), requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, pkg)
}

// List 获取点数包列表
func (h *CreditPackageHandler) List(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	pageParams := pagination.ParsePageParams(c)

	pkgs, total, err := h.service.List(currentTenantID(c), activeOnly, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, pkgs, pageInfo)
}

// Update 更新点数包
func (h *CreditPackageHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateCreditPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	pkg, err := h.service.Update(uint(id), currentTenantID(c), services.UpdateCreditPackageParams{
		Name:       req.Name,
		Credits:    req.Credits,
		PriceCents: req.PriceCents,
	}, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, pkg)
}

// Delete 软删除点数包
func (h *CreditPackageHandler) Delete(c *gin.Context) {
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

// HardDelete 物理删除点数包（显式、不可逆）
func (h *CreditPackageHandler) HardDelete(c *gin.Context) {
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
