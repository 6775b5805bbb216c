package handlers

import (
	"strconv"

	"msghub/internal/services"
	"msghub/pkg/pagination"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service *services.AccountService
}

func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// CreateAccountRequest 创建账户请求
type CreateAccountRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create 创建账户并签发令牌
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	account, err := h.service.Create(currentTenantID(c), req.Name, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, account)
}

// GetByID 获取账户详情
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	account, err := h.service.GetByID(uint(id), currentTenantID(c), requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, account)
}

// List 获取账户列表
func (h *AccountHandler) List(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	pageParams := pagination.ParsePageParams(c)

	accounts, total, err := h.service.List(currentTenantID(c), activeOnly, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, accounts, pageInfo)
}

// RotateToken 轮换账户令牌
func (h *AccountHandler) RotateToken(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	account, err := h.service.RotateToken(uint(id), currentTenantID(c), requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, account)
}

// Delete 软删除账户
func (h *AccountHandler) Delete(c *gin.Context) {
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
