package handlers

import (
	"strconv"

	"msghub/internal/services"
	"msghub/pkg/pagination"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
)

type InboxHandler struct {
	service *services.InboxService
}

func NewInboxHandler(service *services.InboxService) *InboxHandler {
	return &InboxHandler{service: service}
}

// CreateInboxRequest 创建收件箱请求
// token可选：共享开通场景下由外部系统提供，可跨租户重复
type CreateInboxRequest struct {
	AccountID uint   `json:"account_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Channel   string `json:"channel" binding:"required"`
	Token     string `json:"token"`
}

// RenameInboxRequest 重命名收件箱请求
type RenameInboxRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create 创建收件箱
func (h *InboxHandler) Create(c *gin.Context) {
	var req CreateInboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	inbox, err := h.service.Create(currentTenantID(c), req.AccountID, req.Name, req.Channel, req.Token, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, inbox)
}

// GetByID 获取收件箱详情
func (h *InboxHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	inbox, err := h.service.GetByID(uint(id), currentTenantID(c), requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, inbox)
}

// List 获取收件箱列表，可按账户过滤
func (h *InboxHandler) List(c *gin.Context) {
	var accountID uint
	if v := c.Query("account_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "账户ID格式错误")
			return
		}
		accountID = uint(parsed)
	}
	activeOnly := c.Query("active_only") == "true"
	pageParams := pagination.ParsePageParams(c)

	inboxes, total, err := h.service.List(currentTenantID(c), accountID, activeOnly, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, inboxes, pageInfo)
}

// Rename 重命名收件箱
func (h *InboxHandler) Rename(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req RenameInboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	inbox, err := h.service.Rename(uint(id), currentTenantID(c), req.Name, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, inbox)
}

// Delete 软删除收件箱
func (h *InboxHandler) Delete(c *gin.Context) {
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

// HardDelete 物理删除收件箱（显式、不可逆）
func (h *InboxHandler) HardDelete(c *gin.Context) {
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
