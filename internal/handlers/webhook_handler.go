package handlers

import (
	"strconv"

	"msghub/internal/services"
	"msghub/pkg/pagination"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler Webhook入站处理器
// 入站负载不携带租户标识，路由完全依赖路径中的不透明令牌；
// 调用层可通过tenant_id查询参数附带租户上下文
type WebhookHandler struct {
	service *services.WebhookService
}

func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// Receive 接收入站Webhook事件
func (h *WebhookHandler) Receive(c *gin.Context) {
	token := c.Param("token")

	// 调用层可选提供的租户上下文
	var expectedTenantID uint
	if v := c.Query("tenant_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "租户ID格式错误")
			return
		}
		expectedTenantID = uint(parsed)
	}

	payload, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "读取事件负载失败")
		return
	}

	source := c.GetHeader("X-Event-Source")
	result, delivery, err := h.service.Ingest(token, payload, expectedTenantID, source)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if !result.Success {
		// 对外只透出路由错误码，不描述令牌或租户的任何细节
		switch result.Error {
		case services.RoutingErrAccountNotFound:
			response.NotFound(c, services.RoutingErrAccountNotFound)
		default:
			response.Forbidden(c, result.Error)
		}
		return
	}

	response.Success(c, gin.H{
		"account_id":  result.AccountID,
		"tenant_id":   result.TenantID,
		"delivery_id": delivery.ID,
	})
}

// ListDeliveries 查询本租户的投递记录
func (h *WebhookHandler) ListDeliveries(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	deliveries, total, err := h.service.ListDeliveries(currentTenantID(c), pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, deliveries, pageInfo)
}
