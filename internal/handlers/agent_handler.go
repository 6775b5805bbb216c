package handlers

import (
	"fmt"

	"msghub/internal/services"
	"msghub/pkg/pagination"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AgentHandler 坐席（用户）处理器
type AgentHandler struct {
	userService *services.UserService
	ownership   *services.OwnershipService
}

func NewAgentHandler(userService *services.UserService, ownership *services.OwnershipService) *AgentHandler {
	return &AgentHandler{
		userService: userService,
		ownership:   ownership,
	}
}

// CreateAgentRequest 创建坐席请求
type CreateAgentRequest struct {
	AccountID uint   `json:"account_id" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Name      string `json:"name" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

// FilterAgentsRequest 批量归属过滤请求
type FilterAgentsRequest struct {
	UserIDs []uint `json:"user_ids"`
}

// Create 创建坐席
func (h *AgentHandler) Create(c *gin.Context) {
	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 解析验证错误，提供更友好的提示
		if validationErr, ok := err.(validator.ValidationErrors); ok {
			errorMsg := "参数验证失败"
			for _, fieldErr := range validationErr {
				switch fieldErr.Field() {
				case "Email":
					errorMsg = "邮箱格式不正确"
				case "Password":
					errorMsg = "密码长度不能少于8个字符"
				default:
					errorMsg = fmt.Sprintf("字段 %s 验证失败", fieldErr.Field())
				}
				break // 只返回第一个错误
			}
			response.BadRequest(c, errorMsg)
			return
		}
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.userService.Create(currentTenantID(c), req.AccountID, req.Username, req.Email, req.Password, req.Name, req.Role, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, user)
}

// GetByID 获取坐席详情
// 路由上已挂ValidateUserIDParam中间件，到达这里时归属校验已通过
func (h *AgentHandler) GetByID(c *gin.Context) {
	targetUserID, _ := c.Get("target_user_id")

	user, err := h.userService.GetByIDInTenant(targetUserID.(uint), currentTenantID(c), requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, user)
}

// List 获取坐席列表
func (h *AgentHandler) List(c *gin.Context) {
	role := c.Query("role")
	pageParams := pagination.ParsePageParams(c)

	users, total, err := h.userService.List(currentTenantID(c), role, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, users, pageInfo)
}

// Filter 批量归属过滤
// 调用方（如群发受众装配）用它把一批用户ID切分为本租户有效/无效两组
func (h *AgentHandler) Filter(c *gin.Context) {
	var req FilterAgentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	validIDs, invalidIDs, err := h.ownership.FilterUsersByTenant(req.UserIDs, currentTenantID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"valid_user_ids":   validIDs,
		"invalid_user_ids": invalidIDs,
	})
}
