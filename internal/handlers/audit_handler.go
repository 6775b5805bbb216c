package handlers

import (
	"net/http"
	"strconv"

	"msghub/internal/services"
	"msghub/pkg/config"
	"msghub/pkg/jwt"
	"msghub/pkg/logger"
	"msghub/pkg/pagination"
	"msghub/pkg/queue"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// AuditHandler 安全审计处理器（仅平台运营方可用）
type AuditHandler struct {
	auditService *services.AuditService
	jwtManager   *jwt.JWTManager
	redisQueue   *queue.RedisQueue
	upgrader     websocket.Upgrader
	log          *logrus.Logger
}

func NewAuditHandler(auditService *services.AuditService, jwtManager *jwt.JWTManager, redisQueue *queue.RedisQueue) *AuditHandler {
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &AuditHandler{
		auditService: auditService,
		jwtManager:   jwtManager,
		redisQueue:   redisQueue,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// 如果允许所有源
				for _, allowed := range allowedOrigins {
					if allowed == "*" {
						return true
					}
				}

				// 如果Origin为空（同源请求），允许
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: logger.GetLogger(),
	}
}

// List 分页查询安全审计日志，可按租户过滤
func (h *AuditHandler) List(c *gin.Context) {
	var tenantID uint
	if v := c.Query("tenant_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "租户ID格式错误")
			return
		}
		tenantID = uint(parsed)
	}
	pageParams := pagination.ParsePageParams(c)

	logs, total, err := h.auditService.ListSecurityViolations(tenantID, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, logs, pageInfo)
}

// Stream 实时推送安全审计事件
// WebSocket握手无法携带Authorization头，令牌通过查询参数传入
func (h *AuditHandler) Stream(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		response.Unauthorized(c, "请先登录")
		return
	}

	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		response.Unauthorized(c, "Token无效或已过期")
		return
	}
	if !claims.IsPlatformAdmin {
		response.Forbidden(c, "需要平台管理员权限")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("WebSocket升级失败: %v", err)
		return
	}
	defer conn.Close()

	pubsub := h.redisQueue.SubscribeChannel(services.AuditChannelSecurity)
	defer pubsub.Close()

	// 读循环只用于感知客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
