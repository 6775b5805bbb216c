package router

import (
	"time"

	"msghub/internal/database"
	"msghub/internal/handlers"
	"msghub/internal/middleware"
	"msghub/internal/services"
	"msghub/pkg/jwt"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	db := database.GetDB()
	redisQueue := database.GetRedisQueue()
	jwtManager := jwt.GetJWTManager()

	// 核心服务（显式注入持久化客户端，便于单测替换）
	auditService := services.NewAuditService(db, redisQueue)
	ownershipService := services.NewOwnershipService(db)
	userService := services.NewUserService(db, auditService)
	tenantService := services.NewTenantService(db)
	accountService := services.NewAccountService(db, auditService)
	inboxService := services.NewInboxService(db, auditService)
	planService := services.NewPlanService(db, auditService)
	settingService := services.NewSettingService(db, auditService)
	creditPackageService := services.NewCreditPackageService(db, auditService)
	webhookService := services.NewWebhookService(db, redisQueue)

	auth := middleware.NewAuthMiddleware(userService, jwtManager)
	tenantGuard := middleware.NewTenantMiddleware(ownershipService, auditService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由（无需认证）
		authHandler := handlers.NewAuthHandler(userService, jwtManager)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token

			// 🔒 获取当前用户完整信息
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// Webhook入站路由（供外部消息服务商回调，无会话认证，凭令牌路由）
		webhookHandler := handlers.NewWebhookHandler(webhookService)
		api.POST("/webhooks/:token", webhookHandler.Receive)

		// 🔒 租户管理（仅平台管理员）
		tenantHandler := handlers.NewTenantHandler(tenantService)
		tenants := api.Group("/tenants", auth.RequireLogin(), auth.RequirePlatformAdmin())
		{
			tenants.POST("", tenantHandler.Create)
			tenants.GET("", tenantHandler.List)
			tenants.GET("/stats", tenantHandler.Stats)
			tenants.GET("/:id", tenantHandler.GetByID)
			tenants.PUT("/:id/name", tenantHandler.UpdateName)
			tenants.PUT("/:id/status", tenantHandler.UpdateStatus)
		}

		// 🔒 安全审计（仅平台管理员）
		auditHandler := handlers.NewAuditHandler(auditService, jwtManager, redisQueue)
		audit := api.Group("/audit")
		{
			audit.GET("/violations", auth.RequireLogin(), auth.RequirePlatformAdmin(), auditHandler.List)
			audit.GET("/stream", auditHandler.Stream) // WebSocket内部自行校验令牌
		}

		// 🔒 以下全部是租户域路由：登录 + 受信租户上下文双重门禁
		scoped := api.Group("", auth.RequireLogin(), tenantGuard.RequireTenantContext())

		// 账户管理（租户管理员）
		accountHandler := handlers.NewAccountHandler(accountService)
		accounts := scoped.Group("/accounts", auth.RequireAdministrator())
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.List)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.POST("/:id/rotate-token", accountHandler.RotateToken)
			accounts.DELETE("/:id", accountHandler.Delete)
		}

		// 收件箱管理
		inboxHandler := handlers.NewInboxHandler(inboxService)
		inboxes := scoped.Group("/inboxes")
		{
			inboxes.POST("", auth.RequireAdministrator(), inboxHandler.Create)
			inboxes.GET("", inboxHandler.List)
			inboxes.GET("/:id", inboxHandler.GetByID)
			inboxes.PUT("/:id/name", auth.RequireAdministrator(), inboxHandler.Rename)
			inboxes.DELETE("/:id", auth.RequireAdministrator(), inboxHandler.Delete)
			inboxes.DELETE("/:id/purge", auth.RequireAdministrator(), inboxHandler.HardDelete)
		}

		// 套餐管理
		planHandler := handlers.NewPlanHandler(planService)
		plans := scoped.Group("/plans")
		{
			plans.POST("", auth.RequireAdministrator(), planHandler.Create)
			plans.GET("", planHandler.List)
			plans.GET("/:id", planHandler.GetByID)
			plans.PUT("/:id", auth.RequireAdministrator(), planHandler.Update)
			plans.DELETE("/:id", auth.RequireAdministrator(), planHandler.Delete)
			plans.DELETE("/:id/purge", auth.RequireAdministrator(), planHandler.HardDelete)
		}

		// 配置项管理
		settingHandler := handlers.NewSettingHandler(settingService)
		settings := scoped.Group("/settings")
		{
			settings.POST("", auth.RequireAdministrator(), settingHandler.Create)
			settings.GET("", settingHandler.List)
			settings.GET("/:id", settingHandler.GetByID)
			settings.GET("/key/:key", settingHandler.GetByKey)
			settings.PUT("/:id", auth.RequireAdministrator(), settingHandler.Update)
			settings.DELETE("/:id", auth.RequireAdministrator(), settingHandler.Delete)
			settings.DELETE("/:id/purge", auth.RequireAdministrator(), settingHandler.HardDelete)
		}

		// 点数包管理
		creditPackageHandler := handlers.NewCreditPackageHandler(creditPackageService)
		creditPackages := scoped.Group("/credit-packages")
		{
			creditPackages.POST("", auth.RequireAdministrator(), creditPackageHandler.Create)
			creditPackages.GET("", creditPackageHandler.List)
			creditPackages.GET("/:id", creditPackageHandler.GetByID)
			creditPackages.PUT("/:id", auth.RequireAdministrator(), creditPackageHandler.Update)
			creditPackages.DELETE("/:id", auth.RequireAdministrator(), creditPackageHandler.Delete)
			creditPackages.DELETE("/:id/purge", auth.RequireAdministrator(), creditPackageHandler.HardDelete)
		}

		// 坐席管理
		agentHandler := handlers.NewAgentHandler(userService, ownershipService)
		agents := scoped.Group("/agents")
		{
			agents.POST("", auth.RequireAdministrator(), agentHandler.Create)
			agents.GET("", agentHandler.List)
			agents.GET("/:id", tenantGuard.ValidateUserIDParam("id"), agentHandler.GetByID)
			agents.POST("/filter", agentHandler.Filter)
		}

		// Webhook投递记录查询
		scoped.GET("/webhook-deliveries", webhookHandler.ListDeliveries)
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "MSGHUB",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
