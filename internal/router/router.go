package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"meli_hub_v1_202608/internal/controller"
	"meli_hub_v1_202608/internal/middleware"

	_ "meli_hub_v1_202608/docs"
)

// Controllers 路由层依赖的全部控制器
type Controllers struct {
	User      *controller.UserController
	Auth      *controller.AuthController
	Account   *controller.AccountController
	Dashboard *controller.DashboardController
	Order     *controller.OrderController
	Product   *controller.ProductController
	Question  *controller.QuestionController
	Claim     *controller.ClaimController
	Shipment  *controller.ShipmentController
	Message   *controller.MessageController
	Invoice   *controller.InvoiceController
	Payment   *controller.PaymentController
	Catalog   *controller.CatalogController
	Sync      *controller.SyncController
	Webhook   *controller.WebhookController
}

// SetupRouter 注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.Default()

	// Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ML 通知回调，无鉴权（ML 不带我们的 token）
	r.POST("/webhooks/meli", ctls.Webhook.Receive)

	api := r.Group("/api/v1")

	// 公开接口
	{
		api.POST("/users/register", ctls.User.Register)
		api.POST("/users/login", ctls.User.Login)
		api.POST("/users/refresh", ctls.User.RefreshToken)

		// ML OAuth 回跳，state 自带防伪
		api.GET("/auth/callback", ctls.Auth.Callback)
	}

	// 登录后接口，审计中间件把 JWT 用户注入 request context 供 GORM 回调落库
	authed := api.Group("", middleware.JWTAuth(), middleware.AuditContext())
	{
		// 用户
		authed.GET("/users/me", ctls.User.Profile)
		authed.POST("/users/password", ctls.User.ChangePassword)

		// ML 授权
		authed.POST("/auth/connect", ctls.Auth.Connect)

		// 账号管理
		accounts := authed.Group("/accounts")
		{
			accounts.GET("", ctls.Account.List)
			accounts.GET("/:id", ctls.Account.GetByID)
			accounts.POST("/:id/pause", ctls.Account.Pause)
			accounts.POST("/:id/resume", ctls.Account.Resume)
			accounts.DELETE("/:id", ctls.Account.Disconnect)
		}

		// 聚合看板
		authed.GET("/dashboard", ctls.Dashboard.Get)

		// 订单
		orders := authed.Group("/orders")
		{
			orders.GET("", ctls.Order.List)
			orders.GET("/:id", ctls.Order.GetByID)
			orders.PUT("/:id/note", ctls.Order.UpdateNote)
		}

		// 商品
		products := authed.Group("/products")
		{
			products.GET("", ctls.Product.List)
			products.GET("/:id", ctls.Product.GetByID)
			products.PUT("/:id/price", ctls.Product.UpdatePrice)
			products.PUT("/:id/stock", ctls.Product.UpdateStock)
			products.PUT("/:id/status", ctls.Product.UpdateStatus)
			products.PUT("/:id/description", ctls.Product.UpdateDescription)
			products.POST("/:id/pictures", ctls.Product.AddPicture)
		}

		// 咨询
		questions := authed.Group("/questions")
		{
			questions.GET("", ctls.Question.List)
			questions.POST("/:id/answer", ctls.Question.Answer)
			questions.POST("/:id/suggest", ctls.Question.Suggest)
			questions.DELETE("/:id", ctls.Question.Delete)
		}

		// 纠纷
		claims := authed.Group("/claims")
		{
			claims.GET("", ctls.Claim.List)
			claims.GET("/:id", ctls.Claim.GetByID)
			claims.POST("/:id/reply", ctls.Claim.Reply)
		}

		// 物流
		shipments := authed.Group("/shipments")
		{
			shipments.GET("", ctls.Shipment.List)
			shipments.GET("/:id", ctls.Shipment.GetByID)
			shipments.GET("/:id/label", ctls.Shipment.Label)
		}

		// 站内信
		messages := authed.Group("/messages/packs")
		{
			messages.GET("", ctls.Message.ListPacks)
			messages.GET("/:id", ctls.Message.GetThread)
			messages.POST("/:id", ctls.Message.Send)
		}

		// 发票
		invoices := authed.Group("/invoices")
		{
			invoices.GET("", ctls.Invoice.List)
			invoices.GET("/order/:order_id", ctls.Invoice.ListByOrder)
			invoices.GET("/:id", ctls.Invoice.GetByID)
			invoices.POST("/:id/reissue", ctls.Invoice.Reissue)
		}

		// 资金
		authed.GET("/payments", ctls.Payment.ListPayments)
		authed.POST("/payments/:id/refund", ctls.Payment.Refund)
		authed.GET("/settlements", ctls.Payment.ListSettlements)
		authed.GET("/settlements/summary", ctls.Payment.SettlementSummary)
		authed.GET("/subscriptions", ctls.Payment.ListSubscriptions)
		authed.POST("/subscriptions/:id/pause", ctls.Payment.PauseSubscription)
		authed.POST("/subscriptions/:id/cancel", ctls.Payment.CancelSubscription)

		// 目录竞价
		authed.GET("/catalog/positions", ctls.Catalog.ListPositions)
		authed.GET("/catalog/positions/:id/items/:item_id", ctls.Catalog.GetPosition)

		// 手动同步
		sync := authed.Group("/sync")
		{
			sync.POST("/accounts/:id/orders", ctls.Sync.TriggerOrders)
			sync.POST("/accounts/:id/products", ctls.Sync.TriggerProducts)
			sync.POST("/accounts/:id/questions", ctls.Sync.TriggerQuestions)
			sync.POST("/accounts/:id/claims", ctls.Sync.TriggerClaims)
			sync.POST("/accounts/:id/payments", ctls.Sync.TriggerPayments)
			sync.GET("/status", ctls.Sync.Status)
		}
	}

	// 管理员接口
	admin := api.Group("", middleware.JWTAuth(), middleware.RequireRole("admin"), middleware.AuditContext())
	{
		admin.POST("/applications", ctls.Account.CreateApplication)
		admin.GET("/applications", ctls.Account.ListApplications)
		admin.PUT("/applications/:id", ctls.Account.UpdateApplication)

		admin.PUT("/users/:id/active", ctls.User.SetActive)

		admin.POST("/sync/orders", ctls.Sync.TriggerAllOrders)
		admin.POST("/sync/products", ctls.Sync.TriggerAllProducts)
	}

	return r
}
