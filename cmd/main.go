package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meli_hub_v1_202608/internal/config"
	"meli_hub_v1_202608/internal/controller"
	"meli_hub_v1_202608/internal/events"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/router"
	"meli_hub_v1_202608/internal/service"
	"meli_hub_v1_202608/internal/task"
	"meli_hub_v1_202608/pkg/cache"
	"meli_hub_v1_202608/pkg/database"
	"meli_hub_v1_202608/pkg/mpago"
	"meli_hub_v1_202608/pkg/net"
)

// @title MeliHub 多账号运营中台 API
// @version 1.0
// @description Mercado Livre / Mercado Pago 多账号卖家运营服务
// @BasePath /api/v1
func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 1. 初始化数据库
	db := initDatabase(cfg)

	// 2. 初始化依赖
	deps := initDependencies(cfg, db)

	// 3. 启动定时任务
	stopTasks := initTasks(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(cfg, r, func() {
		stopTasks()
		if deps.Producer != nil {
			_ = deps.Producer.Close()
		}
	})
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Dispatcher  net.Dispatcher
	Producer    *events.Producer
	Services    *Services
	Controllers *router.Controllers
	TaskManager *task.TaskManager
	TokenTask   *task.TokenTask
}

// Repositories 仓库集合
type Repositories struct {
	User        repository.UserRepository
	Application repository.ApplicationRepository
	Account     repository.AccountRepository
	Order       repository.OrderRepository
	Product     repository.ProductRepository
	Question    repository.QuestionRepository
	Claim       repository.ClaimRepository
	Shipment    repository.ShipmentRepository
	Message     repository.MessageRepository
	Payment     repository.PaymentRepository
	Invoice     repository.InvoiceRepository
	Catalog     repository.CatalogRepository
}

// Services 服务集合
type Services struct {
	User      *service.UserService
	Auth      *service.AuthService
	Account   *service.AccountService
	Metrics   *service.MetricsService
	Dashboard *service.DashboardService
	Order     *service.OrderService
	Product   *service.ProductService
	Question  *service.QuestionService
	Claim     *service.ClaimService
	Shipment  *service.ShipmentService
	Message   *service.MessageService
	Payment   *service.PaymentService
	Invoice   *service.InvoiceService
	Catalog   *service.CatalogService
	AI        *service.AIService
	Storage   service.StorageProvider
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	db := database.InitDB(cfg.DatabaseDSN,
		// 系统
		&model.SysUser{}, &model.Application{}, &model.Account{},
		// 销售
		&model.Order{}, &model.OrderItem{}, &model.Shipment{},
		// 商品
		&model.Product{}, &model.CatalogPosition{},
		// 买家互动
		&model.Question{}, &model.Claim{},
		&model.MessagePack{}, &model.Message{},
		// 资金
		&model.Payment{}, &model.Settlement{}, &model.Subscription{},
		// 税务
		&model.Invoice{},
	)
	middleware.RegisterAuditCallbacks(db)
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- JWT --------
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWTSecret,
		AccessTokenTTL:  time.Duration(cfg.JWTExpireHours) * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "meli-hub",
	})

	// -------- 基础服务 --------
	authSvc := service.NewAuthService(repos.Account, repos.Application)
	dispatcher := net.NewDispatcher(authSvc)
	mpClient := mpago.NewClient()
	metricCache := cache.New(cfg.RedisAddr, 10*time.Minute)
	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)

	// -------- 存储 & AI --------
	storageSvc := initStorage(cfg)
	aiSvc := service.NewAIService(&service.AIConfig{
		ApiKey:    cfg.GeminiAPIKey,
		TextModel: "gemini-2.0-flash",
	})

	// -------- 业务服务 --------
	services := &Services{
		Auth:    authSvc,
		AI:      aiSvc,
		Storage: storageSvc,
	}
	services.User = service.NewUserService(repos.User)
	services.Metrics = service.NewMetricsService(dispatcher, metricCache)
	services.Account = service.NewAccountService(repos.Account, repos.Application, dispatcher, metricCache)
	services.Order = service.NewOrderService(repos.Order, repos.Account, dispatcher, producer)
	services.Product = service.NewProductService(repos.Product, repos.Account, dispatcher, storageSvc)
	services.Question = service.NewQuestionService(repos.Question, repos.Product, repos.Account, dispatcher, aiSvc)
	services.Claim = service.NewClaimService(repos.Claim, repos.Account, dispatcher)
	services.Shipment = service.NewShipmentService(repos.Shipment, repos.Order, repos.Account, dispatcher)
	services.Message = service.NewMessageService(repos.Message, repos.Account, dispatcher)
	services.Payment = service.NewPaymentService(repos.Payment, repos.Account, mpClient, authSvc)
	services.Invoice = service.NewInvoiceService(repos.Invoice, repos.Account, dispatcher)
	services.Catalog = service.NewCatalogService(repos.Catalog, repos.Product, repos.Account, dispatcher)
	services.Dashboard = service.NewDashboardService(
		repos.Account, repos.Order, repos.Product,
		repos.Question, repos.Claim, repos.Shipment,
		services.Metrics,
	)

	// -------- 后台任务 --------
	taskManager := task.NewTaskManager(&task.TaskManagerDeps{
		AccountRepo:     repos.Account,
		OrderRepo:       repos.Order,
		OrderService:    services.Order,
		ShipmentService: services.Shipment,
		ProductService:  services.Product,
		CatalogService:  services.Catalog,
		QuestionService: services.Question,
		ClaimService:    services.Claim,
		PaymentService:  services.Payment,
		InvoiceService:  services.Invoice,
	}, task.DefaultConfig())
	tokenTask := task.NewTokenTask(repos.Account, authSvc)

	// -------- Controller 层 --------
	controllers := initControllers(repos, services, taskManager)

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Dispatcher:  dispatcher,
		Producer:    producer,
		Services:    services,
		Controllers: controllers,
		TaskManager: taskManager,
		TokenTask:   tokenTask,
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        repository.NewUserRepository(db),
		Application: repository.NewApplicationRepository(db),
		Account:     repository.NewAccountRepository(db),
		Order:       repository.NewOrderRepository(db),
		Product:     repository.NewProductRepository(db),
		Question:    repository.NewQuestionRepository(db),
		Claim:       repository.NewClaimRepository(db),
		Shipment:    repository.NewShipmentRepository(db),
		Message:     repository.NewMessageRepository(db),
		Payment:     repository.NewPaymentRepository(db),
		Invoice:     repository.NewInvoiceRepository(db),
		Catalog:     repository.NewCatalogRepository(db),
	}
}

// initStorage 初始化商品图存储
func initStorage(cfg *config.Config) service.StorageProvider {
	provider := "local"
	if cfg.S3Bucket != "" {
		provider = "s3"
	}
	storage, err := service.NewStorageProvider(&service.StorageConfig{
		Provider: provider,
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		BasePath: "meli-hub",
		LocalDir: "./uploads",
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败: %v", err)
		return nil
	}
	return storage
}

// initControllers 初始化所有控制器
func initControllers(repos *Repositories, svc *Services, tm *task.TaskManager) *router.Controllers {
	return &router.Controllers{
		User:      controller.NewUserController(svc.User),
		Auth:      controller.NewAuthController(svc.Auth),
		Account:   controller.NewAccountController(svc.Account),
		Dashboard: controller.NewDashboardController(svc.Dashboard),
		Order:     controller.NewOrderController(svc.Order),
		Product:   controller.NewProductController(svc.Product),
		Question:  controller.NewQuestionController(svc.Question),
		Claim:     controller.NewClaimController(svc.Claim),
		Shipment:  controller.NewShipmentController(svc.Shipment),
		Message:   controller.NewMessageController(svc.Message),
		Invoice:   controller.NewInvoiceController(svc.Invoice),
		Payment:   controller.NewPaymentController(svc.Payment),
		Catalog:   controller.NewCatalogController(svc.Catalog),
		Sync:      controller.NewSyncController(tm),
		Webhook: controller.NewWebhookController(
			repos.Account,
			svc.Order, svc.Product, svc.Question, svc.Claim,
			svc.Shipment, svc.Payment, svc.Invoice,
		),
	}
}

// ==================== 定时任务 ====================

// initTasks 启动定时任务，返回统一的停止函数
func initTasks(deps *Dependencies) func() {
	deps.TokenTask.Start()
	deps.TaskManager.Start()
	log.Println("定时任务已启动")

	return func() {
		deps.TaskManager.Stop()
		deps.TokenTask.Stop()
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(cfg *config.Config, r *gin.Engine, onShutdown func()) {
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")
	onShutdown()

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
