package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"
)

// ==================== TaskManager 业务同步任务管理器 ====================

// TaskManager 统一管理业务同步任务
// 管理范围：Order、Product、Question/Claim、Payment 同步
// 不包含：Token 刷新（基础设施层独立管理）
type TaskManager struct {
	orderTask    *OrderSyncTask
	productTask  *ProductSyncTask
	questionTask *QuestionSyncTask
	paymentTask  *PaymentSyncTask

	limiter *middleware.SyncRateLimiter
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	// Repositories
	AccountRepo repository.AccountRepository
	OrderRepo   repository.OrderRepository

	// Services
	OrderService    *service.OrderService
	ShipmentService *service.ShipmentService
	ProductService  *service.ProductService
	CatalogService  *service.CatalogService
	QuestionService *service.QuestionService
	ClaimService    *service.ClaimService
	PaymentService  *service.PaymentService
	InvoiceService  *service.InvoiceService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	OrderEnabled     bool
	OrderConcurrency int

	ProductEnabled     bool
	ProductConcurrency int

	QuestionEnabled bool
	PaymentEnabled  bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		OrderEnabled:     true,
		OrderConcurrency: 5,

		ProductEnabled:     true,
		ProductConcurrency: 3,

		QuestionEnabled: true,
		PaymentEnabled:  true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{limiter: middleware.GetLimiter()}

	if cfg.OrderEnabled && deps.OrderService != nil {
		tm.orderTask = NewOrderSyncTask(deps.AccountRepo, deps.OrderRepo, deps.OrderService, deps.ShipmentService)
		tm.orderTask.SetConcurrency(cfg.OrderConcurrency, 200*time.Millisecond)
	}

	if cfg.ProductEnabled && deps.ProductService != nil {
		tm.productTask = NewProductSyncTask(deps.AccountRepo, deps.ProductService, deps.CatalogService)
		tm.productTask.SetConcurrency(cfg.ProductConcurrency, 300*time.Millisecond)
	}

	if cfg.QuestionEnabled && deps.QuestionService != nil {
		tm.questionTask = NewQuestionSyncTask(deps.AccountRepo, deps.QuestionService, deps.ClaimService)
	}

	if cfg.PaymentEnabled && deps.PaymentService != nil {
		tm.paymentTask = NewPaymentSyncTask(deps.AccountRepo, deps.PaymentService, deps.InvoiceService)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动业务同步任务...")

	if tm.orderTask != nil {
		tm.orderTask.Start()
	}
	if tm.productTask != nil {
		tm.productTask.Start()
	}
	if tm.questionTask != nil {
		tm.questionTask.Start()
	}
	if tm.paymentTask != nil {
		tm.paymentTask.Start()
	}

	log.Println("[TaskManager] 业务同步任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止业务同步任务...")

	if tm.orderTask != nil {
		tm.orderTask.Stop()
	}
	if tm.productTask != nil {
		tm.productTask.Stop()
	}
	if tm.questionTask != nil {
		tm.questionTask.Stop()
	}
	if tm.paymentTask != nil {
		tm.paymentTask.Stop()
	}

	log.Println("[TaskManager] 业务同步任务已全部停止")
}

// ==================== 手动触发接口 ====================
// 手动触发统一过限流器，防止前端按钮连点打爆 ML 配额

// TriggerOrderSync 触发账号订单同步
func (tm *TaskManager) TriggerOrderSync(ctx context.Context, accountID int64) (int, error) {
	if tm.orderTask == nil {
		return 0, ErrTaskDisabled
	}
	if err := tm.checkLimit(accountID, middleware.SyncTypeOrder); err != nil {
		return 0, err
	}
	return tm.orderTask.SyncAccountNow(ctx, accountID)
}

// TriggerAllOrdersSync 触发所有账号订单同步
func (tm *TaskManager) TriggerAllOrdersSync() {
	if tm.orderTask != nil {
		tm.orderTask.SyncAllNow()
	}
}

// TriggerProductSync 触发账号商品同步（含目录位次）
func (tm *TaskManager) TriggerProductSync(ctx context.Context, accountID int64) (int, error) {
	if tm.productTask == nil {
		return 0, ErrTaskDisabled
	}
	if err := tm.checkLimit(accountID, middleware.SyncTypeProduct); err != nil {
		return 0, err
	}
	return tm.productTask.SyncAccountNow(ctx, accountID)
}

// TriggerAllProductsSync 触发所有账号商品同步
func (tm *TaskManager) TriggerAllProductsSync() {
	if tm.productTask != nil {
		tm.productTask.SyncAllNow()
	}
}

// TriggerQuestionSync 触发账号咨询同步
func (tm *TaskManager) TriggerQuestionSync(ctx context.Context, accountID int64) (int, error) {
	if tm.questionTask == nil {
		return 0, ErrTaskDisabled
	}
	if err := tm.checkLimit(accountID, middleware.SyncTypeQuestion); err != nil {
		return 0, err
	}
	return tm.questionTask.SyncAccountNow(ctx, accountID)
}

// TriggerClaimSync 触发账号纠纷同步
func (tm *TaskManager) TriggerClaimSync(ctx context.Context, accountID int64) (int, error) {
	if tm.questionTask == nil {
		return 0, ErrTaskDisabled
	}
	if err := tm.checkLimit(accountID, middleware.SyncTypeClaim); err != nil {
		return 0, err
	}
	return tm.questionTask.SyncClaimsNow(ctx, accountID)
}

// TriggerPaymentSync 触发账号收款同步
func (tm *TaskManager) TriggerPaymentSync(ctx context.Context, accountID int64) (int, error) {
	if tm.paymentTask == nil {
		return 0, ErrTaskDisabled
	}
	if err := tm.checkLimit(accountID, middleware.SyncTypePayment); err != nil {
		return 0, err
	}
	return tm.paymentTask.SyncAccountNow(ctx, accountID)
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"order":    tm.orderTask != nil,
		"product":  tm.productTask != nil,
		"question": tm.questionTask != nil,
		"payment":  tm.paymentTask != nil,
	}
}

func (tm *TaskManager) checkLimit(accountID int64, syncType middleware.SyncType) error {
	key := middleware.AccountSyncKey(accountID, syncType)
	result := tm.limiter.Check(key, middleware.GetInterval(syncType))
	if !result.Allowed {
		return fmt.Errorf("%w: 请 %s 后重试", ErrRateLimited, result.RetryAfter.Round(time.Second))
	}
	return nil
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
	ErrRateLimited  TaskError = "sync rate limited"
)
