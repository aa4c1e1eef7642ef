package task

import (
	"context"
	"log"
	"sync"
	"time"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"

	"github.com/robfig/cron/v3"
)

// ==================== OrderSyncTask 订单同步任务 ====================

// OrderSyncTask 订单同步定时任务
// 订单同步后顺带补拉物流单，保证看板待发货告警数据新鲜
type OrderSyncTask struct {
	accountRepo repository.AccountRepository
	orderRepo   repository.OrderRepository
	orderSvc    *service.OrderService
	shipmentSvc *service.ShipmentService
	cron        *cron.Cron

	// 并发控制
	concurrencyLimit int
	sleepTime        time.Duration
	sinceDays        int
}

// NewOrderSyncTask 创建订单同步任务
func NewOrderSyncTask(
	accountRepo repository.AccountRepository,
	orderRepo repository.OrderRepository,
	orderSvc *service.OrderService,
	shipmentSvc *service.ShipmentService,
) *OrderSyncTask {
	return &OrderSyncTask{
		accountRepo:      accountRepo,
		orderRepo:        orderRepo,
		orderSvc:         orderSvc,
		shipmentSvc:      shipmentSvc,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 5,
		sleepTime:        200 * time.Millisecond,
		sinceDays:        7,
	}
}

// SetConcurrency 设置并发参数
func (t *OrderSyncTask) SetConcurrency(limit int, sleep time.Duration) {
	t.concurrencyLimit = limit
	t.sleepTime = sleep
}

// Start 启动定时任务
func (t *OrderSyncTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		log.Println("[OrderSyncTask] 执行首次订单同步...")
		t.syncAllAccounts(ctx)
	}()

	// 每 10 分钟执行
	_, err := t.cron.AddFunc("0 */10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.syncAllAccounts(ctx)
	})
	if err != nil {
		log.Printf("[OrderSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[OrderSyncTask] 已启动 (每10分钟)")
}

// Stop 停止任务
func (t *OrderSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[OrderSyncTask] 已停止")
}

// SyncAccountNow 手动触发单账号同步
func (t *OrderSyncTask) SyncAccountNow(ctx context.Context, accountID int64) (int, error) {
	account, err := t.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return t.orderSvc.SyncOrders(ctx, account, t.sinceDays)
}

// SyncAllNow 手动触发全量同步（后台执行）
func (t *OrderSyncTask) SyncAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.syncAllAccounts(ctx)
	}()
}

// syncAllAccounts 同步所有已连接账号的订单
func (t *OrderSyncTask) syncAllAccounts(ctx context.Context) {
	accounts, err := t.accountRepo.ListConnected(ctx)
	if err != nil {
		log.Printf("[OrderSyncTask] 获取账号列表失败: %v", err)
		return
	}
	if len(accounts) == 0 {
		log.Println("[OrderSyncTask] 无已连接账号需要同步")
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	var (
		totalSynced int
		totalErrors int
		mu          sync.Mutex
	)

	log.Printf("[OrderSyncTask] 开始处理 %d 个账号", len(accounts))

	for i := range accounts {
		account := accounts[i]
		select {
		case <-ctx.Done():
			log.Println("[OrderSyncTask] 任务超时停止")
			wg.Wait()
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		time.Sleep(t.sleepTime)

		go func(a model.Account) {
			defer wg.Done()
			defer func() { <-sem }()

			synced, err := t.orderSvc.SyncOrders(ctx, &a, t.sinceDays)
			mu.Lock()
			if err != nil {
				totalErrors++
				log.Printf("[OrderSyncTask] 账号 [%s] 同步失败: %v", a.Nickname, err)
			} else {
				totalSynced += synced
			}
			mu.Unlock()

			if err == nil {
				t.backfillShipments(ctx, &a)
			}
		}(account)
	}

	wg.Wait()
	log.Printf("[OrderSyncTask] 本轮完成: 同步 %d 单, 失败 %d 个账号", totalSynced, totalErrors)
}

// backfillShipments 订单同步后补拉最近订单的物流单
func (t *OrderSyncTask) backfillShipments(ctx context.Context, account *model.Account) {
	orders, err := t.orderRepo.RecentOrders(ctx, []int64{account.ID}, 20)
	if err != nil {
		log.Printf("[OrderSyncTask] 账号 [%s] 物流补拉跳过: %v", account.Nickname, err)
		return
	}

	for i := range orders {
		if orders[i].ShipmentID == 0 {
			continue
		}
		if err := t.shipmentSvc.SyncShipment(ctx, account, orders[i].ShipmentID); err != nil {
			log.Printf("[OrderSyncTask] 物流单 %d 同步失败: %v", orders[i].ShipmentID, err)
		}
	}
}
