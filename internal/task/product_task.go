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

// ==================== ProductSyncTask 商品同步任务 ====================

// ProductSyncTask 商品同步定时任务
// 商品变化慢，低频全量拉取；目录位次一并刷新
type ProductSyncTask struct {
	accountRepo repository.AccountRepository
	productSvc  *service.ProductService
	catalogSvc  *service.CatalogService
	cron        *cron.Cron

	concurrencyLimit int
	sleepTime        time.Duration
}

// NewProductSyncTask 创建商品同步任务
func NewProductSyncTask(
	accountRepo repository.AccountRepository,
	productSvc *service.ProductService,
	catalogSvc *service.CatalogService,
) *ProductSyncTask {
	return &ProductSyncTask{
		accountRepo:      accountRepo,
		productSvc:       productSvc,
		catalogSvc:       catalogSvc,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 3,
		sleepTime:        300 * time.Millisecond,
	}
}

// SetConcurrency 设置并发参数
func (t *ProductSyncTask) SetConcurrency(limit int, sleep time.Duration) {
	t.concurrencyLimit = limit
	t.sleepTime = sleep
}

// Start 启动定时任务
func (t *ProductSyncTask) Start() {
	// 每 6 小时执行
	_, err := t.cron.AddFunc("0 0 */6 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.syncAllAccounts(ctx)
	})
	if err != nil {
		log.Printf("[ProductSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[ProductSyncTask] 已启动 (每6小时)")
}

// Stop 停止任务
func (t *ProductSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[ProductSyncTask] 已停止")
}

// SyncAccountNow 手动触发单账号商品同步
func (t *ProductSyncTask) SyncAccountNow(ctx context.Context, accountID int64) (int, error) {
	account, err := t.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	synced, err := t.productSvc.SyncProducts(ctx, account)
	if err != nil {
		return synced, err
	}

	if _, err := t.catalogSvc.SyncPositions(ctx, account); err != nil {
		log.Printf("[ProductSyncTask] 账号 [%s] 目录位次刷新失败: %v", account.Nickname, err)
	}
	return synced, nil
}

// SyncAllNow 手动触发全量同步（后台执行）
func (t *ProductSyncTask) SyncAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.syncAllAccounts(ctx)
	}()
}

func (t *ProductSyncTask) syncAllAccounts(ctx context.Context) {
	accounts, err := t.accountRepo.ListConnected(ctx)
	if err != nil {
		log.Printf("[ProductSyncTask] 获取账号列表失败: %v", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	log.Printf("[ProductSyncTask] 开始处理 %d 个账号", len(accounts))

	for i := range accounts {
		account := accounts[i]
		select {
		case <-ctx.Done():
			log.Println("[ProductSyncTask] 任务超时停止")
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

			if _, err := t.productSvc.SyncProducts(ctx, &a); err != nil {
				log.Printf("[ProductSyncTask] 账号 [%s] 商品同步失败: %v", a.Nickname, err)
				return
			}
			if _, err := t.catalogSvc.SyncPositions(ctx, &a); err != nil {
				log.Printf("[ProductSyncTask] 账号 [%s] 目录位次刷新失败: %v", a.Nickname, err)
			}
		}(account)
	}

	wg.Wait()
	log.Println("[ProductSyncTask] 本轮商品同步完成")
}
