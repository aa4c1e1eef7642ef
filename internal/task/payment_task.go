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

// ==================== PaymentSyncTask 资金同步任务 ====================

// PaymentSyncTask 收款/订阅/发票同步定时任务
// 资金类数据同步窗口放宽到 30 分钟，降低 MP 接口压力
type PaymentSyncTask struct {
	accountRepo repository.AccountRepository
	paymentSvc  *service.PaymentService
	invoiceSvc  *service.InvoiceService
	cron        *cron.Cron

	concurrencyLimit int
	sleepTime        time.Duration
}

// NewPaymentSyncTask 创建资金同步任务
func NewPaymentSyncTask(
	accountRepo repository.AccountRepository,
	paymentSvc *service.PaymentService,
	invoiceSvc *service.InvoiceService,
) *PaymentSyncTask {
	return &PaymentSyncTask{
		accountRepo:      accountRepo,
		paymentSvc:       paymentSvc,
		invoiceSvc:       invoiceSvc,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 3,
		sleepTime:        300 * time.Millisecond,
	}
}

// Start 启动定时任务
func (t *PaymentSyncTask) Start() {
	// 每 30 分钟执行
	_, err := t.cron.AddFunc("0 */30 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Minute)
		defer cancel()
		t.syncAllAccounts(ctx)
	})
	if err != nil {
		log.Printf("[PaymentSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[PaymentSyncTask] 已启动 (每30分钟)")
}

// Stop 停止任务
func (t *PaymentSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[PaymentSyncTask] 已停止")
}

// SyncAccountNow 手动触发单账号资金同步
func (t *PaymentSyncTask) SyncAccountNow(ctx context.Context, accountID int64) (int, error) {
	account, err := t.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return t.paymentSvc.SyncPayments(ctx, account)
}

func (t *PaymentSyncTask) syncAllAccounts(ctx context.Context) {
	accounts, err := t.accountRepo.ListConnected(ctx)
	if err != nil {
		log.Printf("[PaymentSyncTask] 获取账号列表失败: %v", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	for i := range accounts {
		account := accounts[i]
		select {
		case <-ctx.Done():
			log.Println("[PaymentSyncTask] 任务超时停止")
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

			if _, err := t.paymentSvc.SyncPayments(ctx, &a); err != nil {
				log.Printf("[PaymentSyncTask] 账号 [%s] 收款同步失败: %v", a.Nickname, err)
			}
			if _, err := t.paymentSvc.SyncSubscriptions(ctx, &a); err != nil {
				log.Printf("[PaymentSyncTask] 账号 [%s] 订阅同步失败: %v", a.Nickname, err)
			}
			if _, err := t.invoiceSvc.SyncInvoices(ctx, &a); err != nil {
				log.Printf("[PaymentSyncTask] 账号 [%s] 发票同步失败: %v", a.Nickname, err)
			}
		}(account)
	}

	wg.Wait()
}
