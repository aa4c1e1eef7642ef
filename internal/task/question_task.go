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

// ==================== QuestionSyncTask 咨询/纠纷同步任务 ====================

// QuestionSyncTask 咨询与纠纷同步定时任务
// 两者都直接影响响应时效，合并为高频轮询
type QuestionSyncTask struct {
	accountRepo repository.AccountRepository
	questionSvc *service.QuestionService
	claimSvc    *service.ClaimService
	cron        *cron.Cron

	concurrencyLimit int
	sleepTime        time.Duration
}

// NewQuestionSyncTask 创建咨询同步任务
func NewQuestionSyncTask(
	accountRepo repository.AccountRepository,
	questionSvc *service.QuestionService,
	claimSvc *service.ClaimService,
) *QuestionSyncTask {
	return &QuestionSyncTask{
		accountRepo:      accountRepo,
		questionSvc:      questionSvc,
		claimSvc:         claimSvc,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 5,
		sleepTime:        200 * time.Millisecond,
	}
}

// Start 启动定时任务
func (t *QuestionSyncTask) Start() {
	// 每 5 分钟执行
	_, err := t.cron.AddFunc("0 */5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.syncAllAccounts(ctx)
	})
	if err != nil {
		log.Printf("[QuestionSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[QuestionSyncTask] 已启动 (每5分钟)")
}

// Stop 停止任务
func (t *QuestionSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[QuestionSyncTask] 已停止")
}

// SyncAccountNow 手动触发单账号咨询同步
func (t *QuestionSyncTask) SyncAccountNow(ctx context.Context, accountID int64) (int, error) {
	account, err := t.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return t.questionSvc.SyncQuestions(ctx, account)
}

// SyncClaimsNow 手动触发单账号纠纷同步
func (t *QuestionSyncTask) SyncClaimsNow(ctx context.Context, accountID int64) (int, error) {
	account, err := t.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return t.claimSvc.SyncClaims(ctx, account)
}

func (t *QuestionSyncTask) syncAllAccounts(ctx context.Context) {
	accounts, err := t.accountRepo.ListConnected(ctx)
	if err != nil {
		log.Printf("[QuestionSyncTask] 获取账号列表失败: %v", err)
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
			log.Println("[QuestionSyncTask] 任务超时停止")
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

			if _, err := t.questionSvc.SyncQuestions(ctx, &a); err != nil {
				log.Printf("[QuestionSyncTask] 账号 [%s] 咨询同步失败: %v", a.Nickname, err)
			}
			if _, err := t.claimSvc.SyncClaims(ctx, &a); err != nil {
				log.Printf("[QuestionSyncTask] 账号 [%s] 纠纷同步失败: %v", a.Nickname, err)
			}
		}(account)
	}

	wg.Wait()
}
