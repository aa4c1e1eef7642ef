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

// TokenTask Token 保活任务
// ML access_token 有效期 6 小时，提前刷新避免业务请求撞上 401
type TokenTask struct {
	AccountRepo repository.AccountRepository
	AuthService *service.AuthService
	Cron        *cron.Cron

	// 控制并发刷新数量，防止 token 端点被打爆
	concurrencyLimit int
	sleepTime        time.Duration
	refreshMargin    time.Duration
}

// NewTokenTask 创建 Token 保活任务
func NewTokenTask(accountRepo repository.AccountRepository, authService *service.AuthService) *TokenTask {
	return &TokenTask{
		AccountRepo:      accountRepo,
		AuthService:      authService,
		Cron:             cron.New(cron.WithSeconds()), // 支持秒级控制
		concurrencyLimit: 20,
		sleepTime:        50 * time.Millisecond, // 每个协程启动间隔，平滑波峰
		refreshMargin:    time.Hour,             // 剩余有效期低于 1 小时就刷新
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[TokenTask] 服务启动，正在执行首次 Token 检查...")
		t.refreshJob(ctx)
	}()

	// 定时策略
	_, err := t.Cron.AddFunc("0 0/40 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.refreshJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动 Token 定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("[TokenTask] Token 保活任务已启动 (每40分钟检查一次)")
}

// Stop 停止任务
func (t *TokenTask) Stop() {
	ctx := t.Cron.Stop()
	<-ctx.Done()
	log.Println("[TokenTask] 已停止")
}

// refreshJob 自动刷新逻辑
func (t *TokenTask) refreshJob(ctx context.Context) {
	accounts, err := t.AccountRepo.FindExpiringAccounts(ctx, t.refreshMargin)
	if err != nil {
		log.Printf("[TokenTask] 过期账号查询失败: %v", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	log.Printf("[TokenTask] 开始刷新 %d 个账号的 Token，并发上限: %d", len(accounts), t.concurrencyLimit)

	for _, account := range accounts {
		select {
		case <-ctx.Done():
			log.Println("[TokenTask] 任务超时停止")
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

			if err := t.AuthService.RefreshAccessToken(ctx, &a); err != nil {
				// 日志仅记录，不中断其他协程
				log.Printf("[TokenTask] 账号 [%s] 刷新失败: %v", a.Nickname, err)
			}
		}(account)
	}

	wg.Wait()
	log.Println("[TokenTask] 本轮 Token 刷新完成")
}
