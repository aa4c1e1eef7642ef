package service

import (
	"context"
	"fmt"
	"time"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/pkg/cache"
	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"
)

// ==================== AccountService ====================

// AccountService 账号管理服务: 列表 / 暂停恢复 / 断开 / 概要同步
type AccountService struct {
	accountRepo     repository.AccountRepository
	applicationRepo repository.ApplicationRepository
	dispatcher      net.Dispatcher
	metrics         *cache.MetricCache // 可为 nil
}

// NewAccountService 创建账号管理服务
func NewAccountService(
	accountRepo repository.AccountRepository,
	applicationRepo repository.ApplicationRepository,
	dispatcher net.Dispatcher,
	metrics *cache.MetricCache,
) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		applicationRepo: applicationRepo,
		dispatcher:      dispatcher,
		metrics:         metrics,
	}
}

// ==================== 查询 ====================

// ListAccounts 当前用户的全部账号
func (s *AccountService) ListAccounts(ctx context.Context, ownerID int64) ([]dto.AccountInfo, error) {
	accounts, err := s.accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.AccountInfo, 0, len(accounts))
	for i := range accounts {
		infos = append(infos, toAccountInfo(&accounts[i]))
	}
	return infos, nil
}

// GetAccount 账号详情
func (s *AccountService) GetAccount(ctx context.Context, ownerID, accountID int64) (*model.Account, error) {
	return s.getOwned(ctx, ownerID, accountID)
}

// ==================== 状态变更 ====================

// Pause 暂停账号，定时任务与看板都会跳过
func (s *AccountService) Pause(ctx context.Context, ownerID, accountID int64) error {
	account, err := s.getOwned(ctx, ownerID, accountID)
	if err != nil {
		return err
	}
	if account.Status != model.AccountStatusActive {
		return fmt.Errorf("账号当前状态不可暂停")
	}
	return s.accountRepo.UpdateStatus(ctx, accountID, model.AccountStatusPaused)
}

// Resume 恢复账号
func (s *AccountService) Resume(ctx context.Context, ownerID, accountID int64) error {
	account, err := s.getOwned(ctx, ownerID, accountID)
	if err != nil {
		return err
	}
	if account.Status != model.AccountStatusPaused {
		return fmt.Errorf("账号当前状态不可恢复")
	}
	if account.TokenStatus != model.TokenStatusValid {
		// token 失效的账号恢复后仍需重新授权
		return s.accountRepo.UpdateStatus(ctx, accountID, model.AccountStatusExpired)
	}
	return s.accountRepo.UpdateStatus(ctx, accountID, model.AccountStatusActive)
}

// Disconnect 断开账号，软删除，历史数据保留
func (s *AccountService) Disconnect(ctx context.Context, ownerID, accountID int64) error {
	if _, err := s.getOwned(ctx, ownerID, accountID); err != nil {
		return err
	}
	s.metrics.Invalidate(ctx, accountID)
	return s.accountRepo.Delete(ctx, accountID)
}

// ==================== 概要同步 ====================

// SyncProfile 同步账号概要: 信誉 + 在售商品数
func (s *AccountService) SyncProfile(ctx context.Context, account *model.Account) error {
	var user meli.UserDTO
	userURL := fmt.Sprintf("%s/users/%d", meli.BaseURL, account.MeliUserID)
	if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, userURL, &user); err != nil {
		return fmt.Errorf("拉取账号概要失败: %w", err)
	}

	account.Nickname = user.Nickname
	account.SiteID = user.SiteID
	if user.Email != "" {
		account.Email = user.Email
	}
	if rep := user.SellerReputation; rep != nil {
		account.ReputationLevel = rep.LevelID
		account.PowerSellerTier = rep.PowerSellerStatus
		account.RatingPositive = rep.Transactions.Ratings.Positive
		account.TotalSoldCount = rep.Transactions.Completed
	}

	// 在售商品数只取 search total，不逐个拉详情
	var items meli.ItemSearchResp
	itemsURL := fmt.Sprintf("%s/users/%d/items/search?status=active&limit=1", meli.BaseURL, account.MeliUserID)
	if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, itemsURL, &items); err == nil {
		account.ActiveItemCount = items.Paging.Total
	}

	now := time.Now()
	account.MeliSyncedAt = &now

	if err := s.accountRepo.SaveOrUpdate(ctx, account); err != nil {
		return err
	}
	s.metrics.Invalidate(ctx, account.ID)
	return nil
}

// ==================== 开发者应用 ====================

// CreateApplication 录入 ML 开发者应用凭证
func (s *AccountService) CreateApplication(ctx context.Context, req *dto.ApplicationRequest) (*model.Application, error) {
	if existing, err := s.applicationRepo.GetByClientID(ctx, req.ClientID); err == nil && existing != nil {
		return nil, fmt.Errorf("client_id %s 已存在", req.ClientID)
	}

	app := &model.Application{
		Name:         req.Name,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		RedirectURI:  req.RedirectURI,
		SiteID:       req.SiteID,
		Status:       1,
	}
	if app.SiteID == "" {
		app.SiteID = "MLB"
	}
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// ListApplications 应用列表
func (s *AccountService) ListApplications(ctx context.Context) ([]model.Application, error) {
	return s.applicationRepo.List(ctx)
}

// UpdateApplication 更新应用配置
func (s *AccountService) UpdateApplication(ctx context.Context, id int64, req *dto.ApplicationRequest) error {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("应用不存在")
	}

	app.Name = req.Name
	app.ClientID = req.ClientID
	app.ClientSecret = req.ClientSecret
	app.RedirectURI = req.RedirectURI
	if req.SiteID != "" {
		app.SiteID = req.SiteID
	}
	return s.applicationRepo.Update(ctx, app)
}

func (s *AccountService) getOwned(ctx context.Context, ownerID, accountID int64) (*model.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("账号不存在")
	}
	if account.OwnerID != ownerID {
		return nil, fmt.Errorf("无权访问该账号")
	}
	return account, nil
}

func toAccountInfo(account *model.Account) dto.AccountInfo {
	return dto.AccountInfo{
		ID:              account.ID,
		MeliUserID:      account.MeliUserID,
		Nickname:        account.Nickname,
		SiteID:          account.SiteID,
		Email:           account.Email,
		Status:          account.Status,
		TokenStatus:     account.TokenStatus,
		ActiveItemCount: account.ActiveItemCount,
		TotalSoldCount:  account.TotalSoldCount,
		ReputationLevel: account.ReputationLevel,
		PowerSellerTier: account.PowerSellerTier,
		RatingPositive:  account.RatingPositive,
		MeliSyncedAt:    account.MeliSyncedAt,
		CreatedAt:       account.CreatedAt,
	}
}
