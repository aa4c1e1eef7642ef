package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"

	"gorm.io/datatypes"
)

// ==================== ClaimService ====================

// ClaimService 售后纠纷服务
type ClaimService struct {
	claimRepo   repository.ClaimRepository
	accountRepo repository.AccountRepository
	dispatcher  net.Dispatcher
}

// NewClaimService 创建纠纷服务
func NewClaimService(
	claimRepo repository.ClaimRepository,
	accountRepo repository.AccountRepository,
	dispatcher net.Dispatcher,
) *ClaimService {
	return &ClaimService{
		claimRepo:   claimRepo,
		accountRepo: accountRepo,
		dispatcher:  dispatcher,
	}
}

// ==================== 同步 ====================

// SyncClaims 拉取账号纠纷列表
func (s *ClaimService) SyncClaims(ctx context.Context, account *model.Account) (int, error) {
	if !account.IsConnected() {
		return 0, fmt.Errorf("account %d 未连接", account.ID)
	}

	synced := 0
	offset := 0
	const limit = 30

	for {
		searchURL := fmt.Sprintf("%s/post-purchase/v1/claims/search?limit=%d&offset=%d",
			meli.BaseURL, limit, offset)

		var resp meli.ClaimSearchResp
		if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, searchURL, &resp); err != nil {
			return synced, fmt.Errorf("拉取纠纷失败 (offset %d): %w", offset, err)
		}

		for i := range resp.Data {
			if err := s.upsertClaim(ctx, account.ID, &resp.Data[i]); err != nil {
				log.Printf("[ClaimSync] 纠纷 %d 落库失败: %v", resp.Data[i].ID, err)
				continue
			}
			synced++
		}

		offset += limit
		if offset >= resp.Paging.Total || len(resp.Data) == 0 {
			break
		}
	}

	return synced, nil
}

func (s *ClaimService) upsertClaim(ctx context.Context, accountID int64, dto *meli.ClaimDTO) error {
	claim, err := s.claimRepo.GetByMeliClaimID(ctx, dto.ID)
	if err != nil {
		claim = &model.Claim{MeliClaimID: dto.ID, AccountID: accountID}
	}

	claim.Type = dto.Type
	claim.Stage = dto.Stage
	claim.Status = dto.Status
	claim.ReasonID = dto.ReasonID
	if dto.Resource == "order" {
		claim.MeliOrderID = dto.ResourceID
	}
	if t, err := time.Parse(time.RFC3339, dto.DateCreated); err == nil {
		claim.MeliCreatedAt = &t
	}
	now := time.Now()
	claim.MeliSyncedAt = &now

	if raw, err := json.Marshal(dto); err == nil {
		claim.MeliRawData = datatypes.JSON(raw)
	}

	return s.claimRepo.SaveOrUpdate(ctx, claim)
}

// ==================== 查询与操作 ====================

// ListClaims 纠纷列表
func (s *ClaimService) ListClaims(ctx context.Context, ownerID int64, filter repository.ClaimFilter) ([]model.Claim, int64, error) {
	accountIDs, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, filter.AccountIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(accountIDs) == 0 {
		return []model.Claim{}, 0, nil
	}
	filter.AccountIDs = accountIDs
	return s.claimRepo.List(ctx, filter)
}

// GetClaim 纠纷详情
func (s *ClaimService) GetClaim(ctx context.Context, ownerID, claimID int64) (*model.Claim, error) {
	return s.getOwned(ctx, ownerID, claimID)
}

// Reply 纠纷下发消息: POST /post-purchase/v1/claims/:id/actions/send-message
func (s *ClaimService) Reply(ctx context.Context, ownerID, claimID int64, text string) error {
	claim, err := s.getOwned(ctx, ownerID, claimID)
	if err != nil {
		return err
	}
	if !claim.IsOpen() {
		return fmt.Errorf("纠纷已关闭，不可回应")
	}

	url := fmt.Sprintf("%s/post-purchase/v1/claims/%d/actions/send-message", meli.BaseURL, claim.MeliClaimID)
	body := map[string]interface{}{
		"receiver_role": "complainant",
		"message":       text,
	}
	if err = sendMeliJSON(ctx, s.dispatcher, claim.AccountID, http.MethodPost, url, body, nil); err != nil {
		return fmt.Errorf("ML 纠纷回应失败: %w", err)
	}

	claim.LastSellerReply = text
	now := time.Now()
	claim.RepliedAt = &now
	return s.claimRepo.SaveOrUpdate(ctx, claim)
}

func (s *ClaimService) getOwned(ctx context.Context, ownerID, claimID int64) (*model.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("纠纷不存在")
	}
	account, err := s.accountRepo.GetByID(ctx, claim.AccountID)
	if err != nil || account.OwnerID != ownerID {
		return nil, fmt.Errorf("无权访问该纠纷")
	}
	return claim, nil
}
