package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"

	"gorm.io/datatypes"
)

// ==================== CatalogService ====================

// CatalogService 目录竞价 (Buy Box) 服务
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	productRepo repository.ProductRepository
	accountRepo repository.AccountRepository
	dispatcher  net.Dispatcher
}

// NewCatalogService 创建目录竞价服务
func NewCatalogService(
	catalogRepo repository.CatalogRepository,
	productRepo repository.ProductRepository,
	accountRepo repository.AccountRepository,
	dispatcher net.Dispatcher,
) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		productRepo: productRepo,
		accountRepo: accountRepo,
		dispatcher:  dispatcher,
	}
}

// ==================== 同步 ====================

// SyncPositions 刷新账号下所有目录商品的竞价位次
// 仅 catalog_listing 的在售商品需要查询 price_to_win
func (s *CatalogService) SyncPositions(ctx context.Context, account *model.Account) (int, error) {
	if !account.IsConnected() {
		return 0, fmt.Errorf("account %d 未连接", account.ID)
	}

	synced := 0
	page := 1
	const pageSize = 100

	for {
		products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
			AccountIDs: []int64{account.ID},
			Status:     model.ProductStatusActive,
			Page:       page,
			PageSize:   pageSize,
		})
		if err != nil {
			return synced, err
		}

		for i := range products {
			if !products[i].CatalogListing {
				continue
			}
			if err := s.SyncOne(ctx, account, products[i].MeliItemID); err != nil {
				log.Printf("[CatalogSync] 商品 %s 位次刷新失败: %v", products[i].MeliItemID, err)
				continue
			}
			synced++
		}

		if int64(page*pageSize) >= total || len(products) == 0 {
			break
		}
		page++
	}

	return synced, nil
}

// SyncOne 刷新单个商品的竞价位次: GET /items/:id/price_to_win
func (s *CatalogService) SyncOne(ctx context.Context, account *model.Account, meliItemID string) error {
	var dto meli.PriceToWinDTO
	url := fmt.Sprintf("%s/items/%s/price_to_win", meli.BaseURL, meliItemID)
	if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, url, &dto); err != nil {
		return err
	}

	position, err := s.catalogRepo.GetByItem(ctx, account.ID, meliItemID)
	if err != nil {
		position = &model.CatalogPosition{AccountID: account.ID, MeliItemID: meliItemID}
	}

	position.CatalogProductID = dto.CatalogProductID
	position.Status = dto.Status
	position.CurrentAmount = toCents(dto.CurrentPrice)
	position.PriceToWinAmount = toCents(dto.PriceToWin)
	position.CurrencyID = dto.CurrencyID
	position.CompetitorCount = dto.Competitors

	if raw, err := json.Marshal(dto.Boosts); err == nil {
		position.Boosts = datatypes.JSON(raw)
	}
	now := time.Now()
	position.MeliSyncedAt = &now

	return s.catalogRepo.SaveOrUpdate(ctx, position)
}

// ==================== 查询 ====================

// ListPositions 竞价位次列表, status 可按 winning / competing 过滤
func (s *CatalogService) ListPositions(ctx context.Context, ownerID int64, accountIDs []int64, status string) ([]model.CatalogPosition, error) {
	resolved, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, accountIDs)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return []model.CatalogPosition{}, nil
	}
	return s.catalogRepo.List(ctx, resolved, status)
}

// GetPosition 单商品位次详情
func (s *CatalogService) GetPosition(ctx context.Context, ownerID int64, accountID int64, meliItemID string) (*model.CatalogPosition, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil || account.OwnerID != ownerID {
		return nil, fmt.Errorf("无权访问该账号")
	}
	position, err := s.catalogRepo.GetByItem(ctx, accountID, meliItemID)
	if err != nil {
		return nil, fmt.Errorf("商品未参与目录竞价")
	}
	return position, nil
}

// CountLosing 正在丢失 Buy Box 的商品数（看板告警用）
func (s *CatalogService) CountLosing(ctx context.Context, accountIDs []int64) (int64, error) {
	return s.catalogRepo.CountLosing(ctx, accountIDs)
}
