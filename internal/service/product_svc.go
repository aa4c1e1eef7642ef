package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"
)

// ==================== ProductService ====================

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
	accountRepo repository.AccountRepository
	dispatcher  net.Dispatcher
	storage     StorageProvider // 可为 nil，未配置时禁用图片上传
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	accountRepo repository.AccountRepository,
	dispatcher net.Dispatcher,
	storage StorageProvider,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		accountRepo: accountRepo,
		dispatcher:  dispatcher,
		storage:     storage,
	}
}

// ==================== 同步 ====================

// SyncProducts 全量同步账号商品
// 两步：/users/:id/items/search 翻页取 id 列表 -> /items/:id 逐个取详情
func (s *ProductService) SyncProducts(ctx context.Context, account *model.Account) (int, error) {
	if !account.IsConnected() {
		return 0, fmt.Errorf("account %d 未连接", account.ID)
	}

	synced := 0
	offset := 0
	const limit = 50

	for {
		searchURL := fmt.Sprintf("%s/users/%d/items/search?limit=%d&offset=%d",
			meli.BaseURL, account.MeliUserID, limit, offset)

		var resp meli.ItemSearchResp
		if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, searchURL, &resp); err != nil {
			return synced, fmt.Errorf("拉取商品列表失败 (offset %d): %w", offset, err)
		}

		for _, itemID := range resp.Results {
			if err := s.syncOne(ctx, account.ID, itemID); err != nil {
				log.Printf("[ProductSync] 商品 %s 同步失败: %v", itemID, err)
				continue
			}
			synced++
		}

		offset += limit
		if offset >= resp.Paging.Total || len(resp.Results) == 0 {
			break
		}
	}

	return synced, nil
}

// SyncOne 按 item id 同步单个商品 (webhook items topic 触发)
func (s *ProductService) SyncOne(ctx context.Context, account *model.Account, meliItemID string) error {
	return s.syncOne(ctx, account.ID, meliItemID)
}

func (s *ProductService) syncOne(ctx context.Context, accountID int64, meliItemID string) error {
	var item meli.ItemDTO
	if err := fetchMeliJSON(ctx, s.dispatcher, accountID, meli.BaseURL+"/items/"+meliItemID, &item); err != nil {
		return err
	}

	product, err := s.productRepo.GetByMeliItemID(ctx, meliItemID)
	if err != nil {
		product = &model.Product{MeliItemID: meliItemID, AccountID: accountID}
	}

	product.Title = item.Title
	product.CategoryID = item.CategoryID
	product.Permalink = item.Permalink
	product.Thumbnail = item.Thumbnail
	product.PriceAmount = toCents(item.Price)
	product.OriginalAmount = toCents(item.OriginalPrice)
	product.CurrencyID = item.CurrencyID
	product.AvailableQuantity = item.AvailableQuantity
	product.SoldQuantity = item.SoldQuantity
	product.Status = item.Status
	if len(item.SubStatus) > 0 {
		product.SubStatus = item.SubStatus[0]
	}
	product.CatalogListing = item.CatalogListing
	product.CatalogProductID = item.CatalogProductID
	product.Health = item.Health
	product.Tags = item.Tags

	product.Pictures = product.Pictures[:0]
	for _, pic := range item.Pictures {
		product.Pictures = append(product.Pictures, pic.URL)
	}

	if t, err := time.Parse(time.RFC3339, item.LastUpdated); err == nil {
		product.MeliUpdatedAt = &t
	}
	now := time.Now()
	product.MeliSyncedAt = &now

	return s.productRepo.SaveOrUpdate(ctx, product)
}

// ==================== 查询 ====================

// ListProducts 商品列表
func (s *ProductService) ListProducts(ctx context.Context, ownerID int64, filter repository.ProductFilter) ([]model.Product, int64, error) {
	accountIDs, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, filter.AccountIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(accountIDs) == 0 {
		return []model.Product{}, 0, nil
	}
	filter.AccountIDs = accountIDs
	return s.productRepo.List(ctx, filter)
}

// GetProduct 商品详情（带归属校验）
func (s *ProductService) GetProduct(ctx context.Context, ownerID, productID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("商品不存在")
	}
	account, err := s.accountRepo.GetByID(ctx, product.AccountID)
	if err != nil || account.OwnerID != ownerID {
		return nil, fmt.Errorf("无权访问该商品")
	}
	return product, nil
}

// ==================== 写操作 (回传 ML) ====================

// UpdatePrice 改价: PUT /items/:id {"price": x}，成功后同步本地
func (s *ProductService) UpdatePrice(ctx context.Context, ownerID, productID int64, price float64) error {
	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return err
	}

	body := map[string]interface{}{"price": price}
	if err = sendMeliJSON(ctx, s.dispatcher, product.AccountID, http.MethodPut,
		meli.BaseURL+"/items/"+product.MeliItemID, body, nil); err != nil {
		return fmt.Errorf("ML 改价失败: %w", err)
	}

	return s.productRepo.UpdateFields(ctx, product.ID, map[string]interface{}{
		"price_amount": toCents(price),
	})
}

// UpdateStock 改库存
func (s *ProductService) UpdateStock(ctx context.Context, ownerID, productID int64, quantity int) error {
	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return err
	}

	body := map[string]interface{}{"available_quantity": quantity}
	if err = sendMeliJSON(ctx, s.dispatcher, product.AccountID, http.MethodPut,
		meli.BaseURL+"/items/"+product.MeliItemID, body, nil); err != nil {
		return fmt.Errorf("ML 改库存失败: %w", err)
	}

	return s.productRepo.UpdateFields(ctx, product.ID, map[string]interface{}{
		"available_quantity": quantity,
	})
}

// UpdateStatus 暂停/恢复 listing (status = paused / active)
func (s *ProductService) UpdateStatus(ctx context.Context, ownerID, productID int64, status string) error {
	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return err
	}

	switch status {
	case model.ProductStatusPaused:
		if !product.CanPause() {
			return fmt.Errorf("当前状态 %s 不可暂停", product.Status)
		}
	case model.ProductStatusActive:
		if !product.CanActivate() {
			return fmt.Errorf("当前状态 %s 不可恢复", product.Status)
		}
	default:
		return fmt.Errorf("不支持的目标状态: %s", status)
	}

	body := map[string]interface{}{"status": status}
	if err = sendMeliJSON(ctx, s.dispatcher, product.AccountID, http.MethodPut,
		meli.BaseURL+"/items/"+product.MeliItemID, body, nil); err != nil {
		return fmt.Errorf("ML 改状态失败: %w", err)
	}

	return s.productRepo.UpdateFields(ctx, product.ID, map[string]interface{}{
		"status": status,
	})
}

// UpdateDescription 改描述: PUT /items/:id/description
func (s *ProductService) UpdateDescription(ctx context.Context, ownerID, productID int64, plainText string) error {
	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return err
	}

	body := map[string]interface{}{"plain_text": plainText}
	return sendMeliJSON(ctx, s.dispatcher, product.AccountID, http.MethodPut,
		meli.BaseURL+"/items/"+product.MeliItemID+"/description", body, nil)
}

// AddPicture 上传图片到自有存储，再把公开 URL 挂到 listing
func (s *ProductService) AddPicture(ctx context.Context, ownerID, productID int64, data []byte, filename string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("未配置图片存储")
	}

	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return "", err
	}

	picURL, err := s.storage.Upload(ctx, data, filename, "")
	if err != nil {
		return "", fmt.Errorf("图片上传失败: %w", err)
	}

	// ML 支持以外链 source 追加图片
	body := map[string]interface{}{
		"pictures": append(urlsToPictureRefs(product.Pictures), map[string]string{"source": picURL}),
	}
	if err = sendMeliJSON(ctx, s.dispatcher, product.AccountID, http.MethodPut,
		meli.BaseURL+"/items/"+product.MeliItemID, body, nil); err != nil {
		return "", fmt.Errorf("ML 挂图失败: %w", err)
	}

	product.Pictures = append(product.Pictures, picURL)
	if err = s.productRepo.SaveOrUpdate(ctx, product); err != nil {
		return "", err
	}
	return picURL, nil
}

// urlsToPictureRefs 已有图 URL 转为 ML pictures 数组要求的结构
func urlsToPictureRefs(urls []string) []map[string]string {
	refs := make([]map[string]string, 0, len(urls))
	for _, u := range urls {
		refs = append(refs, map[string]string{"source": u})
	}
	return refs
}

// resolveOwnedAccounts 把请求账号集合收敛到归属者名下，空集合代表全部
func resolveOwnedAccounts(ctx context.Context, accountRepo repository.AccountRepository, ownerID int64, requested []int64) ([]int64, error) {
	accounts, err := accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	owned := make(map[int64]bool, len(accounts))
	all := make([]int64, 0, len(accounts))
	for _, a := range accounts {
		owned[a.ID] = true
		all = append(all, a.ID)
	}

	if len(requested) == 0 {
		return all, nil
	}
	for _, id := range requested {
		if !owned[id] {
			return nil, fmt.Errorf("无权访问账号 %d", id)
		}
	}
	return requested, nil
}
