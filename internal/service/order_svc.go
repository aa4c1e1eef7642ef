package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"meli_hub_v1_202608/internal/events"
	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"

	"gorm.io/datatypes"
)

// ==================== OrderService ====================

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	accountRepo repository.AccountRepository
	dispatcher  net.Dispatcher
	producer    *events.Producer
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	accountRepo repository.AccountRepository,
	dispatcher net.Dispatcher,
	producer *events.Producer,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		accountRepo: accountRepo,
		dispatcher:  dispatcher,
		producer:    producer,
	}
}

// ==================== 同步 ====================

// SyncOrders 从 /orders/search 增量拉取订单
// sinceDays: 拉取最近 N 天，0 表示近 30 天
func (s *OrderService) SyncOrders(ctx context.Context, account *model.Account, sinceDays int) (int, error) {
	if !account.IsConnected() {
		return 0, fmt.Errorf("account %d 未连接", account.ID)
	}
	if sinceDays <= 0 {
		sinceDays = 30
	}
	from := time.Now().AddDate(0, 0, -sinceDays)

	synced := 0
	offset := 0
	const limit = 50

	for {
		query := url.Values{}
		query.Set("seller", fmt.Sprintf("%d", account.MeliUserID))
		query.Set("order.date_created.from", from.UTC().Format(time.RFC3339))
		query.Set("sort", "date_desc")
		query.Set("limit", fmt.Sprintf("%d", limit))
		query.Set("offset", fmt.Sprintf("%d", offset))

		var resp meli.OrderSearchResp
		if err := s.fetchJSON(ctx, account.ID, meli.BaseURL+"/orders/search?"+query.Encode(), &resp); err != nil {
			return synced, fmt.Errorf("拉取订单失败 (offset %d): %w", offset, err)
		}

		for i := range resp.Results {
			if err := s.upsertOrder(ctx, account.ID, &resp.Results[i]); err != nil {
				log.Printf("[OrderSync] 订单 %d 落库失败: %v", resp.Results[i].ID, err)
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

// SyncOneByMeliID 按 ML 订单号同步单笔 (webhook 触发)
func (s *OrderService) SyncOneByMeliID(ctx context.Context, account *model.Account, meliOrderID int64) error {
	var order meli.OrderDTO
	if err := s.fetchJSON(ctx, account.ID, fmt.Sprintf("%s/orders/%d", meli.BaseURL, meliOrderID), &order); err != nil {
		return err
	}
	return s.upsertOrder(ctx, account.ID, &order)
}

// upsertOrder DTO -> model 转换并落库，状态变化时发事件
func (s *OrderService) upsertOrder(ctx context.Context, accountID int64, dto *meli.OrderDTO) error {
	oldStatus := ""
	order, err := s.orderRepo.GetByMeliOrderID(ctx, dto.ID)
	if err != nil {
		order = &model.Order{MeliOrderID: dto.ID, AccountID: accountID}
	} else {
		oldStatus = order.Status
	}

	order.Status = dto.Status
	order.StatusDetail = dto.StatusDetail
	order.BuyerUserID = dto.Buyer.ID
	order.BuyerNick = dto.Buyer.Nickname
	order.TotalAmount = toCents(dto.TotalAmount)
	order.PaidAmount = toCents(dto.PaidAmount)
	order.CurrencyID = dto.CurrencyID
	order.PackID = dto.PackID
	order.ShipmentID = dto.Shipping.ID

	if t, err := time.Parse(time.RFC3339, dto.DateCreated); err == nil {
		order.MeliCreatedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, dto.DateClosed); err == nil {
		order.MeliClosedAt = &t
	}
	now := time.Now()
	order.MeliSyncedAt = &now

	// 保留原始报文，排查口径问题用
	if raw, err := json.Marshal(dto); err == nil {
		order.MeliRawData = datatypes.JSON(raw)
	}

	// 订单行整体重建
	order.Items = make([]model.OrderItem, 0, len(dto.OrderItems))
	for _, it := range dto.OrderItems {
		order.Items = append(order.Items, model.OrderItem{
			OrderID:         order.ID,
			MeliItemID:      it.Item.ID,
			Title:           it.Item.Title,
			VariantID:       it.Item.VariationID,
			SKU:             it.Item.SellerSKU,
			CategoryID:      it.Item.CategoryID,
			Quantity:        it.Quantity,
			UnitPriceAmount: toCents(it.UnitPrice),
			FullUnitAmount:  toCents(it.FullUnitPrice),
			SaleFeeAmount:   toCents(it.SaleFee),
			CurrencyID:      it.CurrencyID,
		})
	}

	if err := s.orderRepo.SaveOrUpdate(ctx, order); err != nil {
		return err
	}

	// 新订单或状态变化 -> 发事件
	if oldStatus != order.Status {
		eventType := "order.status_changed"
		if oldStatus == "" {
			eventType = "order.created"
		}
		s.producer.PublishOrderEvent(ctx, &events.OrderEvent{
			EventType:   eventType,
			AccountID:   accountID,
			MeliOrderID: order.MeliOrderID,
			OldStatus:   oldStatus,
			NewStatus:   order.Status,
			TotalCents:  order.TotalAmount,
			OccurredAt:  time.Now(),
		})
	}
	return nil
}

// ==================== 查询 ====================

// ListOrders 订单列表 (只能查自己名下账号)
func (s *OrderService) ListOrders(ctx context.Context, ownerID int64, filter repository.OrderFilter) ([]model.Order, int64, error) {
	accountIDs, err := s.resolveAccountIDs(ctx, ownerID, filter.AccountIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(accountIDs) == 0 {
		return []model.Order{}, 0, nil
	}
	filter.AccountIDs = accountIDs
	return s.orderRepo.List(ctx, filter)
}

// GetOrderDetail 订单详情（带归属校验）
func (s *OrderService) GetOrderDetail(ctx context.Context, ownerID, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在")
	}
	if err = s.checkOwnership(ctx, ownerID, order.AccountID); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateSellerNote 更新卖家备注（本地字段，不回传 ML）
func (s *OrderService) UpdateSellerNote(ctx context.Context, ownerID, orderID int64, note string) error {
	order, err := s.GetOrderDetail(ctx, ownerID, orderID)
	if err != nil {
		return err
	}
	order.SellerNote = note
	return s.orderRepo.SaveOrUpdate(ctx, order)
}

// ==================== 内部工具 ====================

// resolveAccountIDs 把请求里的账号集合收敛到归属者名下，传空代表全部账号
func (s *OrderService) resolveAccountIDs(ctx context.Context, ownerID int64, requested []int64) ([]int64, error) {
	return resolveOwnedAccounts(ctx, s.accountRepo, ownerID, requested)
}

func (s *OrderService) checkOwnership(ctx context.Context, ownerID, accountID int64) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil || account.OwnerID != ownerID {
		return fmt.Errorf("无权访问该订单")
	}
	return nil
}

// fetchJSON GET 请求 + 信封解包 + 反序列化
func (s *OrderService) fetchJSON(ctx context.Context, accountID int64, apiURL string, out interface{}) error {
	return fetchMeliJSON(ctx, s.dispatcher, accountID, apiURL, out)
}
