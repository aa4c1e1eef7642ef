package service

import (
	"context"
	"fmt"
	"time"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"

	"gorm.io/datatypes"
)

// ==================== ShipmentService ====================

// ShipmentService 物流服务
type ShipmentService struct {
	shipmentRepo repository.ShipmentRepository
	orderRepo    repository.OrderRepository
	accountRepo  repository.AccountRepository
	dispatcher   net.Dispatcher
}

// NewShipmentService 创建物流服务
func NewShipmentService(
	shipmentRepo repository.ShipmentRepository,
	orderRepo repository.OrderRepository,
	accountRepo repository.AccountRepository,
	dispatcher net.Dispatcher,
) *ShipmentService {
	return &ShipmentService{
		shipmentRepo: shipmentRepo,
		orderRepo:    orderRepo,
		accountRepo:  accountRepo,
		dispatcher:   dispatcher,
	}
}

// ==================== 同步 ====================

// SyncShipment 按 ML shipment id 同步单个物流单
// 订单同步后逐个补拉，webhook shipments topic 也走这里
func (s *ShipmentService) SyncShipment(ctx context.Context, account *model.Account, meliShipmentID int64) error {
	var dto meli.ShipmentDTO
	url := fmt.Sprintf("%s/shipments/%d", meli.BaseURL, meliShipmentID)
	if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, url, &dto); err != nil {
		return fmt.Errorf("拉取物流单 %d 失败: %w", meliShipmentID, err)
	}

	shipment, err := s.shipmentRepo.GetByMeliShipmentID(ctx, dto.ID)
	if err != nil {
		shipment = &model.Shipment{MeliShipmentID: dto.ID, AccountID: account.ID}
	}

	shipment.MeliOrderID = dto.OrderID
	shipment.Status = dto.Status
	shipment.SubStatus = dto.SubStatus
	shipment.LogisticType = dto.LogisticType
	shipment.TrackingNumber = dto.TrackingNumber
	shipment.TrackingMethod = dto.TrackingMethod
	shipment.ShippingCostAmount = toCents(dto.ShippingOption.Cost)
	shipment.CurrencyID = dto.ShippingOption.CurrencyID

	if dto.ReceiverAddress != nil {
		shipment.ReceiverAddress = datatypes.JSONMap(dto.ReceiverAddress)
	}
	if t, err := time.Parse(time.RFC3339, dto.ShippingOption.EstimatedDeliveryTime.Date); err == nil {
		shipment.EstimatedDelivery = &t
	}
	if t, err := time.Parse(time.RFC3339, dto.DateShipped); err == nil {
		shipment.ShippedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, dto.DateDelivered); err == nil {
		shipment.DeliveredAt = &t
	}
	now := time.Now()
	shipment.MeliSyncedAt = &now

	return s.shipmentRepo.SaveOrUpdate(ctx, shipment)
}

// ==================== 查询 ====================

// ListShipments 物流单列表
func (s *ShipmentService) ListShipments(ctx context.Context, ownerID int64, filter repository.ShipmentFilter) ([]model.Shipment, int64, error) {
	accountIDs, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, filter.AccountIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(accountIDs) == 0 {
		return []model.Shipment{}, 0, nil
	}
	filter.AccountIDs = accountIDs
	return s.shipmentRepo.List(ctx, filter)
}

// GetShipment 物流单详情
func (s *ShipmentService) GetShipment(ctx context.Context, ownerID, shipmentID int64) (*model.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("物流单不存在")
	}
	account, err := s.accountRepo.GetByID(ctx, shipment.AccountID)
	if err != nil || account.OwnerID != ownerID {
		return nil, fmt.Errorf("无权访问该物流单")
	}
	return shipment, nil
}

// GetLabelURL 获取面单下载地址 (ML 返回 PDF)
func (s *ShipmentService) GetLabelURL(ctx context.Context, ownerID, shipmentID int64) (string, error) {
	shipment, err := s.GetShipment(ctx, ownerID, shipmentID)
	if err != nil {
		return "", err
	}
	if !shipment.NeedsAction() {
		return "", fmt.Errorf("当前状态 %s 无面单可打印", shipment.Status)
	}
	return fmt.Sprintf("%s/shipment_labels?shipment_ids=%d&response_type=pdf",
		meli.BaseURL, shipment.MeliShipmentID), nil
}
