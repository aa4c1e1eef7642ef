package repository

import (
	"context"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ShipmentFilter 物流单查询条件
type ShipmentFilter struct {
	AccountIDs   []int64
	Status       string
	LogisticType string
	Page         int
	PageSize     int
}

// ShipmentRepository 物流单仓库接口
type ShipmentRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Shipment, error)
	GetByMeliShipmentID(ctx context.Context, meliShipmentID int64) (*model.Shipment, error)
	List(ctx context.Context, filter ShipmentFilter) ([]model.Shipment, int64, error)
	SaveOrUpdate(ctx context.Context, shipment *model.Shipment) error
	// CountPendingDispatch 统计待发货单量 (ready_to_ship + handling)
	CountPendingDispatch(ctx context.Context, accountIDs []int64) (int64, error)
}

type shipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建物流单仓库
func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepository{db: db}
}

func (r *shipmentRepository) GetByID(ctx context.Context, id int64) (*model.Shipment, error) {
	var shipment model.Shipment
	err := r.db.WithContext(ctx).First(&shipment, id).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) GetByMeliShipmentID(ctx context.Context, meliShipmentID int64) (*model.Shipment, error) {
	var shipment model.Shipment
	err := r.db.WithContext(ctx).Where("meli_shipment_id = ?", meliShipmentID).First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) List(ctx context.Context, filter ShipmentFilter) ([]model.Shipment, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Shipment{})

	if len(filter.AccountIDs) > 0 {
		query = query.Where("account_id IN ?", filter.AccountIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LogisticType != "" {
		query = query.Where("logistic_type = ?", filter.LogisticType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	var shipments []model.Shipment
	err := query.Order("updated_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&shipments).Error
	return shipments, total, err
}

func (r *shipmentRepository) SaveOrUpdate(ctx context.Context, shipment *model.Shipment) error {
	return r.db.WithContext(ctx).Save(shipment).Error
}

func (r *shipmentRepository) CountPendingDispatch(ctx context.Context, accountIDs []int64) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Shipment{}).
		Where("account_id IN ?", accountIDs).
		Where("status IN ?", []string{model.ShipmentStatusReadyToShip, model.ShipmentStatusHandling}).
		Count(&count).Error
	return count, err
}
