package repository

import (
	"context"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository 目录竞价 (Buy Box) 仓库接口
type CatalogRepository interface {
	GetByID(ctx context.Context, id int64) (*model.CatalogPosition, error)
	GetByItem(ctx context.Context, accountID int64, meliItemID string) (*model.CatalogPosition, error)
	List(ctx context.Context, accountIDs []int64, status string) ([]model.CatalogPosition, error)
	SaveOrUpdate(ctx context.Context, position *model.CatalogPosition) error
	CountLosing(ctx context.Context, accountIDs []int64) (int64, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录竞价仓库
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetByID(ctx context.Context, id int64) (*model.CatalogPosition, error) {
	var position model.CatalogPosition
	err := r.db.WithContext(ctx).First(&position, id).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *catalogRepository) GetByItem(ctx context.Context, accountID int64, meliItemID string) (*model.CatalogPosition, error) {
	var position model.CatalogPosition
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND meli_item_id = ?", accountID, meliItemID).
		First(&position).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *catalogRepository) List(ctx context.Context, accountIDs []int64, status string) ([]model.CatalogPosition, error) {
	query := r.db.WithContext(ctx).Model(&model.CatalogPosition{})

	if len(accountIDs) > 0 {
		query = query.Where("account_id IN ?", accountIDs)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var positions []model.CatalogPosition
	err := query.Order("updated_at DESC").Find(&positions).Error
	return positions, err
}

func (r *catalogRepository) SaveOrUpdate(ctx context.Context, position *model.CatalogPosition) error {
	return r.db.WithContext(ctx).Save(position).Error
}

func (r *catalogRepository) CountLosing(ctx context.Context, accountIDs []int64) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.CatalogPosition{}).
		Where("account_id IN ?", accountIDs).
		Where("status = ?", model.CatalogStatusCompeting).
		Count(&count).Error
	return count, err
}
