package repository

import (
	"context"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ClaimFilter 售后纠纷查询条件
type ClaimFilter struct {
	AccountIDs []int64
	Status     string
	Stage      string
	Page       int
	PageSize   int
}

// ClaimRepository 售后纠纷仓库接口
type ClaimRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Claim, error)
	GetByMeliClaimID(ctx context.Context, meliClaimID int64) (*model.Claim, error)
	List(ctx context.Context, filter ClaimFilter) ([]model.Claim, int64, error)
	SaveOrUpdate(ctx context.Context, claim *model.Claim) error
	CountOpen(ctx context.Context, accountIDs []int64) (int64, error)
}

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository 创建纠纷仓库
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) GetByID(ctx context.Context, id int64) (*model.Claim, error) {
	var claim model.Claim
	err := r.db.WithContext(ctx).First(&claim, id).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) GetByMeliClaimID(ctx context.Context, meliClaimID int64) (*model.Claim, error) {
	var claim model.Claim
	err := r.db.WithContext(ctx).Where("meli_claim_id = ?", meliClaimID).First(&claim).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) List(ctx context.Context, filter ClaimFilter) ([]model.Claim, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Claim{})

	if len(filter.AccountIDs) > 0 {
		query = query.Where("account_id IN ?", filter.AccountIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
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

	var claims []model.Claim
	err := query.Order("meli_created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&claims).Error
	return claims, total, err
}

func (r *claimRepository) SaveOrUpdate(ctx context.Context, claim *model.Claim) error {
	return r.db.WithContext(ctx).Save(claim).Error
}

func (r *claimRepository) CountOpen(ctx context.Context, accountIDs []int64) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Claim{}).
		Where("account_id IN ?", accountIDs).
		Where("status = ?", model.ClaimStatusOpened).
		Count(&count).Error
	return count, err
}
