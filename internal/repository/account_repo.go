package repository

import (
	"context"
	"time"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// AccountRepository ML 账号仓库接口
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	GetByMeliUserID(ctx context.Context, meliUserID int64) (*model.Account, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Account, error)
	ListActiveByOwner(ctx context.Context, ownerID int64) ([]model.Account, error)
	ListConnected(ctx context.Context) ([]model.Account, error)
	SaveOrUpdate(ctx context.Context, account *model.Account) error
	UpdateStatus(ctx context.Context, id int64, status int) error
	UpdateTokenStatus(ctx context.Context, id int64, tokenStatus string) error
	Delete(ctx context.Context, id int64) error

	// FindExpiringAccounts 查出 token 即将过期需要刷新的账号
	FindExpiringAccounts(ctx context.Context, within time.Duration) ([]model.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账号仓库
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Preload("Application").First(&account, id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByMeliUserID(ctx context.Context, meliUserID int64) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Preload("Application").
		Where("meli_user_id = ?", meliUserID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) ListActiveByOwner(ctx context.Context, ownerID int64) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("status = ?", model.AccountStatusActive).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) ListConnected(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).Preload("Application").
		Where("status = ?", model.AccountStatusActive).
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) SaveOrUpdate(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id int64, status int) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Update("status", status).Error
}

func (r *accountRepository) UpdateTokenStatus(ctx context.Context, id int64, tokenStatus string) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Update("token_status", tokenStatus).Error
}

func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Account{}, id).Error
}

func (r *accountRepository) FindExpiringAccounts(ctx context.Context, within time.Duration) ([]model.Account, error) {
	var accounts []model.Account
	deadline := time.Now().Add(within)
	err := r.db.WithContext(ctx).Preload("Application").
		Where("status = ?", model.AccountStatusActive).
		Where("refresh_token <> ''").
		Where("token_expires_at < ?", deadline).
		Find(&accounts).Error
	return accounts, err
}
