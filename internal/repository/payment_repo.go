package repository

import (
	"context"
	"time"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// PaymentFilter 收款单查询条件
type PaymentFilter struct {
	AccountIDs []int64
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// SettlementSummary 账期汇总 (金额为分)
type SettlementSummary struct {
	GrossCents int64
	FeeCents   int64
	NetCents   int64
}

/// PaymentRepository 资金仓库接口: 收款 / 结算 / 订阅
type PaymentRepository interface {
	GetPaymentByID(ctx context.Context, id int64) (*model.Payment, error)
	GetByMpPaymentID(ctx context.Context, mpPaymentID int64) (*model.Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error)
	SavePayment(ctx context.Context, payment *model.Payment) error

	ListSettlements(ctx context.Context, accountIDs []int64, period string) ([]model.Settlement, error)
	SaveSettlement(ctx context.Context, settlement *model.Settlement) error
	SummarizeSettlements(ctx context.Context, accountIDs []int64, period string) (*SettlementSummary, error)

	GetSubscriptionByID(ctx context.Context, id int64) (*model.Subscription, error)
	GetByMpPreapprovalID(ctx context.Context, preapprovalID string) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, accountIDs []int64, status string) ([]model.Subscription, error)
	SaveSubscription(ctx context.Context, sub *model.Subscription) error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建资金仓库
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetPaymentByID(ctx context.Context, id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByMpPaymentID(ctx context.Context, mpPaymentID int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("mp_payment_id = ?", mpPaymentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListPayments(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Payment{})

	if len(filter.AccountIDs) > 0 {
		query = query.Where("account_id IN ?", filter.AccountIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("mp_approved_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("mp_approved_at < ?", *filter.DateTo)
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

	var payments []model.Payment
	err := query.Order("mp_approved_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepository) SavePayment(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) ListSettlements(ctx context.Context, accountIDs []int64, period string) ([]model.Settlement, error) {
	query := r.db.WithContext(ctx).Model(&model.Settlement{})

	if len(accountIDs) > 0 {
		query = query.Where("account_id IN ?", accountIDs)
	}
	if period != "" {
		query = query.Where("period = ?", period)
	}

	var settlements []model.Settlement
	err := query.Order("money_release_date DESC").Find(&settlements).Error
	return settlements, err
}

func (r *paymentRepository) SaveSettlement(ctx context.Context, settlement *model.Settlement) error {
	return r.db.WithContext(ctx).Save(settlement).Error
}

func (r *paymentRepository) SummarizeSettlements(ctx context.Context, accountIDs []int64, period string) (*SettlementSummary, error) {
	if len(accountIDs) == 0 {
		return &SettlementSummary{}, nil
	}

	summary := &SettlementSummary{}
	query := r.db.WithContext(ctx).Model(&model.Settlement{}).
		Select("COALESCE(SUM(gross_amount), 0), COALESCE(SUM(fee_amount), 0), COALESCE(SUM(net_amount), 0)").
		Where("account_id IN ?", accountIDs)
	if period != "" {
		query = query.Where("period = ?", period)
	}
	row := query.Row()
	if err := row.Scan(&summary.GrossCents, &summary.FeeCents, &summary.NetCents); err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *paymentRepository) GetSubscriptionByID(ctx context.Context, id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *paymentRepository) GetByMpPreapprovalID(ctx context.Context, preapprovalID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).Where("mp_preapproval_id = ?", preapprovalID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *paymentRepository) ListSubscriptions(ctx context.Context, accountIDs []int64, status string) ([]model.Subscription, error) {
	query := r.db.WithContext(ctx).Model(&model.Subscription{})

	if len(accountIDs) > 0 {
		query = query.Where("account_id IN ?", accountIDs)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var subs []model.Subscription
	err := query.Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func (r *paymentRepository) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}
