package repository

import (
	"context"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// InvoiceRepository NF-e 发票仓库接口
type InvoiceRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Invoice, error)
	GetByMeliInvoiceID(ctx context.Context, meliInvoiceID int64) (*model.Invoice, error)
	ListByOrder(ctx context.Context, meliOrderID int64) ([]model.Invoice, error)
	List(ctx context.Context, accountIDs []int64, status string, page, pageSize int) ([]model.Invoice, int64, error)
	SaveOrUpdate(ctx context.Context, invoice *model.Invoice) error
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository 创建发票仓库
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) GetByID(ctx context.Context, id int64) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetByMeliInvoiceID(ctx context.Context, meliInvoiceID int64) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).Where("meli_invoice_id = ?", meliInvoiceID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListByOrder(ctx context.Context, meliOrderID int64) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("meli_order_id = ?", meliOrderID).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) List(ctx context.Context, accountIDs []int64, status string, page, pageSize int) ([]model.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Invoice{})

	if len(accountIDs) > 0 {
		query = query.Where("account_id IN ?", accountIDs)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var invoices []model.Invoice
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepository) SaveOrUpdate(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}
