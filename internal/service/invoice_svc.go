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

// ==================== InvoiceService ====================

// InvoiceService NF-e 电子发票服务（巴西站）
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	accountRepo repository.AccountRepository
	dispatcher  net.Dispatcher
}

// NewInvoiceService 创建发票服务
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	accountRepo repository.AccountRepository,
	dispatcher net.Dispatcher,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		accountRepo: accountRepo,
		dispatcher:  dispatcher,
	}
}

// ==================== 同步 ====================

// SyncInvoices 拉取账号发票列表
func (s *InvoiceService) SyncInvoices(ctx context.Context, account *model.Account) (int, error) {
	if !account.IsConnected() {
		return 0, fmt.Errorf("account %d 未连接", account.ID)
	}

	synced := 0
	offset := 0
	const limit = 50

	for {
		listURL := fmt.Sprintf("%s/users/%d/invoices?limit=%d&offset=%d",
			meli.BaseURL, account.MeliUserID, limit, offset)

		var resp meli.InvoiceListResp
		if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, listURL, &resp); err != nil {
			return synced, fmt.Errorf("拉取发票失败 (offset %d): %w", offset, err)
		}

		for i := range resp.Results {
			if err := s.upsertInvoice(ctx, account.ID, &resp.Results[i]); err != nil {
				log.Printf("[InvoiceSync] 发票 %d 落库失败: %v", resp.Results[i].ID, err)
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

// SyncOrderInvoice 按订单同步发票 (webhook invoices topic)
func (s *InvoiceService) SyncOrderInvoice(ctx context.Context, account *model.Account, meliOrderID int64) error {
	var dto meli.InvoiceDTO
	url := fmt.Sprintf("%s/users/%d/invoices/orders/%d", meli.BaseURL, account.MeliUserID, meliOrderID)
	if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, url, &dto); err != nil {
		return fmt.Errorf("拉取订单 %d 发票失败: %w", meliOrderID, err)
	}
	return s.upsertInvoice(ctx, account.ID, &dto)
}

func (s *InvoiceService) upsertInvoice(ctx context.Context, accountID int64, dto *meli.InvoiceDTO) error {
	invoice, err := s.invoiceRepo.GetByMeliInvoiceID(ctx, dto.ID)
	if err != nil {
		invoice = &model.Invoice{MeliInvoiceID: dto.ID, AccountID: accountID}
	}

	invoice.MeliOrderID = dto.OrderID
	invoice.Number = dto.InvoiceNumber
	invoice.Series = dto.InvoiceSeries
	invoice.Status = dto.Status
	invoice.TotalAmount = toCents(dto.Amount)
	invoice.TaxAmount = toCents(dto.TaxAmount)
	invoice.CurrencyID = dto.CurrencyID
	invoice.XmlURL = dto.XmlLocation
	invoice.PdfURL = dto.PdfLocation
	invoice.RejectReason = dto.RejectionReason

	if t, err := time.Parse(time.RFC3339, dto.AuthorizedAt); err == nil {
		invoice.AuthorizedAt = &t
	}
	now := time.Now()
	invoice.MeliSyncedAt = &now

	return s.invoiceRepo.SaveOrUpdate(ctx, invoice)
}

// ==================== 查询与操作 ====================

// ListInvoices 发票列表
func (s *InvoiceService) ListInvoices(ctx context.Context, ownerID int64, accountIDs []int64, status string, page, pageSize int) ([]model.Invoice, int64, error) {
	resolved, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, accountIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(resolved) == 0 {
		return []model.Invoice{}, 0, nil
	}
	return s.invoiceRepo.List(ctx, resolved, status, page, pageSize)
}

// ListByOrder 订单关联发票（含被驳回的历史版本）
func (s *InvoiceService) ListByOrder(ctx context.Context, ownerID, meliOrderID int64) ([]model.Invoice, error) {
	invoices, err := s.invoiceRepo.ListByOrder(ctx, meliOrderID)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if _, err := s.getOwned(ctx, ownerID, invoices[i].ID); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// GetInvoice 发票详情
func (s *InvoiceService) GetInvoice(ctx context.Context, ownerID, invoiceID int64) (*model.Invoice, error) {
	return s.getOwned(ctx, ownerID, invoiceID)
}

// Reissue 重开被驳回/作废的发票: POST /users/:id/invoices/orders/:order_id
func (s *InvoiceService) Reissue(ctx context.Context, ownerID, invoiceID int64) error {
	invoice, err := s.getOwned(ctx, ownerID, invoiceID)
	if err != nil {
		return err
	}
	if !invoice.CanReissue() {
		return fmt.Errorf("发票当前状态 %s 不可重开", invoice.Status)
	}

	account, err := s.accountRepo.GetByID(ctx, invoice.AccountID)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/users/%d/invoices/orders/%d",
		meli.BaseURL, account.MeliUserID, invoice.MeliOrderID)
	if err = sendMeliJSON(ctx, s.dispatcher, account.ID, http.MethodPost, url, nil, nil); err != nil {
		return fmt.Errorf("ML 重开发票失败: %w", err)
	}

	// 重开后回拉最新状态
	return s.SyncOrderInvoice(ctx, account, invoice.MeliOrderID)
}

func (s *InvoiceService) getOwned(ctx context.Context, ownerID, invoiceID int64) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("发票不存在")
	}
	account, err := s.accountRepo.GetByID(ctx, invoice.AccountID)
	if err != nil || account.OwnerID != ownerID {
		return nil, fmt.Errorf("无权访问该发票")
	}
	return invoice, nil
}
