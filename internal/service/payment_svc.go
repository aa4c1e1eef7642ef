package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/pkg/mpago"
	"meli_hub_v1_202608/pkg/net"

	"gorm.io/datatypes"
)

// ==================== PaymentService ====================

// PaymentService Mercado Pago 资金服务：收款 / 退款 / 订阅
// MP 与 ML 共用 OAuth token，凭证统一走 TokenProvider
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	accountRepo repository.AccountRepository
	mp          *mpago.Client
	tokens      net.TokenProvider
}

// NewPaymentService 创建资金服务
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	accountRepo repository.AccountRepository,
	mp *mpago.Client,
	tokens net.TokenProvider,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		mp:          mp,
		tokens:      tokens,
	}
}

// ==================== 同步 ====================

// SyncPayments 拉取账号收款流水，同时生成结算行
func (s *PaymentService) SyncPayments(ctx context.Context, account *model.Account) (int, error) {
	token, err := s.tokens.GetAccessToken(ctx, account.ID)
	if err != nil {
		return 0, err
	}

	synced := 0
	offset := 0
	const limit = 50

	for {
		resp, err := s.mp.SearchPayments(ctx, token, offset, limit)
		if err != nil {
			return synced, fmt.Errorf("拉取收款失败 (offset %d): %w", offset, err)
		}

		for i := range resp.Results {
			if err := s.upsertPayment(ctx, account.ID, &resp.Results[i]); err != nil {
				log.Printf("[PaymentSync] 收款 %d 落库失败: %v", resp.Results[i].ID, err)
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

// SyncOneByMpID 按 MP payment id 同步单笔 (webhook payments topic)
func (s *PaymentService) SyncOneByMpID(ctx context.Context, account *model.Account, mpPaymentID int64) error {
	token, err := s.tokens.GetAccessToken(ctx, account.ID)
	if err != nil {
		return err
	}
	dto, err := s.mp.GetPayment(ctx, token, mpPaymentID)
	if err != nil {
		return err
	}
	return s.upsertPayment(ctx, account.ID, dto)
}

func (s *PaymentService) upsertPayment(ctx context.Context, accountID int64, dto *mpago.PaymentDTO) error {
	payment, err := s.paymentRepo.GetByMpPaymentID(ctx, dto.ID)
	if err != nil {
		payment = &model.Payment{MpPaymentID: dto.ID, AccountID: accountID}
	}

	payment.Status = dto.Status
	payment.StatusDetail = dto.StatusDetail
	payment.MethodID = dto.PaymentMethodID
	payment.TypeID = dto.PaymentTypeID
	payment.Installments = dto.Installments
	payment.TransactionAmount = toCents(dto.TransactionAmount)
	payment.FeeAmount = toCents(dto.TotalFee())
	payment.NetAmount = toCents(dto.TransactionDetails.NetReceivedAmount)
	payment.RefundedAmount = toCents(dto.TransactionAmountRefunded)
	payment.CurrencyID = dto.CurrencyID
	payment.PayerID = dto.Payer.ID
	payment.PayerEmail = dto.Payer.Email
	if dto.Order.Type == "mercadolibre" {
		payment.MeliOrderID = dto.Order.ID
	}

	if t, err := time.Parse(time.RFC3339, dto.DateCreated); err == nil {
		payment.MpCreatedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, dto.DateApproved); err == nil {
		payment.MpApprovedAt = &t
	}
	now := time.Now()
	payment.MpSyncedAt = &now

	if raw, err := json.Marshal(dto); err == nil {
		payment.MpRawData = datatypes.JSON(raw)
	}

	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		return err
	}

	// 已批准的收款生成结算行，账期按到账日归集
	if dto.Status == model.PaymentStatusApproved && dto.MoneyReleaseDate != "" {
		if release, err := time.Parse(time.RFC3339, dto.MoneyReleaseDate); err == nil {
			settlement := &model.Settlement{
				AccountID:        accountID,
				Period:           release.Format("2006-01"),
				MpPaymentID:      dto.ID,
				SourceType:       "payment",
				GrossAmount:      payment.TransactionAmount,
				FeeAmount:        payment.FeeAmount,
				NetAmount:        payment.NetAmount,
				CurrencyID:       payment.CurrencyID,
				MoneyReleaseDate: &release,
			}
			if err := s.upsertSettlement(ctx, settlement); err != nil {
				log.Printf("[PaymentSync] 结算行生成失败 payment %d: %v", dto.ID, err)
			}
		}
	}
	return nil
}

// upsertSettlement 同一笔收款只保留一条结算行
func (s *PaymentService) upsertSettlement(ctx context.Context, settlement *model.Settlement) error {
	existing, err := s.paymentRepo.ListSettlements(ctx, []int64{settlement.AccountID}, settlement.Period)
	if err == nil {
		for _, e := range existing {
			if e.MpPaymentID == settlement.MpPaymentID && e.SourceType == settlement.SourceType {
				settlement.ID = e.ID
				settlement.CreatedAt = e.CreatedAt
				break
			}
		}
	}
	return s.paymentRepo.SaveSettlement(ctx, settlement)
}

// ==================== 查询与操作 ====================

// ListPayments 收款列表
func (s *PaymentService) ListPayments(ctx context.Context, ownerID int64, filter repository.PaymentFilter) ([]model.Payment, int64, error) {
	accountIDs, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, filter.AccountIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(accountIDs) == 0 {
		return []model.Payment{}, 0, nil
	}
	filter.AccountIDs = accountIDs
	return s.paymentRepo.ListPayments(ctx, filter)
}

// Refund 退款，amount 为 0 表示全额
func (s *PaymentService) Refund(ctx context.Context, ownerID, paymentID int64, amount float64) error {
	payment, err := s.getOwned(ctx, ownerID, paymentID)
	if err != nil {
		return err
	}
	if !payment.CanRefund() {
		return fmt.Errorf("收款当前状态 %s 不可退款", payment.Status)
	}
	if amount > 0 && toCents(amount) > payment.TransactionAmount-payment.RefundedAmount {
		return fmt.Errorf("退款金额超过可退余额")
	}

	token, err := s.tokens.GetAccessToken(ctx, payment.AccountID)
	if err != nil {
		return err
	}
	if _, err = s.mp.RefundPayment(ctx, token, payment.MpPaymentID, amount); err != nil {
		return fmt.Errorf("MP 退款失败: %w", err)
	}

	// 退款后回拉一次拿最新状态
	account, err := s.accountRepo.GetByID(ctx, payment.AccountID)
	if err != nil {
		return nil
	}
	return s.SyncOneByMpID(ctx, account, payment.MpPaymentID)
}

// ==================== 结算 ====================

// ListSettlements 账期结算明细, period 格式 2026-07, 为空表示全部账期
func (s *PaymentService) ListSettlements(ctx context.Context, ownerID int64, accountIDs []int64, period string) ([]model.Settlement, error) {
	resolved, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, accountIDs)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return []model.Settlement{}, nil
	}
	return s.paymentRepo.ListSettlements(ctx, resolved, period)
}

// SettlementSummary 账期汇总: 毛收入 / 手续费 / 净到账
func (s *PaymentService) SettlementSummary(ctx context.Context, ownerID int64, accountIDs []int64, period string) (*repository.SettlementSummary, error) {
	resolved, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, accountIDs)
	if err != nil {
		return nil, err
	}
	return s.paymentRepo.SummarizeSettlements(ctx, resolved, period)
}

// ==================== 订阅 ====================

// SyncSubscriptions 拉取账号订阅列表
func (s *PaymentService) SyncSubscriptions(ctx context.Context, account *model.Account) (int, error) {
	token, err := s.tokens.GetAccessToken(ctx, account.ID)
	if err != nil {
		return 0, err
	}

	synced := 0
	offset := 0
	const limit = 50

	for {
		resp, err := s.mp.SearchSubscriptions(ctx, token, account.MeliUserID, offset, limit)
		if err != nil {
			return synced, fmt.Errorf("拉取订阅失败: %w", err)
		}

		for i := range resp.Results {
			if err := s.upsertSubscription(ctx, account.ID, &resp.Results[i]); err != nil {
				log.Printf("[SubSync] 订阅 %s 落库失败: %v", resp.Results[i].ID, err)
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

func (s *PaymentService) upsertSubscription(ctx context.Context, accountID int64, dto *mpago.SubscriptionDTO) error {
	sub, err := s.paymentRepo.GetByMpPreapprovalID(ctx, dto.ID)
	if err != nil {
		sub = &model.Subscription{MpPreapprovalID: dto.ID, AccountID: accountID}
	}

	sub.Reason = dto.Reason
	sub.Status = dto.Status
	sub.FrequencyType = dto.AutoRecurring.FrequencyType
	sub.Frequency = dto.AutoRecurring.Frequency
	sub.AmountCents = toCents(dto.AutoRecurring.TransactionAmount)
	sub.CurrencyID = dto.AutoRecurring.CurrencyID
	sub.PayerID = dto.PayerID
	sub.PayerEmail = dto.PayerEmail
	if t, err := time.Parse(time.RFC3339, dto.NextPaymentDate); err == nil {
		sub.NextPaymentDate = &t
	}
	now := time.Now()
	sub.MpSyncedAt = &now

	return s.paymentRepo.SaveSubscription(ctx, sub)
}

// ListSubscriptions 订阅列表
func (s *PaymentService) ListSubscriptions(ctx context.Context, ownerID int64, accountIDs []int64, status string) ([]model.Subscription, error) {
	resolved, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, accountIDs)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return []model.Subscription{}, nil
	}
	return s.paymentRepo.ListSubscriptions(ctx, resolved, status)
}

// PauseSubscription 暂停订阅
func (s *PaymentService) PauseSubscription(ctx context.Context, ownerID, subID int64) error {
	return s.updateSubscription(ctx, ownerID, subID, model.SubscriptionStatusPaused,
		func(sub *model.Subscription) bool { return sub.CanPause() })
}

// CancelSubscription 取消订阅（不可逆）
func (s *PaymentService) CancelSubscription(ctx context.Context, ownerID, subID int64) error {
	return s.updateSubscription(ctx, ownerID, subID, model.SubscriptionStatusCancelled,
		func(sub *model.Subscription) bool { return sub.CanCancel() })
}

func (s *PaymentService) updateSubscription(ctx context.Context, ownerID, subID int64, target string, allowed func(*model.Subscription) bool) error {
	sub, err := s.paymentRepo.GetSubscriptionByID(ctx, subID)
	if err != nil {
		return fmt.Errorf("订阅不存在")
	}
	account, err := s.accountRepo.GetByID(ctx, sub.AccountID)
	if err != nil || account.OwnerID != ownerID {
		return fmt.Errorf("无权访问该订阅")
	}
	if !allowed(sub) {
		return fmt.Errorf("订阅当前状态 %s 不可变更为 %s", sub.Status, target)
	}

	token, err := s.tokens.GetAccessToken(ctx, sub.AccountID)
	if err != nil {
		return err
	}
	updated, err := s.mp.UpdateSubscriptionStatus(ctx, token, sub.MpPreapprovalID, target)
	if err != nil {
		return fmt.Errorf("MP 订阅变更失败: %w", err)
	}

	sub.Status = updated.Status
	return s.paymentRepo.SaveSubscription(ctx, sub)
}

func (s *PaymentService) getOwned(ctx context.Context, ownerID, paymentID int64) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("收款不存在")
	}
	account, err := s.accountRepo.GetByID(ctx, payment.AccountID)
	if err != nil || account.OwnerID != ownerID {
		return nil, fmt.Errorf("无权访问该收款")
	}
	return payment, nil
}
