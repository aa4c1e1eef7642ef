package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"
)

// ==================== MessageService ====================

// MessageService 买家消息服务 (post-sale messaging)
type MessageService struct {
	messageRepo repository.MessageRepository
	accountRepo repository.AccountRepository
	dispatcher  net.Dispatcher
}

// NewMessageService 创建消息服务
func NewMessageService(
	messageRepo repository.MessageRepository,
	accountRepo repository.AccountRepository,
	dispatcher net.Dispatcher,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		accountRepo: accountRepo,
		dispatcher:  dispatcher,
	}
}

// ==================== 同步 ====================

// SyncPack 按 pack 同步会话内全部消息
// 订单同步拿到 pack_id 后调用，webhook messages topic 也走这里
func (s *MessageService) SyncPack(ctx context.Context, account *model.Account, meliPackID int64, buyerUserID int64, buyerNick string) error {
	url := fmt.Sprintf("%s/messages/packs/%d/sellers/%d?mark_as_read=false&limit=50",
		meli.BaseURL, meliPackID, account.MeliUserID)

	var resp meli.MessagePackResp
	if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, url, &resp); err != nil {
		return fmt.Errorf("拉取会话 %d 失败: %w", meliPackID, err)
	}

	pack, err := s.messageRepo.GetPackByMeliPackID(ctx, meliPackID)
	if err != nil {
		pack = &model.MessagePack{
			MeliPackID:  meliPackID,
			AccountID:   account.ID,
			BuyerUserID: buyerUserID,
			BuyerNick:   buyerNick,
		}
		if err = s.messageRepo.SavePack(ctx, pack); err != nil {
			return err
		}
	}

	unread := 0
	var lastAt *time.Time
	for _, m := range resp.Messages {
		// 去重靠 meli_message_id 唯一索引
		if _, err := s.messageRepo.GetByMeliMessageID(ctx, m.ID); err == nil {
			continue
		}

		from := model.MessageFromBuyer
		if m.From.UserID == account.MeliUserID {
			from = model.MessageFromSeller
		} else {
			unread++
		}

		msg := &model.Message{
			PackID:        pack.ID,
			MeliMessageID: m.ID,
			From:          from,
			Text:          m.Text.Plain,
		}
		if t, err := time.Parse(time.RFC3339, m.MessageDate.Created); err == nil {
			msg.MeliCreatedAt = &t
			if lastAt == nil || t.After(*lastAt) {
				lastAt = &t
			}
		}
		if err := s.messageRepo.SaveMessage(ctx, msg); err != nil {
			return err
		}
	}

	pack.UnreadCount += unread
	if lastAt != nil {
		pack.LastMessageAt = lastAt
	}
	now := time.Now()
	pack.MeliSyncedAt = &now
	return s.messageRepo.SavePack(ctx, pack)
}

// ==================== 查询与操作 ====================

// ListPacks 会话列表
func (s *MessageService) ListPacks(ctx context.Context, ownerID int64, accountIDs []int64, unreadOnly bool, page, pageSize int) ([]model.MessagePack, int64, error) {
	resolved, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, accountIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(resolved) == 0 {
		return []model.MessagePack{}, 0, nil
	}
	return s.messageRepo.ListPacks(ctx, resolved, unreadOnly, page, pageSize)
}

// GetThread 会话消息（时间升序），同时清零未读
func (s *MessageService) GetThread(ctx context.Context, ownerID, packID int64) (*model.MessagePack, []model.Message, error) {
	pack, err := s.getOwnedPack(ctx, ownerID, packID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.messageRepo.ListMessages(ctx, pack.ID)
	if err != nil {
		return nil, nil, err
	}

	if pack.UnreadCount > 0 {
		_ = s.messageRepo.MarkPackRead(ctx, pack.ID)
		pack.UnreadCount = 0
	}
	return pack, messages, nil
}

// Send 发送消息: POST /messages/packs/:pack/sellers/:seller
func (s *MessageService) Send(ctx context.Context, ownerID, packID int64, text string) error {
	pack, err := s.getOwnedPack(ctx, ownerID, packID)
	if err != nil {
		return err
	}

	account, err := s.accountRepo.GetByID(ctx, pack.AccountID)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/messages/packs/%d/sellers/%d?tag=post_sale",
		meli.BaseURL, pack.MeliPackID, account.MeliUserID)
	body := map[string]interface{}{
		"from": map[string]interface{}{"user_id": fmt.Sprintf("%d", account.MeliUserID)},
		"to":   map[string]interface{}{"user_id": fmt.Sprintf("%d", pack.BuyerUserID)},
		"text": text,
	}

	var sent meli.MessageDTO
	if err = sendMeliJSON(ctx, s.dispatcher, account.ID, http.MethodPost, url, body, &sent); err != nil {
		return fmt.Errorf("ML 发送消息失败: %w", err)
	}

	now := time.Now()
	msg := &model.Message{
		PackID:        pack.ID,
		MeliMessageID: sent.ID,
		From:          model.MessageFromSeller,
		Text:          text,
		MeliCreatedAt: &now,
	}
	if err = s.messageRepo.SaveMessage(ctx, msg); err != nil {
		return err
	}

	pack.LastMessageAt = &now
	return s.messageRepo.SavePack(ctx, pack)
}

func (s *MessageService) getOwnedPack(ctx context.Context, ownerID, packID int64) (*model.MessagePack, error) {
	pack, err := s.messageRepo.GetPackByID(ctx, packID)
	if err != nil {
		return nil, fmt.Errorf("会话不存在")
	}
	account, err := s.accountRepo.GetByID(ctx, pack.AccountID)
	if err != nil || account.OwnerID != ownerID {
		return nil, fmt.Errorf("无权访问该会话")
	}
	return pack, nil
}
