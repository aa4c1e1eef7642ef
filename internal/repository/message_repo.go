package repository

import (
	"context"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// MessageRepository 买家消息仓库接口
type MessageRepository interface {
	GetPackByID(ctx context.Context, id int64) (*model.MessagePack, error)
	GetPackByMeliPackID(ctx context.Context, meliPackID int64) (*model.MessagePack, error)
	ListPacks(ctx context.Context, accountIDs []int64, unreadOnly bool, page, pageSize int) ([]model.MessagePack, int64, error)
	SavePack(ctx context.Context, pack *model.MessagePack) error
	MarkPackRead(ctx context.Context, packID int64) error

	ListMessages(ctx context.Context, packID int64) ([]model.Message, error)
	SaveMessage(ctx context.Context, message *model.Message) error
	GetByMeliMessageID(ctx context.Context, meliMessageID string) (*model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息仓库
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) GetPackByID(ctx context.Context, id int64) (*model.MessagePack, error) {
	var pack model.MessagePack
	err := r.db.WithContext(ctx).First(&pack, id).Error
	if err != nil {
		return nil, err
	}
	return &pack, nil
}

func (r *messageRepository) GetPackByMeliPackID(ctx context.Context, meliPackID int64) (*model.MessagePack, error) {
	var pack model.MessagePack
	err := r.db.WithContext(ctx).Where("meli_pack_id = ?", meliPackID).First(&pack).Error
	if err != nil {
		return nil, err
	}
	return &pack, nil
}

func (r *messageRepository) ListPacks(ctx context.Context, accountIDs []int64, unreadOnly bool, page, pageSize int) ([]model.MessagePack, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.MessagePack{})

	if len(accountIDs) > 0 {
		query = query.Where("account_id IN ?", accountIDs)
	}
	if unreadOnly {
		query = query.Where("unread_count > 0")
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

	var packs []model.MessagePack
	err := query.Order("last_message_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&packs).Error
	return packs, total, err
}

func (r *messageRepository) SavePack(ctx context.Context, pack *model.MessagePack) error {
	return r.db.WithContext(ctx).Save(pack).Error
}

func (r *messageRepository) MarkPackRead(ctx context.Context, packID int64) error {
	return r.db.WithContext(ctx).Model(&model.MessagePack{}).Where("id = ?", packID).
		Update("unread_count", 0).Error
}

func (r *messageRepository) ListMessages(ctx context.Context, packID int64) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("pack_id = ?", packID).
		Order("COALESCE(meli_created_at, created_at) ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) SaveMessage(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *messageRepository) GetByMeliMessageID(ctx context.Context, meliMessageID string) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).Where("meli_message_id = ?", meliMessageID).First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}
