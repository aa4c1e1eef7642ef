package repository

import (
	"context"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// QuestionFilter 提问列表查询条件
type QuestionFilter struct {
	AccountIDs []int64
	Status     string
	Page       int
	PageSize   int
}

// QuestionRepository 商品提问仓库接口
type QuestionRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Question, error)
	GetByMeliQuestionID(ctx context.Context, meliQuestionID int64) (*model.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]model.Question, int64, error)
	SaveOrUpdate(ctx context.Context, question *model.Question) error
	MarkAnswered(ctx context.Context, id int64, answerText string) error
	CountUnanswered(ctx context.Context, accountIDs []int64) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建提问仓库
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	var question model.Question
	err := r.db.WithContext(ctx).First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) GetByMeliQuestionID(ctx context.Context, meliQuestionID int64) (*model.Question, error) {
	var question model.Question
	err := r.db.WithContext(ctx).Where("meli_question_id = ?", meliQuestionID).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) List(ctx context.Context, filter QuestionFilter) ([]model.Question, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Question{})

	if len(filter.AccountIDs) > 0 {
		query = query.Where("account_id IN ?", filter.AccountIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var questions []model.Question
	err := query.Order("meli_created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&questions).Error
	return questions, total, err
}

func (r *questionRepository) SaveOrUpdate(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) MarkAnswered(ctx context.Context, id int64, answerText string) error {
	return r.db.WithContext(ctx).Model(&model.Question{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.QuestionStatusAnswered,
			"answer_text": answerText,
		}).Error
}

func (r *questionRepository) CountUnanswered(ctx context.Context, accountIDs []int64) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Question{}).
		Where("account_id IN ?", accountIDs).
		Where("status = ?", model.QuestionStatusUnanswered).
		Count(&count).Error
	return count, err
}
