package model

import (
	"time"

	"gorm.io/gorm"
)

// Question 状态常量（ML 返回大写枚举）
const (
	QuestionStatusUnanswered = "UNANSWERED" // 待回答
	QuestionStatusAnswered   = "ANSWERED"   // 已回答
	QuestionStatusDeleted    = "DELETED"    // 已删除
	QuestionStatusBanned     = "BANNED"     // 被平台屏蔽
)

// Question 商品咨询
type Question struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	MeliQuestionID int64 `gorm:"uniqueIndex;not null"`
	AccountID      int64 `gorm:"index;not null"`

	// 提问信息
	MeliItemID string `gorm:"size:32;index"`
	FromUserID int64
	Text       string `gorm:"type:text;not null"`
	Status     string `gorm:"size:20;index;default:UNANSWERED"`

	// 回答
	AnswerText string `gorm:"type:text"`
	AnsweredAt *time.Time

	// 平台时间
	MeliCreatedAt *time.Time `gorm:"index"`
	MeliSyncedAt  *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Question) TableName() string {
	return "questions"
}

// CanAnswer 检查是否可以回答
func (q *Question) CanAnswer() bool {
	return q.Status == QuestionStatusUnanswered
}
