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

// ==================== QuestionService ====================

// QuestionService 买家咨询服务
type QuestionService struct {
	questionRepo repository.QuestionRepository
	productRepo  repository.ProductRepository
	accountRepo  repository.AccountRepository
	dispatcher   net.Dispatcher
	ai           *AIService // 可为 nil
}

// NewQuestionService 创建咨询服务
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	productRepo repository.ProductRepository,
	accountRepo repository.AccountRepository,
	dispatcher net.Dispatcher,
	ai *AIService,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		productRepo:  productRepo,
		accountRepo:  accountRepo,
		dispatcher:   dispatcher,
		ai:           ai,
	}
}

// ==================== 同步 ====================

// SyncQuestions 拉取账号全部待回答及近期咨询
func (s *QuestionService) SyncQuestions(ctx context.Context, account *model.Account) (int, error) {
	if !account.IsConnected() {
		return 0, fmt.Errorf("account %d 未连接", account.ID)
	}

	synced := 0
	offset := 0
	const limit = 50

	for {
		searchURL := fmt.Sprintf("%s/questions/search?seller_id=%d&sort_fields=date_created&sort_types=DESC&limit=%d&offset=%d&api_version=4",
			meli.BaseURL, account.MeliUserID, limit, offset)

		var resp meli.QuestionSearchResp
		if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, searchURL, &resp); err != nil {
			return synced, fmt.Errorf("拉取咨询失败 (offset %d): %w", offset, err)
		}

		for i := range resp.Questions {
			if err := s.upsertQuestion(ctx, account.ID, &resp.Questions[i]); err != nil {
				log.Printf("[QuestionSync] 咨询 %d 落库失败: %v", resp.Questions[i].ID, err)
				continue
			}
			synced++
		}

		offset += limit
		if offset >= resp.Total || len(resp.Questions) == 0 {
			break
		}
	}

	return synced, nil
}

// SyncOneByMeliID 按咨询 id 同步单条 (webhook questions topic)
func (s *QuestionService) SyncOneByMeliID(ctx context.Context, account *model.Account, meliQuestionID int64) error {
	var q meli.QuestionDTO
	url := fmt.Sprintf("%s/questions/%d?api_version=4", meli.BaseURL, meliQuestionID)
	if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, url, &q); err != nil {
		return err
	}
	return s.upsertQuestion(ctx, account.ID, &q)
}

func (s *QuestionService) upsertQuestion(ctx context.Context, accountID int64, dto *meli.QuestionDTO) error {
	question, err := s.questionRepo.GetByMeliQuestionID(ctx, dto.ID)
	if err != nil {
		question = &model.Question{MeliQuestionID: dto.ID, AccountID: accountID}
	}

	question.MeliItemID = dto.ItemID
	question.FromUserID = dto.From.ID
	question.Text = dto.Text
	question.Status = dto.Status
	if dto.Answer != nil {
		question.AnswerText = dto.Answer.Text
		if t, err := time.Parse(time.RFC3339, dto.Answer.DateCreated); err == nil {
			question.AnsweredAt = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, dto.DateCreated); err == nil {
		question.MeliCreatedAt = &t
	}
	now := time.Now()
	question.MeliSyncedAt = &now

	return s.questionRepo.SaveOrUpdate(ctx, question)
}

// ==================== 查询与操作 ====================

// ListQuestions 咨询列表
func (s *QuestionService) ListQuestions(ctx context.Context, ownerID int64, filter repository.QuestionFilter) ([]model.Question, int64, error) {
	accountIDs, err := resolveOwnedAccounts(ctx, s.accountRepo, ownerID, filter.AccountIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(accountIDs) == 0 {
		return []model.Question{}, 0, nil
	}
	filter.AccountIDs = accountIDs
	return s.questionRepo.List(ctx, filter)
}

// Answer 回答咨询: POST /answers {"question_id", "text"}
func (s *QuestionService) Answer(ctx context.Context, ownerID, questionID int64, text string) error {
	question, err := s.getOwned(ctx, ownerID, questionID)
	if err != nil {
		return err
	}
	if !question.CanAnswer() {
		return fmt.Errorf("咨询当前状态 %s 不可回答", question.Status)
	}

	body := map[string]interface{}{
		"question_id": question.MeliQuestionID,
		"text":        text,
	}
	if err = sendMeliJSON(ctx, s.dispatcher, question.AccountID, http.MethodPost,
		meli.BaseURL+"/answers", body, nil); err != nil {
		return fmt.Errorf("ML 回答失败: %w", err)
	}

	return s.questionRepo.MarkAnswered(ctx, question.ID, text)
}

// Delete 删除咨询: DELETE /questions/:id
func (s *QuestionService) Delete(ctx context.Context, ownerID, questionID int64) error {
	question, err := s.getOwned(ctx, ownerID, questionID)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/questions/%d", meli.BaseURL, question.MeliQuestionID)
	if err = sendMeliJSON(ctx, s.dispatcher, question.AccountID, http.MethodDelete, url, nil, nil); err != nil {
		return fmt.Errorf("ML 删除咨询失败: %w", err)
	}

	question.Status = model.QuestionStatusDeleted
	return s.questionRepo.SaveOrUpdate(ctx, question)
}

// SuggestAnswer 生成 AI 回复草稿，不落库不回传
func (s *QuestionService) SuggestAnswer(ctx context.Context, ownerID, questionID int64) (*AnswerSuggestion, error) {
	if s.ai == nil {
		return nil, fmt.Errorf("AI 服务未配置")
	}

	question, err := s.getOwned(ctx, ownerID, questionID)
	if err != nil {
		return nil, err
	}

	// 拼上商品上下文，拿不到商品就只用提问文本
	title, desc := "", ""
	if product, err := s.productRepo.GetByMeliItemID(ctx, question.MeliItemID); err == nil {
		title = product.Title
	}

	return s.ai.SuggestAnswer(ctx, title, desc, question.Text)
}

func (s *QuestionService) getOwned(ctx context.Context, ownerID, questionID int64) (*model.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("咨询不存在")
	}
	account, err := s.accountRepo.GetByID(ctx, question.AccountID)
	if err != nil || account.OwnerID != ownerID {
		return nil, fmt.Errorf("无权访问该咨询")
	}
	return question, nil
}
