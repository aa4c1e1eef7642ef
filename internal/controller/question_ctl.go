package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"
)

// QuestionController 售前咨询控制器
type QuestionController struct {
	svc *service.QuestionService
}

// NewQuestionController 创建咨询控制器
func NewQuestionController(svc *service.QuestionService) *QuestionController {
	return &QuestionController{svc: svc}
}

// List 咨询列表
// GET /api/v1/questions
func (c *QuestionController) List(ctx *gin.Context) {
	var req struct {
		AccountID int64  `form:"account_id"`
		Status    string `form:"status"`
		Page      int    `form:"page,default=1"`
		PageSize  int    `form:"page_size,default=20"`
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.QuestionFilter{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.AccountID > 0 {
		filter.AccountIDs = []int64{req.AccountID}
	}

	questions, total, err := c.svc.ListQuestions(ctx, middleware.GetUserID(ctx), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.PageResult{
		List:  questions,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}})
}

// Answer 回答咨询
// POST /api/v1/questions/:id/answer
func (c *QuestionController) Answer(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req dto.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.Answer(ctx, middleware.GetUserID(ctx), id, req.Text); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "回答已提交"})
}

// Delete 删除咨询
// DELETE /api/v1/questions/:id
func (c *QuestionController) Delete(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	if err := c.svc.Delete(ctx, middleware.GetUserID(ctx), id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "咨询已删除"})
}

// Suggest AI 生成回答草稿
// POST /api/v1/questions/:id/suggest
func (c *QuestionController) Suggest(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	suggestion, err := c.svc.SuggestAnswer(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": suggestion})
}
