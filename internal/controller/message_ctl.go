package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/service"
)

// MessageController 买家站内信控制器
type MessageController struct {
	svc *service.MessageService
}

// NewMessageController 创建站内信控制器
func NewMessageController(svc *service.MessageService) *MessageController {
	return &MessageController{svc: svc}
}

// ListPacks 会话列表
// GET /api/v1/messages/packs
func (c *MessageController) ListPacks(ctx *gin.Context) {
	var req struct {
		AccountID  int64 `form:"account_id"`
		UnreadOnly bool  `form:"unread_only"`
		Page       int   `form:"page,default=1"`
		PageSize   int   `form:"page_size,default=20"`
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var accountIDs []int64
	if req.AccountID > 0 {
		accountIDs = []int64{req.AccountID}
	}

	packs, total, err := c.svc.ListPacks(ctx, middleware.GetUserID(ctx), accountIDs, req.UnreadOnly, req.Page, req.PageSize)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.PageResult{
		List:  packs,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}})
}

// GetThread 会话消息流
// GET /api/v1/messages/packs/:id
func (c *MessageController) GetThread(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	pack, messages, err := c.svc.GetThread(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
		"pack":     pack,
		"messages": messages,
	}})
}

// Send 发送消息
// POST /api/v1/messages/packs/:id
func (c *MessageController) Send(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req dto.MessageSendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.Send(ctx, middleware.GetUserID(ctx), id, req.Text); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "消息已发送"})
}
