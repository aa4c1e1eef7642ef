package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"
)

// ClaimController 售后纠纷控制器
type ClaimController struct {
	svc *service.ClaimService
}

// NewClaimController 创建纠纷控制器
func NewClaimController(svc *service.ClaimService) *ClaimController {
	return &ClaimController{svc: svc}
}

// List 纠纷列表
// GET /api/v1/claims
func (c *ClaimController) List(ctx *gin.Context) {
	var req struct {
		AccountID int64  `form:"account_id"`
		Status    string `form:"status"`
		Stage     string `form:"stage"`
		Page      int    `form:"page,default=1"`
		PageSize  int    `form:"page_size,default=20"`
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.ClaimFilter{
		Status:   req.Status,
		Stage:    req.Stage,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.AccountID > 0 {
		filter.AccountIDs = []int64{req.AccountID}
	}

	claims, total, err := c.svc.ListClaims(ctx, middleware.GetUserID(ctx), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.PageResult{
		List:  claims,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}})
}

// GetByID 纠纷详情
// GET /api/v1/claims/:id
func (c *ClaimController) GetByID(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	claim, err := c.svc.GetClaim(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": claim})
}

// Reply 回应纠纷
// POST /api/v1/claims/:id/reply
func (c *ClaimController) Reply(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req dto.ClaimReplyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.Reply(ctx, middleware.GetUserID(ctx), id, req.Text); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "回应已提交"})
}
