package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"
)

// PaymentController 资金控制器: 收款 / 结算 / 订阅
type PaymentController struct {
	svc *service.PaymentService
}

// NewPaymentController 创建资金控制器
func NewPaymentController(svc *service.PaymentService) *PaymentController {
	return &PaymentController{svc: svc}
}

// ==================== 收款 ====================

// ListPayments 收款列表
// GET /api/v1/payments
func (c *PaymentController) ListPayments(ctx *gin.Context) {
	var req struct {
		AccountID int64  `form:"account_id"`
		Status    string `form:"status"`
		From      string `form:"from"`
		To        string `form:"to"`
		Page      int    `form:"page,default=1"`
		PageSize  int    `form:"page_size,default=20"`
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.PaymentFilter{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.AccountID > 0 {
		filter.AccountIDs = []int64{req.AccountID}
	}

	var err error
	if filter.DateFrom, err = parseDate(req.From); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "from 日期格式错误，应为 2006-01-02"})
		return
	}
	if filter.DateTo, err = parseDate(req.To); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "to 日期格式错误，应为 2006-01-02"})
		return
	}
	if filter.DateTo != nil {
		end := filter.DateTo.AddDate(0, 0, 1)
		filter.DateTo = &end
	}

	payments, total, err := c.svc.ListPayments(ctx, middleware.GetUserID(ctx), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.PageResult{
		List:  payments,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}})
}

// Refund 退款
// POST /api/v1/payments/:id/refund
func (c *PaymentController) Refund(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req dto.RefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.Refund(ctx, middleware.GetUserID(ctx), id, req.Amount); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "退款已发起"})
}

// ==================== 结算 ====================

// ListSettlements 结算记录
// GET /api/v1/settlements
func (c *PaymentController) ListSettlements(ctx *gin.Context) {
	var req struct {
		AccountID int64  `form:"account_id"`
		Period    string `form:"period"` // 2006-01
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var accountIDs []int64
	if req.AccountID > 0 {
		accountIDs = []int64{req.AccountID}
	}

	settlements, err := c.svc.ListSettlements(ctx, middleware.GetUserID(ctx), accountIDs, req.Period)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": settlements})
}

// SettlementSummary 结算汇总
// GET /api/v1/settlements/summary
func (c *PaymentController) SettlementSummary(ctx *gin.Context) {
	var req struct {
		AccountID int64  `form:"account_id"`
		Period    string `form:"period"`
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var accountIDs []int64
	if req.AccountID > 0 {
		accountIDs = []int64{req.AccountID}
	}

	summary, err := c.svc.SettlementSummary(ctx, middleware.GetUserID(ctx), accountIDs, req.Period)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
		"gross": float64(summary.GrossCents) / 100,
		"fee":   float64(summary.FeeCents) / 100,
		"net":   float64(summary.NetCents) / 100,
	}})
}

// ==================== 订阅 ====================

// ListSubscriptions 订阅列表
// GET /api/v1/subscriptions
func (c *PaymentController) ListSubscriptions(ctx *gin.Context) {
	var req struct {
		AccountID int64  `form:"account_id"`
		Status    string `form:"status"`
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var accountIDs []int64
	if req.AccountID > 0 {
		accountIDs = []int64{req.AccountID}
	}

	subs, err := c.svc.ListSubscriptions(ctx, middleware.GetUserID(ctx), accountIDs, req.Status)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": subs})
}

// PauseSubscription 暂停订阅
// POST /api/v1/subscriptions/:id/pause
func (c *PaymentController) PauseSubscription(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	if err := c.svc.PauseSubscription(ctx, middleware.GetUserID(ctx), id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "订阅已暂停"})
}

// CancelSubscription 取消订阅
// POST /api/v1/subscriptions/:id/cancel
func (c *PaymentController) CancelSubscription(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	if err := c.svc.CancelSubscription(ctx, middleware.GetUserID(ctx), id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "订阅已取消"})
}
