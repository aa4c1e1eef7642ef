package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/service"
)

// InvoiceController 发票控制器
type InvoiceController struct {
	svc *service.InvoiceService
}

// NewInvoiceController 创建发票控制器
func NewInvoiceController(svc *service.InvoiceService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

// List 发票列表
// GET /api/v1/invoices
func (c *InvoiceController) List(ctx *gin.Context) {
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

	var accountIDs []int64
	if req.AccountID > 0 {
		accountIDs = []int64{req.AccountID}
	}

	invoices, total, err := c.svc.ListInvoices(ctx, middleware.GetUserID(ctx), accountIDs, req.Status, req.Page, req.PageSize)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.PageResult{
		List:  invoices,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}})
}

// ListByOrder 按 ML 订单号查发票
// GET /api/v1/invoices/order/:order_id
func (c *InvoiceController) ListByOrder(ctx *gin.Context) {
	orderID, err := strconv.ParseInt(ctx.Param("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的订单号"})
		return
	}

	invoices, err := c.svc.ListByOrder(ctx, middleware.GetUserID(ctx), orderID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": invoices})
}

// GetByID 发票详情
// GET /api/v1/invoices/:id
func (c *InvoiceController) GetByID(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	invoice, err := c.svc.GetInvoice(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": invoice})
}

// Reissue 重开被拒发票
// POST /api/v1/invoices/:id/reissue
func (c *InvoiceController) Reissue(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	if err := c.svc.Reissue(ctx, middleware.GetUserID(ctx), id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "重开请求已提交"})
}
