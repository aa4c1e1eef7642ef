package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"
)

// OrderController 订单控制器
type OrderController struct {
	svc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(svc *service.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

// List 订单列表
// GET /api/v1/orders
func (c *OrderController) List(ctx *gin.Context) {
	var req dto.OrderListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.OrderFilter{
		Status:   req.Status,
		Keyword:  req.Keyword,
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
		// 含当天，转为次日零点的开区间
		end := filter.DateTo.AddDate(0, 0, 1)
		filter.DateTo = &end
	}

	orders, total, err := c.svc.ListOrders(ctx, middleware.GetUserID(ctx), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.PageResult{
		List:  orders,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}})
}

// GetByID 订单详情
// GET /api/v1/orders/:id
func (c *OrderController) GetByID(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	order, err := c.svc.GetOrderDetail(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": order})
}

// UpdateNote 更新卖家备注
// PUT /api/v1/orders/:id/note
func (c *OrderController) UpdateNote(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req dto.OrderNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.UpdateSellerNote(ctx, middleware.GetUserID(ctx), id, req.Note); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "备注已更新"})
}

// parseDate 解析 2006-01-02，空串返回 nil
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
