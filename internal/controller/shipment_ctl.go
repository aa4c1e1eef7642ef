package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"
)

// ShipmentController 物流控制器
type ShipmentController struct {
	svc *service.ShipmentService
}

// NewShipmentController 创建物流控制器
func NewShipmentController(svc *service.ShipmentService) *ShipmentController {
	return &ShipmentController{svc: svc}
}

// List 物流单列表
// GET /api/v1/shipments
func (c *ShipmentController) List(ctx *gin.Context) {
	var req struct {
		AccountID    int64  `form:"account_id"`
		Status       string `form:"status"`
		LogisticType string `form:"logistic_type"`
		Page         int    `form:"page,default=1"`
		PageSize     int    `form:"page_size,default=20"`
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.ShipmentFilter{
		Status:       req.Status,
		LogisticType: req.LogisticType,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}
	if req.AccountID > 0 {
		filter.AccountIDs = []int64{req.AccountID}
	}

	shipments, total, err := c.svc.ListShipments(ctx, middleware.GetUserID(ctx), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.PageResult{
		List:  shipments,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}})
}

// GetByID 物流单详情
// GET /api/v1/shipments/:id
func (c *ShipmentController) GetByID(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	shipment, err := c.svc.GetShipment(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": shipment})
}

// Label 获取面单下载地址
// GET /api/v1/shipments/:id/label
func (c *ShipmentController) Label(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	url, err := c.svc.GetLabelURL(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"label_url": url}})
}
