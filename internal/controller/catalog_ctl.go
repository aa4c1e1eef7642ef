package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/service"
)

// CatalogController 目录竞价控制器
type CatalogController struct {
	svc *service.CatalogService
}

// NewCatalogController 创建目录竞价控制器
func NewCatalogController(svc *service.CatalogService) *CatalogController {
	return &CatalogController{svc: svc}
}

// ListPositions 目录位次列表
// GET /api/v1/catalog/positions
func (c *CatalogController) ListPositions(ctx *gin.Context) {
	var req struct {
		AccountID int64  `form:"account_id"`
		Status    string `form:"status"` // winning / losing / sharing_first_place
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var accountIDs []int64
	if req.AccountID > 0 {
		accountIDs = []int64{req.AccountID}
	}

	positions, err := c.svc.ListPositions(ctx, middleware.GetUserID(ctx), accountIDs, req.Status)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": positions})
}

// GetPosition 单品目录位次
// GET /api/v1/catalog/positions/:id/items/:item_id
func (c *CatalogController) GetPosition(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	itemID := ctx.Param("item_id")
	if itemID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少 item_id"})
		return
	}

	position, err := c.svc.GetPosition(ctx, middleware.GetUserID(ctx), id, itemID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": position})
}
