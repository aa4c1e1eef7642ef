package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/service"
)

// DashboardController 聚合看板控制器
type DashboardController struct {
	svc *service.DashboardService
}

// NewDashboardController 创建看板控制器
func NewDashboardController(svc *service.DashboardService) *DashboardController {
	return &DashboardController{svc: svc}
}

// Get 聚合看板
// @Summary 跨账号聚合看板
// @Tags Dashboard
// @Param period query string false "today / 7d / 15d / 30d / 60d / 90d / custom"
// @Param from query string false "custom 起始日期 2006-01-02"
// @Param to query string false "custom 结束日期 2006-01-02"
// @Param account_ids query []int false "账号范围，留空为全部"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/dashboard [get]
func (c *DashboardController) Get(ctx *gin.Context) {
	var req dto.DashboardRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := c.svc.GetDashboard(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": resp})
}
