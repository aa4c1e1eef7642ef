package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/task"
)

// SyncController 手动同步控制器
type SyncController struct {
	taskManager *task.TaskManager
}

// NewSyncController 创建同步控制器
func NewSyncController(taskManager *task.TaskManager) *SyncController {
	return &SyncController{taskManager: taskManager}
}

// TriggerOrders 触发账号订单同步
// @Summary 手动同步账号订单
// @Tags Sync
// @Param id path int true "账号ID"
// @Success 200 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{} "限流中"
// @Router /api/v1/sync/accounts/{id}/orders [post]
func (c *SyncController) TriggerOrders(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	count, err := c.taskManager.TriggerOrderSync(ctx, id)
	if err != nil {
		c.writeTaskError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"synced": count}, "message": "订单同步完成"})
}

// TriggerAllOrders 触发所有账号订单同步 (后台异步)
// POST /api/v1/sync/orders
func (c *SyncController) TriggerAllOrders(ctx *gin.Context) {
	c.taskManager.TriggerAllOrdersSync()
	ctx.JSON(http.StatusOK, gin.H{"message": "全量订单同步已触发"})
}

// TriggerProducts 触发账号商品同步
// POST /api/v1/sync/accounts/:id/products
func (c *SyncController) TriggerProducts(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	count, err := c.taskManager.TriggerProductSync(ctx, id)
	if err != nil {
		c.writeTaskError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"synced": count}, "message": "商品同步完成"})
}

// TriggerAllProducts 触发所有账号商品同步 (后台异步)
// POST /api/v1/sync/products
func (c *SyncController) TriggerAllProducts(ctx *gin.Context) {
	c.taskManager.TriggerAllProductsSync()
	ctx.JSON(http.StatusOK, gin.H{"message": "全量商品同步已触发"})
}

// TriggerQuestions 触发账号咨询同步
// POST /api/v1/sync/accounts/:id/questions
func (c *SyncController) TriggerQuestions(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	count, err := c.taskManager.TriggerQuestionSync(ctx, id)
	if err != nil {
		c.writeTaskError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"synced": count}, "message": "咨询同步完成"})
}

// TriggerClaims 触发账号纠纷同步
// POST /api/v1/sync/accounts/:id/claims
func (c *SyncController) TriggerClaims(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	count, err := c.taskManager.TriggerClaimSync(ctx, id)
	if err != nil {
		c.writeTaskError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"synced": count}, "message": "纠纷同步完成"})
}

// TriggerPayments 触发账号收款同步
// POST /api/v1/sync/accounts/:id/payments
func (c *SyncController) TriggerPayments(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	count, err := c.taskManager.TriggerPaymentSync(ctx, id)
	if err != nil {
		c.writeTaskError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"synced": count}, "message": "收款同步完成"})
}

// Status 同步任务开关状态
// GET /api/v1/sync/status
func (c *SyncController) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"data": c.taskManager.Status()})
}

// writeTaskError 限流返回 429，任务关闭返回 503，其余 500
func (c *SyncController) writeTaskError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, task.ErrRateLimited):
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, task.ErrTaskDisabled):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
