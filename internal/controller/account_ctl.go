package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/service"
)

// AccountController ML 账号管理控制器
type AccountController struct {
	svc *service.AccountService
}

// NewAccountController 创建账号管理控制器
func NewAccountController(svc *service.AccountService) *AccountController {
	return &AccountController{svc: svc}
}

// ==================== 账号 ====================

// List 账号列表
// GET /api/v1/accounts
func (c *AccountController) List(ctx *gin.Context) {
	accounts, err := c.svc.ListAccounts(ctx, middleware.GetUserID(ctx))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": accounts})
}

// GetByID 账号详情
// GET /api/v1/accounts/:id
func (c *AccountController) GetByID(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	account, err := c.svc.GetAccount(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": account})
}

// Pause 暂停账号
// POST /api/v1/accounts/:id/pause
func (c *AccountController) Pause(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	if err := c.svc.Pause(ctx, middleware.GetUserID(ctx), id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "账号已暂停"})
}

// Resume 恢复账号
// POST /api/v1/accounts/:id/resume
func (c *AccountController) Resume(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	if err := c.svc.Resume(ctx, middleware.GetUserID(ctx), id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "账号已恢复"})
}

// Disconnect 断开账号
// DELETE /api/v1/accounts/:id
func (c *AccountController) Disconnect(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	if err := c.svc.Disconnect(ctx, middleware.GetUserID(ctx), id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "账号已断开，历史数据保留"})
}

// ==================== 开发者应用 ====================

// CreateApplication 录入开发者应用
// POST /api/v1/applications
func (c *AccountController) CreateApplication(ctx *gin.Context) {
	var req dto.ApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := c.svc.CreateApplication(ctx, &req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"id": app.ID}, "message": "应用已录入"})
}

// ListApplications 应用列表
// GET /api/v1/applications
func (c *AccountController) ListApplications(ctx *gin.Context) {
	apps, err := c.svc.ListApplications(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// client_secret 不回传前端
	list := make([]gin.H, 0, len(apps))
	for i := range apps {
		list = append(list, gin.H{
			"id":           apps[i].ID,
			"name":         apps[i].Name,
			"client_id":    apps[i].ClientID,
			"redirect_uri": apps[i].RedirectURI,
			"site_id":      apps[i].SiteID,
			"status":       apps[i].Status,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"data": list})
}

// UpdateApplication 更新应用配置
// PUT /api/v1/applications/:id
func (c *AccountController) UpdateApplication(ctx *gin.Context) {
	id := mustID(ctx)
	if id == 0 {
		return
	}

	var req dto.ApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.UpdateApplication(ctx, id, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "应用已更新"})
}

// ==================== 工具函数 ====================

// mustID 解析路径 :id，失败时已写入响应
func mustID(ctx *gin.Context) int64 {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return 0
	}
	return id
}
