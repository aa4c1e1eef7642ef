package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/service"
)

// AuthController ML OAuth 授权控制器
type AuthController struct {
	svc *service.AuthService
}

// NewAuthController 创建授权控制器
func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{svc: svc}
}

// Connect 发起账号连接
// @Summary 生成 ML 授权链接
// @Tags Auth
// @Param body body dto.ConnectRequest true "application_id 或 account_id"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/connect [post]
func (c *AuthController) Connect(ctx *gin.Context) {
	var req dto.ConnectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loginURL, err := c.svc.GenerateLoginURL(ctx, middleware.GetUserID(ctx), req.ApplicationID, req.AccountID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"auth_url": loginURL}})
}

// Callback ML 授权回调
// @Summary OAuth 回调，换 token 并落库账号
// @Tags Auth
// @Param code query string true "授权码"
// @Param state query string true "防 CSRF 随机串"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/callback [get]
func (c *AuthController) Callback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" || state == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少 code 或 state 参数"})
		return
	}

	account, err := c.svc.HandleCallback(ctx, code, state)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "账号连接成功",
		"data": gin.H{
			"account_id":   account.ID,
			"meli_user_id": account.MeliUserID,
			"nickname":     account.Nickname,
			"site_id":      account.SiteID,
		},
	})
}
