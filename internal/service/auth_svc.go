package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"
	"meli_hub_v1_202608/pkg/utils"
)

// 业务常量
const (
	// MeliAuthURL 授权页域名按站点区分，巴西站用 .com.br
	MeliAuthURL  = "https://auth.mercadolivre.com.br/authorization"
	MeliTokenURL = meli.BaseURL + "/oauth/token"

	// token 剩余有效期低于该值时提前刷新
	tokenRefreshMargin = 30 * time.Minute
)

type AuthService struct {
	AccountRepo repository.AccountRepository
	AppRepo     repository.ApplicationRepository

	// oauth 端点不需要 Bearer 头，走匿名 dispatcher
	dispatcher net.Dispatcher
}

// NewAuthService 工厂方法
func NewAuthService(accountRepo repository.AccountRepository, appRepo repository.ApplicationRepository) *AuthService {
	return &AuthService{
		AccountRepo: accountRepo,
		AppRepo:     appRepo,
		dispatcher:  net.NewDispatcher(nil),
	}
}

// GenerateLoginURL 生成授权链接
// 初次连接传 applicationID，重新授权已有账号传 accountID
func (s *AuthService) GenerateLoginURL(ctx context.Context, ownerID, applicationID, accountID int64) (string, error) {
	// 1. 定位开发者应用
	if accountID > 0 {
		account, err := s.AccountRepo.GetByID(ctx, accountID)
		if err != nil {
			return "", err
		}
		if account.OwnerID != ownerID {
			return "", errors.New("无权操作该账号")
		}
		applicationID = account.ApplicationID
	}

	app, err := s.AppRepo.GetByID(ctx, applicationID)
	if err != nil {
		return "", errors.New("开发者应用不存在，请先配置 client_id/secret")
	}

	// 2. 生成 PKCE 安全参数
	verifier, _ := utils.GenerateRandomString(64)
	challenge := utils.GenerateCodeChallenge(verifier)
	state, _ := utils.GenerateRandomString(16)

	// 3. 缓存 Verifier (key=state, value="verifier:owner_id:application_id")
	cacheValue := fmt.Sprintf("%s:%d:%d", verifier, ownerID, app.ID)
	utils.SetCache(state, cacheValue)

	// 4. 拼接 ML 官方授权 URL
	authURL := fmt.Sprintf(
		"%s?response_type=code&client_id=%s&redirect_uri=%s&state=%s&code_challenge=%s&code_challenge_method=S256",
		MeliAuthURL, app.ClientID, url.QueryEscape(app.RedirectURI), state, challenge,
	)
	return authURL, nil
}

// HandleCallback 处理 ML 回调 -> 换 Token -> 拉取卖家身份 -> 落库账号
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) (*model.Account, error) {
	// 1. 校验 State 取缓存
	cachedVal, exists := utils.GetCache(state)
	if !exists {
		return nil, fmt.Errorf("授权超时或 State 无效，请重新发起")
	}
	defer utils.DeleteCache(state)

	// 2. 解析缓存 "verifier:owner_id:application_id"
	parts := strings.Split(cachedVal, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("缓存数据格式错误: %s", cachedVal)
	}
	verifier := parts[0]
	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("缓存中的 OwnerID 无效: %v", err)
	}
	appID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("缓存中的 ApplicationID 无效: %v", err)
	}

	app, err := s.AppRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}

	// 3. 授权码换 Token
	tokenResp, err := s.exchangeToken(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {app.ClientID},
		"client_secret": {app.ClientSecret},
		"code":          {code},
		"code_verifier": {verifier},
		"redirect_uri":  {app.RedirectURI},
	})
	if err != nil {
		return nil, fmt.Errorf("换取 Token 失败: %v", err)
	}

	// 4. 拉取卖家身份，确定 meli_user_id
	user, err := s.fetchIdentity(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("拉取卖家信息失败: %v", err)
	}

	// 5. 按 meli_user_id 找旧账号，没有则新建
	account, err := s.AccountRepo.GetByMeliUserID(ctx, user.ID)
	if err != nil {
		account = &model.Account{
			MeliUserID: user.ID,
			OwnerID:    ownerID,
		}
	} else if account.OwnerID != ownerID {
		return nil, errors.New("该 ML 账号已被其他用户连接")
	}

	account.Nickname = user.Nickname
	account.Email = user.Email
	account.SiteID = user.SiteID
	account.ApplicationID = app.ID
	account.Status = model.AccountStatusActive
	account.TokenStatus = model.TokenStatusValid
	account.AccessToken = tokenResp.AccessToken
	account.RefreshToken = tokenResp.RefreshToken
	account.TokenExpiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	if user.SellerReputation != nil {
		account.ReputationLevel = user.SellerReputation.LevelID
		account.PowerSellerTier = user.SellerReputation.PowerSellerStatus
		account.RatingPositive = user.SellerReputation.Transactions.Ratings.Positive
	}
	now := time.Now()
	account.MeliSyncedAt = &now

	if err = s.AccountRepo.SaveOrUpdate(ctx, account); err != nil {
		return nil, fmt.Errorf("账号入库失败: %v", err)
	}
	return account, nil
}

// RefreshAccessToken 用 refresh_token 换新 Token
// ML 的 refresh_token 一次性有效，换取后必须立刻落库
func (s *AuthService) RefreshAccessToken(ctx context.Context, account *model.Account) error {
	if account.Application == nil {
		app, err := s.AppRepo.GetByID(ctx, account.ApplicationID)
		if err != nil {
			return fmt.Errorf("账号未绑定开发者应用: %v", err)
		}
		account.Application = app
	}

	tokenResp, err := s.exchangeToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {account.Application.ClientID},
		"client_secret": {account.Application.ClientSecret},
		"refresh_token": {account.RefreshToken},
	})
	if err != nil {
		// 只有明确被拒绝才标记为需重新授权
		if errors.Is(err, errTokenDenied) {
			_ = s.AccountRepo.UpdateTokenStatus(ctx, account.ID, model.TokenStatusInvalid)
			_ = s.AccountRepo.UpdateStatus(ctx, account.ID, model.AccountStatusExpired)
		}
		return fmt.Errorf("refresh token 失败 (account %d): %v", account.ID, err)
	}

	account.AccessToken = tokenResp.AccessToken
	account.RefreshToken = tokenResp.RefreshToken
	account.TokenExpiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	account.TokenStatus = model.TokenStatusValid

	return s.AccountRepo.SaveOrUpdate(ctx, account)
}

// errTokenDenied ML 明确拒绝（400/401），区分网络类错误
var errTokenDenied = errors.New("token exchange denied")

// exchangeToken 调 /oauth/token，authorization_code 和 refresh_token 共用
func (s *AuthService) exchangeToken(ctx context.Context, data url.Values) (*meli.TokenResp, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", MeliTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.dispatcher.Send(ctx, 0, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: status %d", errTokenDenied, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ML token endpoint status %d", resp.StatusCode)
	}

	var tokenResp meli.TokenResp
	if err = json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("token json decode failed: %v", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s", errTokenDenied, tokenResp.Error)
	}
	return &tokenResp, nil
}

// fetchIdentity 用刚换到的 token 调 /users/me
func (s *AuthService) fetchIdentity(ctx context.Context, accessToken string) (*meli.UserDTO, error) {
	req, err := net.BuildMeliGetRequest(ctx, meli.BaseURL+"/users/me")
	if err != nil {
		return nil, err
	}
	// 账号尚未落库，手工带 token 走匿名通道
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.dispatcher.Send(ctx, 0, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("/users/me status %d", resp.StatusCode)
	}

	var user meli.UserDTO
	if err = json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ==================== TokenProvider 实现 ====================
// AuthService 同时充当 Dispatcher 的凭证来源：
// 取 token 时发现快过期就地刷新，收到 401 上报时强制刷新一次

// GetAccessToken 实现 net.TokenProvider
func (s *AuthService) GetAccessToken(ctx context.Context, accountID int64) (string, error) {
	account, err := s.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("account %d not found: %v", accountID, err)
	}
	if account.TokenStatus == model.TokenStatusInvalid {
		return "", fmt.Errorf("account %d 需要重新授权", accountID)
	}

	if account.TokenExpiringSoon(tokenRefreshMargin) {
		if err = s.RefreshAccessToken(ctx, account); err != nil {
			return "", err
		}
	}
	return account.AccessToken, nil
}

// ReportUnauthorized 实现 net.TokenProvider
func (s *AuthService) ReportUnauthorized(ctx context.Context, accountID int64) {
	account, err := s.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		return
	}
	// 收到 401 先标记过期，再尝试用 refresh_token 救回来
	_ = s.AccountRepo.UpdateTokenStatus(ctx, accountID, model.TokenStatusExpired)
	if err = s.RefreshAccessToken(ctx, account); err != nil {
		log.Printf("[Auth] 401 后刷新失败 account %d: %v", accountID, err)
	}
}
