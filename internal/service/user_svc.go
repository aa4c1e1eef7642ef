package service

import (
	"context"
	"fmt"
	"time"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// ==================== UserService ====================

// UserService 系统用户服务: 注册 / 登录 / 改密
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register 注册新用户，默认 seller 角色
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("用户名 %s 已存在", req.Username)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.SysUser{
		Username: req.Username,
		Password: string(hashed),
		Email:    req.Email,
		Role:     "seller",
		IsActive: true,
	}
	if err = s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	info := toUserInfo(user)
	return &info, nil
}

// Login 登录，签发 token 对
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("用户名或密码错误")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("账号已停用")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("用户名或密码错误")
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("签发 token 失败: %w", err)
	}

	info := toUserInfo(user)
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(middleware.GetJWTConfig().AccessTokenTTL),
		User:         &info,
	}, nil
}

// RefreshToken 用 refresh token 换新 token 对
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh token 无效或已过期")
	}
	if claims.Subject != "refresh" {
		return nil, fmt.Errorf("token 类型错误")
	}

	// 停用的用户不再续签
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, fmt.Errorf("账号不可用")
	}

	accessToken, newRefresh, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("签发 token 失败: %w", err)
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    time.Now().Add(middleware.GetJWTConfig().AccessTokenTTL),
	}, nil
}

// ChangePassword 修改密码，需验证旧密码
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("用户不存在")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) != nil {
		return fmt.Errorf("旧密码错误")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}

	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}

// GetProfile 当前用户信息
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("用户不存在")
	}
	info := toUserInfo(user)
	return &info, nil
}

// SetActive 启停用户（管理员）
func (s *UserService) SetActive(ctx context.Context, userID int64, active bool) error {
	return s.userRepo.SetActive(ctx, userID, active)
}

func toUserInfo(user *model.SysUser) dto.UserInfo {
	return dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}
