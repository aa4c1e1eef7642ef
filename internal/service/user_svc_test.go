package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/middleware"
	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
)

func setupUserTestDB(t *testing.T) *UserService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SysUser{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return NewUserService(repository.NewUserRepository(db))
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc := setupUserTestDB(t)
	ctx := context.Background()

	info, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "vendedor",
		Password: "senha123",
		Email:    "vendedor@example.com",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if info.Role != "seller" {
		t.Errorf("默认角色 = %s, want seller", info.Role)
	}

	// 重名拒绝
	if _, err := svc.Register(ctx, &dto.RegisterRequest{Username: "vendedor", Password: "outra123"}); err == nil {
		t.Error("重复用户名应报错")
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "vendedor", Password: "senha123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录应返回 token 对")
	}

	claims, err := middleware.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("access token 解析失败: %v", err)
	}
	if claims.UserID != info.ID {
		t.Errorf("token user_id = %d, want %d", claims.UserID, info.ID)
	}

	// 密码错误
	if _, err := svc.Login(ctx, &dto.LoginRequest{Username: "vendedor", Password: "errada"}); err == nil {
		t.Error("密码错误应报错")
	}
}

func TestUserService_RefreshToken(t *testing.T) {
	svc := setupUserTestDB(t)
	ctx := context.Background()

	info, err := svc.Register(ctx, &dto.RegisterRequest{Username: "lojista", Password: "senha123"})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "lojista", Password: "senha123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("刷新应返回新 access token")
	}

	// access token 不能当 refresh token 用
	if _, err := svc.RefreshToken(ctx, login.AccessToken); err == nil {
		t.Error("用 access token 刷新应报错")
	}

	// 禁用后拒绝刷新
	if err := svc.SetActive(ctx, info.ID, false); err != nil {
		t.Fatalf("禁用用户失败: %v", err)
	}
	if _, err := svc.RefreshToken(ctx, login.RefreshToken); err == nil {
		t.Error("禁用用户刷新应报错")
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	svc := setupUserTestDB(t)
	ctx := context.Background()

	info, err := svc.Register(ctx, &dto.RegisterRequest{Username: "troca", Password: "antiga123"})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	// 旧密码错误
	err = svc.ChangePassword(ctx, info.ID, &dto.ChangePasswordRequest{OldPassword: "errada", NewPassword: "nova123"})
	if err == nil {
		t.Error("旧密码错误应报错")
	}

	err = svc.ChangePassword(ctx, info.ID, &dto.ChangePasswordRequest{OldPassword: "antiga123", NewPassword: "nova123"})
	if err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Username: "troca", Password: "nova123"}); err != nil {
		t.Errorf("新密码登录失败: %v", err)
	}
}
