package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
	"meli_hub_v1_202608/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

func setupUserRouter(t *testing.T) *gin.Engine {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SysUser{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	ctl := NewUserController(service.NewUserService(repository.NewUserRepository(db)))

	r := gin.New()
	r.POST("/api/v1/users/register", ctl.Register)
	r.POST("/api/v1/users/login", ctl.Login)
	return r
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 注册 / 登录 ====================

func TestUserController_Register(t *testing.T) {
	router := setupUserRouter(t)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "正常注册",
			body:       gin.H{"username": "vendedor", "password": "senha123", "email": "v@example.com"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "用户名过短",
			body:       gin.H{"username": "ab", "password": "senha123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "密码过短",
			body:       gin.H{"username": "outro", "password": "123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "邮箱格式错误",
			body:       gin.H{"username": "outro", "password": "senha123", "email": "not-an-email"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "重复用户名",
			body:       gin.H{"username": "vendedor", "password": "senha123"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/v1/users/register", tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestUserController_Login(t *testing.T) {
	router := setupUserRouter(t)

	w := performRequest(router, http.MethodPost, "/api/v1/users/register",
		gin.H{"username": "lojista", "password": "senha123"})
	assert.Equal(t, http.StatusOK, w.Code)

	// 正确凭证
	w = performRequest(router, http.MethodPost, "/api/v1/users/login",
		gin.H{"username": "lojista", "password": "senha123"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.AccessToken)
	assert.NotEmpty(t, resp.Data.RefreshToken)

	// 错误密码
	w = performRequest(router, http.MethodPost, "/api/v1/users/login",
		gin.H{"username": "lojista", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ==================== 路径 ID 解析 ====================

func TestMustID(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id := mustID(c)
		if id == 0 {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := performRequest(r, http.MethodGet, "/items/42", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, "/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodGet, "/items/-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
