package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meli_hub_v1_202608/internal/model"
)

// 审计链路端到端：鉴权后的用户 ID 经 AuditContext 注入 request context，
// GORM 回调据此落 CreatedBy/UpdatedBy
func TestAuditContext_StampsCreatedBy(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SysUser{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	RegisterAuditCallbacks(db)

	r := gin.New()
	// 模拟 JWTAuth 已写入用户身份
	r.Use(func(c *gin.Context) {
		c.Set(ContextKeyUserID, int64(42))
		c.Set(ContextKeyUsername, "admin")
		c.Next()
	})
	r.Use(AuditContext())
	r.POST("/users", func(c *gin.Context) {
		user := model.SysUser{Username: "novo", Password: "hash"}
		if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": user.ID})
	})

	req, _ := http.NewRequest(http.MethodPost, "/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var saved model.SysUser
	if err := db.Where("username = ?", "novo").First(&saved).Error; err != nil {
		t.Fatalf("查询落库记录失败: %v", err)
	}
	if saved.CreatedBy != 42 {
		t.Errorf("created_by = %d, want 42", saved.CreatedBy)
	}
	if saved.UpdatedBy != 42 {
		t.Errorf("updated_by = %d, want 42", saved.UpdatedBy)
	}
}

// 未登录请求不应写入审计信息
func TestGetAuditUserID_MissingInfo(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if got := GetAuditUserID(req.Context()); got != 0 {
		t.Errorf("GetAuditUserID = %d, want 0", got)
	}
}
