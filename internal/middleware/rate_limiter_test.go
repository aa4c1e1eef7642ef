package middleware

import (
	"testing"
	"time"
)

func TestSyncRateLimiter_Check(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := AccountSyncKey(1, SyncTypeOrder)

	first := limiter.Check(key, time.Minute)
	if !first.Allowed {
		t.Fatal("首次检查应放行")
	}

	second := limiter.Check(key, time.Minute)
	if second.Allowed {
		t.Fatal("冷却期内应拒绝")
	}
	if second.RetryAfter <= 0 || second.RetryAfter > time.Minute {
		t.Errorf("retry_after = %v, 应在 (0, 1m] 内", second.RetryAfter)
	}

	// 不同账号互不影响
	other := limiter.Check(AccountSyncKey(2, SyncTypeOrder), time.Minute)
	if !other.Allowed {
		t.Error("其他账号不应被限流")
	}

	// 同账号不同类型互不影响
	claim := limiter.Check(AccountSyncKey(1, SyncTypeClaim), time.Minute)
	if !claim.Allowed {
		t.Error("同账号的其他同步类型不应被限流")
	}
}

func TestSyncRateLimiter_Reset(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := GlobalSyncKey(SyncTypeProduct)

	limiter.Check(key, time.Hour)
	if limiter.Check(key, time.Hour).Allowed {
		t.Fatal("冷却期内应拒绝")
	}

	limiter.Reset(key)
	if !limiter.Check(key, time.Hour).Allowed {
		t.Error("重置后应放行")
	}
}

func TestGetInterval_FallsBackToDefault(t *testing.T) {
	if GetInterval(SyncTypeOrder) != 3*time.Minute {
		t.Errorf("order 间隔 = %v, want 3m", GetInterval(SyncTypeOrder))
	}
	if GetInterval(SyncType("unknown")) != 5*time.Minute {
		t.Errorf("未知类型应回退 5m, got %v", GetInterval(SyncType("unknown")))
	}
}
