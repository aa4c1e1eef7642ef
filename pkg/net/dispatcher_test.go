package net

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type staticTokenProvider struct {
	reported int32
}

func (p *staticTokenProvider) GetAccessToken(_ context.Context, _ int64) (string, error) {
	return "token-abc", nil
}

func (p *staticTokenProvider) ReportUnauthorized(_ context.Context, _ int64) {
	atomic.AddInt32(&p.reported, 1)
}

// 401 触发重试后，POST body 必须重绕，否则第二次发出去的是空 body
func TestDispatcher_RetryRewindsRequestBody(t *testing.T) {
	payload := `{"note":"enviar amanhã"}`

	var bodies []string
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := &staticTokenProvider{}
	d := NewDispatcher(provider)

	req, err := BuildMeliPostRequest(context.Background(), server.URL+"/orders/1/note", bytes.NewReader([]byte(payload)))
	if err != nil {
		t.Fatalf("构建请求失败: %v", err)
	}

	resp, err := d.Send(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("Send 失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(bodies) != 2 {
		t.Fatalf("请求次数 = %d, want 2 (401 后重试一次)", len(bodies))
	}
	if bodies[1] != payload {
		t.Errorf("重试 body = %q, want %q", bodies[1], payload)
	}
	if atomic.LoadInt32(&provider.reported) != 1 {
		t.Errorf("ReportUnauthorized 调用 %d 次, want 1", provider.reported)
	}
}

// 429 退避重试同样要求 body 可重放
func TestDispatcher_RateLimitRetryRewindsBody(t *testing.T) {
	payload := `{"status":"paused"}`

	var lastBody string
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastBody = string(body)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(&staticTokenProvider{})

	req, err := BuildMeliPutRequest(context.Background(), server.URL+"/items/MLB1", bytes.NewReader([]byte(payload)))
	if err != nil {
		t.Fatalf("构建请求失败: %v", err)
	}

	resp, err := d.Send(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("Send 失败: %v", err)
	}
	defer resp.Body.Close()

	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("请求次数 = %d, want 2", calls)
	}
	if lastBody != payload {
		t.Errorf("重试 body = %q, want %q", lastBody, payload)
	}
}
