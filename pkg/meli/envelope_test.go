package meli

import (
	"encoding/json"
	"testing"
)

type sellerPayload struct {
	Nickname string `json:"nickname"`
}

func TestUnwrap_BareResponse(t *testing.T) {
	raw := []byte(`{"nickname":"LOJA_TESTE","site_id":"MLB"}`)

	var p sellerPayload
	if err := UnwrapInto(raw, &p); err != nil {
		t.Fatalf("unwrap err: %v", err)
	}
	if p.Nickname != "LOJA_TESTE" {
		t.Errorf("nickname = %s, want LOJA_TESTE", p.Nickname)
	}
}

func TestUnwrap_SingleEnvelope(t *testing.T) {
	raw := []byte(`{"success":true,"data":{"nickname":"LOJA_TESTE"}}`)

	var p sellerPayload
	if err := UnwrapInto(raw, &p); err != nil {
		t.Fatalf("unwrap err: %v", err)
	}
	if p.Nickname != "LOJA_TESTE" {
		t.Errorf("nickname = %s, want LOJA_TESTE", p.Nickname)
	}
}

func TestUnwrap_DoubleEnvelope(t *testing.T) {
	// 旧网关的双层包裹
	raw := []byte(`{"data":{"data":{"nickname":"LOJA_TESTE"}}}`)

	var p sellerPayload
	if err := UnwrapInto(raw, &p); err != nil {
		t.Fatalf("unwrap err: %v", err)
	}
	if p.Nickname != "LOJA_TESTE" {
		t.Errorf("nickname = %s, want LOJA_TESTE", p.Nickname)
	}
}

func TestUnwrap_ExplicitFailure(t *testing.T) {
	raw := []byte(`{"success":false,"message":"invalid token"}`)

	if _, err := Unwrap(raw); err == nil {
		t.Error("success=false 应当返回错误")
	}
}

func TestUnwrap_NullData(t *testing.T) {
	// data 为 null 时回退到裸响应形态
	raw := []byte(`{"data":null,"nickname":"FALLBACK"}`)

	var p sellerPayload
	if err := UnwrapInto(raw, &p); err != nil {
		t.Fatalf("unwrap err: %v", err)
	}
	if p.Nickname != "FALLBACK" {
		t.Errorf("nickname = %s, want FALLBACK", p.Nickname)
	}
}

func TestUnwrap_ListPayload(t *testing.T) {
	raw := []byte(`{"data":{"results":[{"id":1},{"id":2}],"paging":{"total":2}}}`)

	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := UnwrapInto(raw, &resp); err != nil {
		t.Fatalf("unwrap err: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2", len(resp.Results))
	}
}

func TestUnwrap_InvalidJSON(t *testing.T) {
	if _, err := Unwrap([]byte("<html>bad gateway</html>")); err == nil {
		t.Error("非 JSON 响应应当返回错误")
	}
}
