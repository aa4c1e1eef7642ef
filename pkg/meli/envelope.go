package meli

import (
	"encoding/json"
	"fmt"
)

// 历史上网关返回过三种信封格式：
//   1. {"data": {"data": {...}}}   旧网关双层包裹
//   2. {"data": {...}}             单层包裹（可能带 success/code 字段）
//   3. {...}                       ML 原始裸响应
// Unwrap 按上面的优先级顺序解包，取第一个命中的形态。
// 调用方拿到内层 JSON 后再按具体 DTO 反序列化。

type envelope struct {
	Success *bool           `json:"success"`
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Unwrap 规范化响应信封，返回内层数据
func Unwrap(raw []byte) (json.RawMessage, error) {
	var outer envelope
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("响应不是合法 JSON: %w", err)
	}

	// 信封明确报错时直接失败，不再解包
	if outer.Success != nil && !*outer.Success {
		msg := outer.Message
		if msg == "" {
			msg = outer.Error
		}
		return nil, fmt.Errorf("网关返回失败: %s", msg)
	}

	if len(outer.Data) > 0 && !isJSONNull(outer.Data) {
		// 形态 1: data.data
		var inner envelope
		if err := json.Unmarshal(outer.Data, &inner); err == nil &&
			len(inner.Data) > 0 && !isJSONNull(inner.Data) {
			return inner.Data, nil
		}
		// 形态 2: data
		return outer.Data, nil
	}

	// 形态 3: 裸响应
	return raw, nil
}

// UnwrapInto 解包并直接反序列化到目标结构
func UnwrapInto(raw []byte, out interface{}) error {
	inner, err := Unwrap(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(inner, out)
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
