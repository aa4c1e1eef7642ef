package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"
)

// 服务层共用的小工具，ML 调用三件套：GET 取数 / 写操作 / 金额换算

// fetchMeliJSON GET 请求 + 信封解包 + 反序列化
func fetchMeliJSON(ctx context.Context, dispatcher net.Dispatcher, accountID int64, apiURL string, out interface{}) error {
	req, err := net.BuildMeliGetRequest(ctx, apiURL)
	if err != nil {
		return err
	}

	resp, err := dispatcher.Send(ctx, accountID, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ML API status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return meli.UnwrapInto(raw, out)
}

// sendMeliJSON 写操作 (POST/PUT)，body 为可序列化对象，out 可传 nil
func sendMeliJSON(ctx context.Context, dispatcher net.Dispatcher, accountID int64, method, apiURL string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := net.BuildMeliRequest(ctx, method, apiURL, reader)
	if err != nil {
		return err
	}

	resp, err := dispatcher.Send(ctx, accountID, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ML API status %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return meli.UnwrapInto(raw, out)
}

// toCents 浮点金额转分，四舍五入
func toCents(v float64) int64 {
	if v < 0 {
		return -int64(-v*100 + 0.5)
	}
	return int64(v*100 + 0.5)
}
