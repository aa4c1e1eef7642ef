package net

import (
	"context"
	"io"
	"net/http"
)

// BuildMeliRequest 通用 ML 请求构建器
// 适用方：OrderService, ProductService, QuestionService 等所有业务服务
// 职责：统一封装标准头 (Accept, Content-Type)
// 注意：Authorization 头由 Dispatcher 按 accountID 注入，这里不处理
func BuildMeliRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// BuildMeliGetRequest 构建 ML GET 请求
func BuildMeliGetRequest(ctx context.Context, url string) (*http.Request, error) {
	return BuildMeliRequest(ctx, http.MethodGet, url, nil)
}

// BuildMeliPostRequest 构建 ML POST 请求
func BuildMeliPostRequest(ctx context.Context, url string, body io.Reader) (*http.Request, error) {
	return BuildMeliRequest(ctx, http.MethodPost, url, body)
}

// BuildMeliPutRequest 构建 ML PUT 请求
func BuildMeliPutRequest(ctx context.Context, url string, body io.Reader) (*http.Request, error) {
	return BuildMeliRequest(ctx, http.MethodPut, url, body)
}
