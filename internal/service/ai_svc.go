package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ==================== 配置 ====================

// AIConfig AI 服务配置
type AIConfig struct {
	ApiKey    string
	TextModel string
}

// ==================== 服务 ====================

// AIService 回复建议服务
// 面向巴西买家，生成葡语草稿，卖家确认后才会真正回传 ML
type AIService struct {
	Config *AIConfig
}

// NewAIService 创建 AI 服务
func NewAIService(cfg *AIConfig) *AIService {
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-3-flash"
	}
	return &AIService{Config: cfg}
}

// ==================== 咨询回复建议 ====================

// AnswerSuggestion 回复建议结果
type AnswerSuggestion struct {
	Answer     string `json:"answer"`
	Confidence string `json:"confidence"` // high / medium / low
}

// SuggestAnswer 根据商品信息和买家提问生成回复草稿
func (s *AIService) SuggestAnswer(ctx context.Context, productTitle, productDesc, questionText string) (*AnswerSuggestion, error) {
	if s.Config.ApiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 未配置")
	}

	prompt := fmt.Sprintf(`You are a customer service assistant for a Mercado Livre seller in Brazil.
A buyer asked a question about a listing. Draft a reply in Brazilian Portuguese.

Listing title: %s
Listing description: %s
Buyer question: %s

Requirements:
1. Reply in friendly, professional Brazilian Portuguese
2. Max 2000 characters (Mercado Livre limit)
3. Never invent stock, price or shipping promises not present in the listing info
4. If the listing info is not enough to answer, say the seller will confirm shortly

Output Format (JSON only, no markdown):
{
  "answer": "Olá! ...",
  "confidence": "high|medium|low"
}`, productTitle, productDesc, questionText)

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		s.Config.TextModel, s.Config.ApiKey)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %v", err)
	}
	if len(geminiResp.Candidates) == 0 {
		return nil, fmt.Errorf("无生成结果")
	}

	var jsonText string
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				jsonText = part.Text
				break
			}
		}
	}

	var result AnswerSuggestion
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return nil, fmt.Errorf("解析生成结果失败: %v, raw: %s", err, jsonText)
	}
	return &result, nil
}
