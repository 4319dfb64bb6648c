package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"NotiFlow/internal/config"
	"NotiFlow/internal/modules/notification/domain/repository"
	"NotiFlow/pkg/zlog"
)

const classifyPrompt = `你是一个通知文本分类器。阅读用户给出的通知正文，输出严格的 JSON 对象，不要任何其他文字：
{"category": "info|warning|critical", "confidence": 0.0到1.0之间的小数, "keywords": ["最多3个关键词"]}
分类标准：critical 表示错误、故障、异常；warning 表示需要注意的风险；其余为 info。`

type llmAnalyzer struct {
	chatModel model.BaseChatModel
}

// NewLLMAnalyzer 基于 eino ChatModel 构建线上分类器
func NewLLMAnalyzer(ctx context.Context, conf *config.AnalyzerConfig) (repository.TextAnalyzer, error) {
	if conf.APIKey == "" {
		return nil, fmt.Errorf("analyzer: openai 渠道缺少 api_key")
	}
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:     conf.APIKey,
		Model:      conf.Model,
		BaseURL:    conf.BaseURL,
		ByAzure:    conf.ByAzure,
		APIVersion: conf.AzureAPIVersion,
		Timeout:    timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzer: 创建 ChatModel 失败: %w", err)
	}
	return &llmAnalyzer{chatModel: cm}, nil
}

func (a *llmAnalyzer) Classify(ctx context.Context, text string) (repository.AnalysisResult, error) {
	msgs := []*schema.Message{
		{Role: schema.System, Content: classifyPrompt},
		{Role: schema.User, Content: text},
	}
	resp, err := a.chatModel.Generate(ctx, msgs)
	if err != nil {
		return repository.AnalysisResult{}, fmt.Errorf("analyzer: 模型调用失败: %w", err)
	}

	payload := extractJSONObject(resp.Content)
	if payload == "" {
		zlog.Warn("analyzer 模型输出不含 JSON", zap.String("content", resp.Content))
		return repository.AnalysisResult{}, fmt.Errorf("analyzer: 模型输出不含 JSON 对象")
	}

	var out struct {
		Category   string   `json:"category"`
		Confidence float64  `json:"confidence"`
		Keywords   []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return repository.AnalysisResult{}, fmt.Errorf("analyzer: 解析模型输出失败: %w", err)
	}

	out.Category = strings.ToLower(strings.TrimSpace(out.Category))
	switch out.Category {
	case "info", "warning", "critical":
	default:
		return repository.AnalysisResult{}, fmt.Errorf("analyzer: 非法分类 %q", out.Category)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return repository.AnalysisResult{}, fmt.Errorf("analyzer: 置信度越界 %v", out.Confidence)
	}
	if len(out.Keywords) > 3 {
		out.Keywords = out.Keywords[:3]
	}

	return repository.AnalysisResult{
		Category:   out.Category,
		Confidence: out.Confidence,
		Keywords:   out.Keywords,
	}, nil
}

// extractJSONObject 截取首个 "{" 到最后一个 "}" 之间的内容，容忍模型附带的围栏或说明文字
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
