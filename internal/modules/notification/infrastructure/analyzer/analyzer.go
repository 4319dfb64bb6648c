package analyzer

import (
	"context"
	"fmt"

	"NotiFlow/internal/config"
	"NotiFlow/internal/modules/notification/domain/repository"
)

// New 按配置选择分类器实现，provider 为空默认 mock
func New(ctx context.Context, conf *config.AnalyzerConfig) (repository.TextAnalyzer, error) {
	switch conf.Provider {
	case "", "mock":
		return NewMockAnalyzer(), nil
	case "openai":
		return NewLLMAnalyzer(ctx, conf)
	default:
		return nil, fmt.Errorf("analyzer: 未知的 provider %q", conf.Provider)
	}
}
