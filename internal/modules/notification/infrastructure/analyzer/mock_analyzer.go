package analyzer

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"NotiFlow/internal/modules/notification/domain/repository"
)

var (
	criticalWords = []string{"error", "exception", "failed"}
	warningWords  = []string{"warning", "attention", "careful"}
)

type mockAnalyzer struct{}

// NewMockAnalyzer 创建内置模拟分类器：关键词规则 + 随机置信度与延迟。
// 仅用于本地与演示环境；测试应注入确定性的假实现而不是依赖这里的随机行为
func NewMockAnalyzer() repository.TextAnalyzer {
	return &mockAnalyzer{}
}

func (a *mockAnalyzer) Classify(ctx context.Context, text string) (repository.AnalysisResult, error) {
	// 模拟外部服务延迟 1~3 秒，可被上下文取消
	delay := time.Duration(1000+rand.Intn(2000)) * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return repository.AnalysisResult{}, ctx.Err()
	}

	category, confidence := classify(text)
	return repository.AnalysisResult{
		Category:   category,
		Confidence: confidence,
		Keywords:   sampleWords(text, 3),
	}, nil
}

func classify(text string) (string, float64) {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, criticalWords):
		return "critical", 0.7 + rand.Float64()*0.25
	case containsAny(lower, warningWords):
		return "warning", 0.6 + rand.Float64()*0.3
	default:
		return "info", 0.8 + rand.Float64()*0.19
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func sampleWords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) <= n {
		return words
	}
	idx := rand.Perm(len(words))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, words[i])
	}
	return out
}
