package repository

import "context"

// AnalysisResult 文本分类结果。Keywords 仅供日志参考，不落库
type AnalysisResult struct {
	Category   string
	Confidence float64
	Keywords   []string
}

// TextAnalyzer 可插拔的文本分类能力。
// 生产实现通过网络调用外部服务；任何出错或不合规的响应
// 由调用方统一处理为 failed 终态
type TextAnalyzer interface {
	Classify(ctx context.Context, text string) (AnalysisResult, error)
}
