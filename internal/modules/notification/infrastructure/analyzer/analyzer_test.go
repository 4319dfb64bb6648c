package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NotiFlow/internal/config"
)

func TestClassify_KeywordRules(t *testing.T) {
	cases := []struct {
		text     string
		category string
		lo, hi   float64
	}{
		{"Database ERROR on write", "critical", 0.7, 0.95},
		{"unhandled exception in pipeline", "critical", 0.7, 0.95},
		{"job failed after 3 retries", "critical", 0.7, 0.95},
		{"Warning: disk usage above 80%", "warning", 0.6, 0.9},
		{"please pay attention to this", "warning", 0.6, 0.9},
		{"be careful with the migration", "warning", 0.6, 0.9},
		{"deployment finished successfully", "info", 0.8, 0.99},
		{"", "info", 0.8, 0.99},
	}
	for _, c := range cases {
		category, confidence := classify(c.text)
		assert.Equal(t, c.category, category, "text=%q", c.text)
		assert.GreaterOrEqual(t, confidence, c.lo, "text=%q", c.text)
		assert.LessOrEqual(t, confidence, c.hi, "text=%q", c.text)
	}
}

func TestClassify_CriticalBeatsWarning(t *testing.T) {
	// 同时命中时 critical 优先
	category, _ := classify("warning: job failed")
	assert.Equal(t, "critical", category)
}

func TestSampleWords(t *testing.T) {
	assert.Empty(t, sampleWords("", 3))
	assert.Equal(t, []string{"one", "two"}, sampleWords("one two", 3))

	got := sampleWords("a b c d e f g", 3)
	assert.Len(t, got, 3)
	for _, w := range got {
		assert.Contains(t, []string{"a", "b", "c", "d", "e", "f", "g"}, w)
	}
}

func TestMockAnalyzer_ContextCancel(t *testing.T) {
	a := NewMockAnalyzer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Classify(ctx, "anything")
	assert.Error(t, err)
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSONObject(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, extractJSONObject("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSONObject(`分类结果如下：{"a":1}，请查收`))
	assert.Empty(t, extractJSONObject("no json here"))
	assert.Empty(t, extractJSONObject("}{"))
}

func TestNew_ProviderSelection(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, &config.AnalyzerConfig{})
	require.NoError(t, err)
	assert.NotNil(t, a)

	a, err = New(ctx, &config.AnalyzerConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.NotNil(t, a)

	_, err = New(ctx, &config.AnalyzerConfig{Provider: "openai"})
	assert.Error(t, err, "缺少 api_key 应拒绝")

	_, err = New(ctx, &config.AnalyzerConfig{Provider: "bedrock"})
	assert.Error(t, err)
}
