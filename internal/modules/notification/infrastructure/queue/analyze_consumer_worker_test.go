package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NotiFlow/internal/modules/notification/domain/entity"
	"NotiFlow/internal/modules/notification/domain/repository"
	"NotiFlow/internal/modules/notification/infrastructure/mq"
)

type workerFakeRepo struct {
	notif   *entity.Notification
	getErr  error
	updErr  error
	updates []map[string]interface{}
}

func (f *workerFakeRepo) Create(_ context.Context, n *entity.Notification) (*entity.Notification, error) {
	return n, nil
}

func (f *workerFakeRepo) GetByID(_ context.Context, _ string) (*entity.Notification, error) {
	return f.notif, f.getErr
}

func (f *workerFakeRepo) Update(_ context.Context, _ string, fields map[string]interface{}) (*entity.Notification, error) {
	if f.updErr != nil {
		return nil, f.updErr
	}
	f.updates = append(f.updates, fields)
	if v, ok := fields["processing_status"].(string); ok && f.notif != nil {
		f.notif.ProcessingStatus = v
	}
	return f.notif, nil
}

func (f *workerFakeRepo) List(_ context.Context, _ repository.ListFilter) ([]*entity.Notification, error) {
	return nil, nil
}

func (f *workerFakeRepo) MarkRead(_ context.Context, _ string) (*entity.Notification, error) {
	return f.notif, nil
}

type fakeAnalyzer struct {
	result repository.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Classify(_ context.Context, _ string) (repository.AnalysisResult, error) {
	return f.result, f.err
}

func envelopeMsg(t *testing.T, id, text string) mq.Message {
	t.Helper()
	b, err := json.Marshal(AnalyzeEnvelope{NotificationId: id, Text: text})
	require.NoError(t, err)
	return mq.Message{Topic: "notification.analyze", Value: b}
}

func pendingNotif(id string) *entity.Notification {
	return &entity.Notification{
		NotificationId:   id,
		UserId:           "u1",
		Title:            "t",
		Text:             "system error detected",
		ProcessingStatus: entity.StatusPending,
	}
}

func TestHandle_CompletesAnalysis(t *testing.T) {
	repo := &workerFakeRepo{notif: pendingNotif("n1")}
	an := &fakeAnalyzer{result: repository.AnalysisResult{
		Category:   entity.CategoryCritical,
		Confidence: 0.88,
		Keywords:   []string{"error"},
	}}
	w := NewAnalyzeConsumerWorker(nil, repo, an)

	err := w.Handle(context.Background(), envelopeMsg(t, "n1", "system error detected"))
	require.NoError(t, err)

	require.Len(t, repo.updates, 2)
	assert.Equal(t, entity.StatusProcessing, repo.updates[0]["processing_status"])

	final := repo.updates[1]
	assert.Equal(t, entity.StatusCompleted, final["processing_status"])
	assert.Equal(t, entity.CategoryCritical, final["category"])
	assert.InDelta(t, 0.88, final["confidence"].(float64), 1e-9)
}

func TestHandle_AnalyzerFailureMarksFailed(t *testing.T) {
	repo := &workerFakeRepo{notif: pendingNotif("n1")}
	an := &fakeAnalyzer{err: errors.New("model unavailable")}
	w := NewAnalyzeConsumerWorker(nil, repo, an)

	// 业务性失败写入终态后提交偏移量，不触发重投
	err := w.Handle(context.Background(), envelopeMsg(t, "n1", "text"))
	require.NoError(t, err)

	require.Len(t, repo.updates, 2)
	assert.Equal(t, entity.StatusProcessing, repo.updates[0]["processing_status"])
	assert.Equal(t, entity.StatusFailed, repo.updates[1]["processing_status"])
	assert.NotContains(t, repo.updates[1], "category")
}

func TestHandle_SkipsNonPending(t *testing.T) {
	for _, status := range []string{entity.StatusProcessing, entity.StatusCompleted, entity.StatusFailed} {
		n := pendingNotif("n1")
		n.ProcessingStatus = status
		repo := &workerFakeRepo{notif: n}
		w := NewAnalyzeConsumerWorker(nil, repo, &fakeAnalyzer{})

		err := w.Handle(context.Background(), envelopeMsg(t, "n1", "text"))
		require.NoError(t, err)
		assert.Empty(t, repo.updates, "状态 %s 的任务重复投递不应再写库", status)
		assert.Equal(t, status, n.ProcessingStatus, "实体状态不应被改动")
	}
}

func TestHandle_SkipsMissingNotification(t *testing.T) {
	repo := &workerFakeRepo{}
	w := NewAnalyzeConsumerWorker(nil, repo, &fakeAnalyzer{})

	err := w.Handle(context.Background(), envelopeMsg(t, "n-missing", "text"))
	require.NoError(t, err)
	assert.Empty(t, repo.updates)
}

func TestHandle_MalformedPayloadDropped(t *testing.T) {
	repo := &workerFakeRepo{notif: pendingNotif("n1")}
	w := NewAnalyzeConsumerWorker(nil, repo, &fakeAnalyzer{})

	err := w.Handle(context.Background(), mq.Message{Value: []byte("{not json")})
	require.NoError(t, err)
	assert.Empty(t, repo.updates)
}

func TestHandle_RepoErrorTriggersRedelivery(t *testing.T) {
	repo := &workerFakeRepo{getErr: errors.New("connection refused")}
	w := NewAnalyzeConsumerWorker(nil, repo, &fakeAnalyzer{})

	err := w.Handle(context.Background(), envelopeMsg(t, "n1", "text"))
	assert.Error(t, err)
}
