package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"NotiFlow/internal/modules/notification/domain/entity"
	"NotiFlow/internal/modules/notification/domain/repository"
	"NotiFlow/pkg/repoerr"
)

type stubCache struct {
	store   map[string]*entity.Notification
	sets    int
	deletes int
}

func newStubCache() *stubCache {
	return &stubCache{store: make(map[string]*entity.Notification)}
}

func (s *stubCache) Get(_ context.Context, id string) *entity.Notification {
	return s.store[id]
}

func (s *stubCache) Set(_ context.Context, notif *entity.Notification, _ time.Duration) {
	s.sets++
	s.store[notif.NotificationId] = notif
}

func (s *stubCache) Delete(_ context.Context, id string) {
	s.deletes++
	delete(s.store, id)
}

func setupRepo(t *testing.T) (repository.NotificationRepository, *stubCache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Notification{}))

	cache := newStubCache()
	return NewNotificationRepository(db, cache, 100*time.Second), cache
}

func TestCreate_AssignsDefaults(t *testing.T) {
	repo, _ := setupRepo(t)

	created, err := repo.Create(context.Background(), &entity.Notification{
		UserId: "u1",
		Title:  "t",
		Text:   "body",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.NotificationId)
	assert.Equal(t, entity.StatusPending, created.ProcessingStatus)
	assert.Nil(t, created.ReadAt)
	assert.Nil(t, created.Category)
	assert.Nil(t, created.Confidence)
}

func TestCreate_DuplicateIDIsIntegrityError(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &entity.Notification{
		NotificationId: "fixed-id", UserId: "u1", Title: "t", Text: "x",
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &entity.Notification{
		NotificationId: "fixed-id", UserId: "u1", Title: "t", Text: "x",
	})
	require.Error(t, err)
	assert.True(t, repoerr.IsKind(err, repoerr.KindIntegrity))
}

func TestGetByID_AbsentIsNilNil(t *testing.T) {
	repo, _ := setupRepo(t)

	got, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetByID_PopulatesAndUsesCache(t *testing.T) {
	repo, cache := setupRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &entity.Notification{UserId: "u1", Title: "t", Text: "x"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.NotificationId)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, cache.sets, "未命中后应回填缓存")

	// 命中走缓存，不再增加回填次数
	got2, err := repo.GetByID(ctx, created.NotificationId)
	require.NoError(t, err)
	require.NotNil(t, got2)
	assert.Equal(t, 1, cache.sets)
}

func TestUpdate_AbsentIsNilNil(t *testing.T) {
	repo, cache := setupRepo(t)

	got, err := repo.Update(context.Background(), "missing", map[string]interface{}{
		"processing_status": entity.StatusProcessing,
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, cache.deletes, "无匹配行也要失效缓存")
}

func TestUpdate_AppliesFieldsAndInvalidatesCache(t *testing.T) {
	repo, cache := setupRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &entity.Notification{UserId: "u1", Title: "t", Text: "x"})
	require.NoError(t, err)

	// 预热缓存
	_, err = repo.GetByID(ctx, created.NotificationId)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.NotificationId, map[string]interface{}{
		"category":          entity.CategoryWarning,
		"confidence":        0.75,
		"processing_status": entity.StatusCompleted,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.Category)
	assert.Equal(t, entity.CategoryWarning, *updated.Category)
	require.NotNil(t, updated.Confidence)
	assert.InDelta(t, 0.75, *updated.Confidence, 1e-9)
	assert.Equal(t, entity.StatusCompleted, updated.ProcessingStatus)
	assert.GreaterOrEqual(t, cache.deletes, 1)

	// 失效后读回源，能看到新值
	got, err := repo.GetByID(ctx, created.NotificationId)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.StatusCompleted, got.ProcessingStatus)
}

func TestUpdate_NoChangeStillReturnsRow(t *testing.T) {
	// MySQL 默认把"0 行受影响"报告为 changed rows：值未变化的 UPDATE 也返回 0。
	// 存在的记录即使更新是空操作也必须返回实体而不是 (nil, nil)。
	// sqlite 的 changes() 统计 matched rows，无法复现 0 值，此测试固定的是回读契约
	repo, _ := setupRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &entity.Notification{UserId: "u1", Title: "t", Text: "x"})
	require.NoError(t, err)

	got, err := repo.Update(ctx, created.NotificationId, map[string]interface{}{
		"processing_status": entity.StatusPending,
	})
	require.NoError(t, err)
	require.NotNil(t, got, "空操作更新不等于记录不存在")
	assert.Equal(t, entity.StatusPending, got.ProcessingStatus)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first, err := repo.Update(ctx, created.NotificationId, map[string]interface{}{"read_at": ts})
	require.NoError(t, err)
	require.NotNil(t, first)

	// 同一秒内重复写入相同 read_at，仍应返回实体
	second, err := repo.Update(ctx, created.NotificationId, map[string]interface{}{"read_at": ts})
	require.NoError(t, err)
	require.NotNil(t, second)
	require.NotNil(t, second.ReadAt)
	assert.True(t, second.ReadAt.Equal(ts))
}

func TestMarkRead_IdempotentOverwrite(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &entity.Notification{UserId: "u1", Title: "t", Text: "x"})
	require.NoError(t, err)

	first, err := repo.MarkRead(ctx, created.NotificationId)
	require.NoError(t, err)
	require.NotNil(t, first)
	require.NotNil(t, first.ReadAt)

	time.Sleep(10 * time.Millisecond)

	second, err := repo.MarkRead(ctx, created.NotificationId)
	require.NoError(t, err)
	require.NotNil(t, second)
	require.NotNil(t, second.ReadAt)
	assert.False(t, second.ReadAt.Before(*first.ReadAt), "重复已读应覆盖为更新的时间")

	got, err := repo.MarkRead(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestList_FilterThenPaginate(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		_, err := repo.Create(ctx, &entity.Notification{
			UserId: "u1",
			Title:  fmt.Sprintf("t%02d", i),
			Text:   "x",
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &entity.Notification{UserId: "u2", Title: "other", Text: "x"})
	require.NoError(t, err)

	userID := "u1"
	got, err := repo.List(ctx, repository.ListFilter{
		UserId: &userID,
		Limit:  5,
		Offset: 2,
	})
	require.NoError(t, err)
	require.Len(t, got, 5)
	// 插入顺序稳定排序：偏移 2 取第 3~7 条
	for i, n := range got {
		assert.Equal(t, fmt.Sprintf("t%02d", i+3), n.Title)
	}
}

func TestList_StatusFilter(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, &entity.Notification{UserId: "u1", Title: "a", Text: "x"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &entity.Notification{UserId: "u1", Title: "b", Text: "x"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, a.NotificationId, map[string]interface{}{
		"processing_status": entity.StatusProcessing,
	})
	require.NoError(t, err)

	status := entity.StatusPending
	got, err := repo.List(ctx, repository.ListFilter{
		ProcessingStatus: &status,
		Limit:            20,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Title)
}
