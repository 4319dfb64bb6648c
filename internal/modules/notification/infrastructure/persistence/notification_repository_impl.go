package persistence

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"time"

	"NotiFlow/internal/modules/notification/domain/entity"
	"NotiFlow/internal/modules/notification/domain/repository"
	"NotiFlow/pkg/repoerr"
	"NotiFlow/pkg/util"
	"NotiFlow/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type notificationRepositoryImpl struct {
	db       *gorm.DB
	cache    repository.NotificationCache
	cacheTTL time.Duration
}

// NewNotificationRepository 创建通知仓储实现。
// 缓存显式组合：读路径先查缓存，写路径无论成败都失效对应缓存项
func NewNotificationRepository(db *gorm.DB, cache repository.NotificationCache, cacheTTL time.Duration) repository.NotificationRepository {
	if cacheTTL <= 0 {
		cacheTTL = 100 * time.Second
	}
	return &notificationRepositoryImpl{db: db, cache: cache, cacheTTL: cacheTTL}
}

// classifyError 把底层错误归类为带分类的仓储错误。
// gorm.ErrRecordNotFound 不会走到这里，读路径把它当作"不存在"
func classifyError(msg string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated),
		errors.Is(err, gorm.ErrInvalidData):
		zlog.Error(msg, zap.String("kind", string(repoerr.KindIntegrity)), zap.Error(err))
		return repoerr.New(repoerr.KindIntegrity, msg, err)
	case isConnectionError(err):
		// 连接类错误提高日志级别，便于告警
		zlog.Error(msg, zap.String("kind", string(repoerr.KindConnection)), zap.Error(err))
		return repoerr.New(repoerr.KindConnection, msg, err)
	default:
		zlog.Error(msg, zap.String("kind", string(repoerr.KindUnexpected)), zap.Error(err))
		return repoerr.New(repoerr.KindUnexpected, msg, err)
	}
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (r *notificationRepositoryImpl) Create(ctx context.Context, notif *entity.Notification) (*entity.Notification, error) {
	if notif.NotificationId == "" {
		notif.NotificationId = util.GenerateUUID()
	}
	if notif.ProcessingStatus == "" {
		notif.ProcessingStatus = entity.StatusPending
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(notif).Error
	})
	if err != nil {
		return nil, classifyError("failed to create notification", err)
	}

	zlog.Info("notification created", zap.String("notification_id", notif.NotificationId))
	return notif, nil
}

func (r *notificationRepositoryImpl) GetByID(ctx context.Context, notificationID string) (*entity.Notification, error) {
	if cached := r.cache.Get(ctx, notificationID); cached != nil {
		return cached, nil
	}

	var notif entity.Notification
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		First(&notif).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classifyError("failed to get notification", err)
	}

	r.cache.Set(ctx, &notif, r.cacheTTL)
	return &notif, nil
}

func (r *notificationRepositoryImpl) Update(ctx context.Context, notificationID string, fields map[string]interface{}) (*entity.Notification, error) {
	// 无论更新结果如何都失效缓存，保证下一次读回源
	defer r.cache.Delete(ctx, notificationID)

	var notif entity.Notification
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Notification{}).
			Where("notification_id = ?", notificationID).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		// 不能用 RowsAffected 判断记录是否存在：MySQL 默认报告 changed rows
		// 而非 matched rows，值未变化的 UPDATE 也会返回 0（datetime 秒级精度下
		// 同一秒内重复标记已读就会触发）。存在性以事务内回读为准
		if err := tx.Where("notification_id = ?", notificationID).First(&notif).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, classifyError("failed to update notification", err)
	}
	if !found {
		return nil, nil
	}
	return &notif, nil
}

func (r *notificationRepositoryImpl) List(ctx context.Context, filter repository.ListFilter) ([]*entity.Notification, error) {
	query := r.db.WithContext(ctx).Model(&entity.Notification{})
	if filter.UserId != nil {
		query = query.Where("user_id = ?", *filter.UserId)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.ProcessingStatus != nil {
		query = query.Where("processing_status = ?", *filter.ProcessingStatus)
	}

	// 先过滤后分页，自增主键保证稳定的插入顺序
	var notifs []*entity.Notification
	err := query.
		Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&notifs).Error
	if err != nil {
		return nil, classifyError("failed to list notifications", err)
	}
	return notifs, nil
}

func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, notificationID string) (*entity.Notification, error) {
	// 幂等覆盖：重复标记只刷新时间戳，不报错
	return r.Update(ctx, notificationID, map[string]interface{}{
		"read_at": time.Now(),
	})
}
