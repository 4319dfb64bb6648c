package service

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	notificationRequest "NotiFlow/internal/modules/notification/application/dto/request"
	notificationRespond "NotiFlow/internal/modules/notification/application/dto/respond"
	"NotiFlow/internal/modules/notification/domain/entity"
	"NotiFlow/internal/modules/notification/domain/repository"
	"NotiFlow/pkg/xerr"
	"NotiFlow/pkg/zlog"
)

const (
	maxTitleLen  = 256
	defaultLimit = 20
	maxLimit     = 100
)

type NotificationService interface {
	CreateNotification(ctx context.Context, req notificationRequest.CreateNotificationRequest) (*notificationRespond.NotificationItem, error)
	ListNotifications(ctx context.Context, req notificationRequest.ListNotificationsRequest) ([]notificationRespond.NotificationItem, error)
	GetNotification(ctx context.Context, notificationID string) (*notificationRespond.NotificationItem, error)
	MarkNotificationRead(ctx context.Context, notificationID string) (*notificationRespond.NotificationItem, error)
	GetNotificationStatus(ctx context.Context, notificationID string) (*notificationRespond.NotificationStatusRespond, error)
}

type notificationServiceImpl struct {
	repo       repository.NotificationRepository
	dispatcher repository.TaskDispatcher
}

func NewNotificationService(repo repository.NotificationRepository, dispatcher repository.TaskDispatcher) NotificationService {
	return &notificationServiceImpl{
		repo:       repo,
		dispatcher: dispatcher,
	}
}

func (s *notificationServiceImpl) CreateNotification(ctx context.Context, req notificationRequest.CreateNotificationRequest) (*notificationRespond.NotificationItem, error) {
	if req.UserId == "" || req.Title == "" || req.Text == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	// varchar(256) 按字符计数，多字节标题不能按字节长度拒绝
	if utf8.RuneCountInString(req.Title) > maxTitleLen {
		return nil, xerr.New(xerr.BadRequest, "标题过长")
	}

	notif := &entity.Notification{
		UserId: req.UserId,
		Title:  req.Title,
		Text:   req.Text,
	}
	created, err := s.repo.Create(ctx, notif)
	if err != nil {
		zlog.Error("创建通知失败", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	// 入队失败不回滚创建：记录已经落库，后续可以人工或定时补投
	if err := s.dispatcher.Enqueue(ctx, created.NotificationId, created.Text); err != nil {
		zlog.Error("通知分析任务入队失败",
			zap.String("notification_id", created.NotificationId),
			zap.Error(err))
	}

	return toNotificationItem(created), nil
}

func (s *notificationServiceImpl) ListNotifications(ctx context.Context, req notificationRequest.ListNotificationsRequest) ([]notificationRespond.NotificationItem, error) {
	if req.Category != "" && !entity.ValidCategory(req.Category) {
		return nil, xerr.New(xerr.BadRequest, "非法的 category")
	}
	if req.Status != "" && !validStatus(req.Status) {
		return nil, xerr.New(xerr.BadRequest, "非法的 status")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	filter := repository.ListFilter{
		Limit:  limit,
		Offset: offset,
	}
	if req.UserId != "" {
		filter.UserId = &req.UserId
	}
	if req.Category != "" {
		filter.Category = &req.Category
	}
	if req.Status != "" {
		filter.ProcessingStatus = &req.Status
	}

	notifs, err := s.repo.List(ctx, filter)
	if err != nil {
		zlog.Error("查询通知列表失败", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	out := make([]notificationRespond.NotificationItem, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, *toNotificationItem(n))
	}
	return out, nil
}

func (s *notificationServiceImpl) GetNotification(ctx context.Context, notificationID string) (*notificationRespond.NotificationItem, error) {
	if notificationID == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	notif, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		zlog.Error("查询通知失败", zap.String("notification_id", notificationID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if notif == nil {
		return nil, xerr.ErrNotFound
	}
	return toNotificationItem(notif), nil
}

func (s *notificationServiceImpl) MarkNotificationRead(ctx context.Context, notificationID string) (*notificationRespond.NotificationItem, error) {
	if notificationID == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	notif, err := s.repo.MarkRead(ctx, notificationID)
	if err != nil {
		zlog.Error("标记已读失败", zap.String("notification_id", notificationID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if notif == nil {
		return nil, xerr.ErrNotFound
	}
	return toNotificationItem(notif), nil
}

func (s *notificationServiceImpl) GetNotificationStatus(ctx context.Context, notificationID string) (*notificationRespond.NotificationStatusRespond, error) {
	if notificationID == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	notif, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		zlog.Error("查询通知状态失败", zap.String("notification_id", notificationID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if notif == nil {
		return nil, xerr.ErrNotFound
	}

	out := &notificationRespond.NotificationStatusRespond{
		NotificationId:   notif.NotificationId,
		ProcessingStatus: notif.ProcessingStatus,
		Confidence:       notif.Confidence,
	}
	if notif.Category != nil {
		out.Category = *notif.Category
	}
	return out, nil
}

func validStatus(s string) bool {
	switch s {
	case entity.StatusPending, entity.StatusProcessing, entity.StatusCompleted, entity.StatusFailed:
		return true
	}
	return false
}

func toNotificationItem(n *entity.Notification) *notificationRespond.NotificationItem {
	item := &notificationRespond.NotificationItem{
		NotificationId:   n.NotificationId,
		UserId:           n.UserId,
		Title:            n.Title,
		Text:             n.Text,
		Confidence:       n.Confidence,
		ProcessingStatus: n.ProcessingStatus,
		CreatedAt:        n.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        n.UpdatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		item.ReadAt = n.ReadAt.Format(time.RFC3339)
	}
	if n.Category != nil {
		item.Category = *n.Category
	}
	return item
}
