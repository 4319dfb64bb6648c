package handler

import (
	notificationRequest "NotiFlow/internal/modules/notification/application/dto/request"
	"NotiFlow/internal/modules/notification/application/service"
	"NotiFlow/pkg/back"
	"NotiFlow/pkg/xerr"
	"NotiFlow/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req notificationRequest.CreateNotificationRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.svc.CreateNotification(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var req notificationRequest.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.svc.ListNotifications(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *NotificationHandler) GetNotification(c *gin.Context) {
	data, err := h.svc.GetNotification(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	data, err := h.svc.MarkNotificationRead(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func (h *NotificationHandler) GetNotificationStatus(c *gin.Context) {
	data, err := h.svc.GetNotificationStatus(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}
