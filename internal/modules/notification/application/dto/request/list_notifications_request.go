package request

type ListNotificationsRequest struct {
	UserId   string `form:"user_id"`
	Category string `form:"category"`
	Status   string `form:"status"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}
