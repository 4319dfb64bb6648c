package request

type CreateNotificationRequest struct {
	UserId string `json:"user_id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}
