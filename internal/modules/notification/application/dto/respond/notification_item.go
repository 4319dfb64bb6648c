package respond

type NotificationItem struct {
	NotificationId   string   `json:"id"`
	UserId           string   `json:"user_id"`
	Title            string   `json:"title"`
	Text             string   `json:"text"`
	ReadAt           string   `json:"read_at,omitempty"`
	Category         string   `json:"category,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
	ProcessingStatus string   `json:"processing_status"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}
