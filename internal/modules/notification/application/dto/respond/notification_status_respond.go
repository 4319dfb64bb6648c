package respond

type NotificationStatusRespond struct {
	NotificationId   string   `json:"id"`
	ProcessingStatus string   `json:"processing_status"`
	Category         string   `json:"category,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
}
