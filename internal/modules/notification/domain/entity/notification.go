package entity

import "time"

const (
	// 通知分类，由异步分析产出
	CategoryInfo     = "info"
	CategoryWarning  = "warning"
	CategoryCritical = "critical"

	// 处理状态机：pending → processing → {completed, failed}
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Notification 用户通知实体。category/confidence 在分析完成前为空；
// processing_status 单调推进，completed/failed 为终态
type Notification struct {
	Id               int64      `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	NotificationId   string     `gorm:"column:notification_id;type:char(36);uniqueIndex;not null;comment:通知uuid"`
	UserId           string     `gorm:"column:user_id;type:char(36);index;not null;index:idx_user_status_created,priority:1;comment:用户uuid"`
	Title            string     `gorm:"column:title;type:varchar(256);not null;comment:标题"`
	Text             string     `gorm:"column:text;type:longtext;not null;comment:正文，分析的唯一输入"`
	ReadAt           *time.Time `gorm:"column:read_at;type:datetime;comment:首次已读时间"`
	Category         *string    `gorm:"column:category;type:varchar(16);index;comment:分类结果"`
	Confidence       *float64   `gorm:"column:confidence;comment:置信度 [0,1]"`
	ProcessingStatus string     `gorm:"column:processing_status;type:varchar(16);index;not null;default:pending;index:idx_user_status_created,priority:2;comment:处理状态"`
	CreatedAt        time.Time  `gorm:"column:created_at;type:datetime;not null;index:idx_user_status_created,priority:3;comment:创建时间"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;type:datetime;not null;comment:更新时间"`
}

func (Notification) TableName() string {
	return "notification"
}

// CanTransition 判断状态迁移是否合法。
// 仅允许 pending→processing 与 processing→{completed,failed}
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// ValidCategory 判断分类值是否合法
func ValidCategory(category string) bool {
	switch category {
	case CategoryInfo, CategoryWarning, CategoryCritical:
		return true
	}
	return false
}
