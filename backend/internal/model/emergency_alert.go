package model

import "time"

// 广播历史状态
// "sent" 表示至少存在一个可用通道并发起了投递尝试，"failed" 表示没有任何联系人可投递
const (
	EmergencyAlertSent   = "sent"
	EmergencyAlertFailed = "failed"
)

// EmergencyAlert 广播历史表 — 对应 emergency_alerts
// 每次广播尝试写入一行，创建后不可变（追加写历史）。
// 同时充当用户"最近位置快照"的来源：定时触发的广播没有实时定位，
// 复用该用户最近一条历史记录的坐标与地图链接
type EmergencyAlert struct {
	EmergencyAlertID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"emergency_alert_id"`
	UserID            string    `gorm:"type:uuid;not null;index:idx_user_created"      json:"user_id"`
	UserName          string    `gorm:"type:varchar(100);not null"                     json:"user_name"`
	LocationLat       *float64  `json:"location_lat,omitempty"`
	LocationLng       *float64  `json:"location_lng,omitempty"`
	GoogleMapsLink    string    `gorm:"type:text;not null"                             json:"google_maps_link"`
	AudioRecordingURL string    `gorm:"type:text"                                      json:"audio_recording_url,omitempty"`
	Status            string    `gorm:"type:varchar(20);not null"                      json:"status"`
	ScheduledAlertID  *string   `gorm:"type:uuid"                                      json:"scheduled_alert_id,omitempty"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_user_created,sort:desc" json:"created_at"`
}

// TableName 指定表名
func (EmergencyAlert) TableName() string { return "emergency_alerts" }

// EmergencyRecording 录音索引表 — 对应 emergency_recordings
// 录音本体存于对象存储，此处仅保存 URL 供录音列表页展示
type EmergencyRecording struct {
	RecordingID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"recording_id"`
	UserID      string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	AudioURL    string    `gorm:"type:text;not null"                             json:"audio_url"`
	Status      string    `gorm:"type:varchar(20);not null;default:'sent'"       json:"status"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (EmergencyRecording) TableName() string { return "emergency_recordings" }
