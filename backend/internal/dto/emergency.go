package dto

// ── 紧急广播模块 DTO ──

// TriggerSOSRequest 手动 SOS 请求
// 坐标来自客户端实时定位；AudioURL 为已上传录音的对象存储地址（可选）
type TriggerSOSRequest struct {
	Latitude  float64 `json:"latitude"  binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	AudioURL  string  `json:"audio_url" binding:"omitempty,url"`
}

// DeliveryOutcomeResponse 单个联系人的投递结果
type DeliveryOutcomeResponse struct {
	Contact string `json:"contact"`
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`   // NO_EMAIL | TESTING_MODE | SEND_FAILED
	Message string `json:"message,omitempty"` // 人类可读的失败说明
}

// BroadcastResultResponse 一次广播的汇总结果
type BroadcastResultResponse struct {
	Successful  int                       `json:"successful"`
	Failed      int                       `json:"failed"`
	TestingMode int                       `json:"testing_mode"`
	Warning     string                    `json:"warning,omitempty"`
	Results     []DeliveryOutcomeResponse `json:"results"`
}

// EmergencyAlertResponse 广播历史记录响应
type EmergencyAlertResponse struct {
	ID               string   `json:"id"`
	UserName         string   `json:"user_name"`
	LocationLat      *float64 `json:"location_lat,omitempty"`
	LocationLng      *float64 `json:"location_lng,omitempty"`
	GoogleMapsLink   string   `json:"google_maps_link"`
	AudioURL         string   `json:"audio_url,omitempty"`
	Status           string   `json:"status"`
	ScheduledAlertID string   `json:"scheduled_alert_id,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

// RecordingResponse 录音记录响应
type RecordingResponse struct {
	ID        string `json:"id"`
	AudioURL  string `json:"audio_url"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// SweepResultResponse 一轮扫描的汇总结果
type SweepResultResponse struct {
	Processed       int                 `json:"processed"`
	Triggered       int                 `json:"triggered"`
	AlreadyResolved int                 `json:"already_resolved"`
	Errored         int                 `json:"errored"`
	Records         []SweepRecordResult `json:"records,omitempty"`
}

// SweepRecordResult 单条到期记录的处理结果
type SweepRecordResult struct {
	ScheduledAlertID string `json:"scheduled_alert_id"`
	Status           string `json:"status"` // triggered | already_resolved | errored
	Error            string `json:"error,omitempty"`
}
