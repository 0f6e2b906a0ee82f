package dto

import "time"

// ── 预约报警模块 DTO ──

// CreateScheduledAlertRequest 创建预约报警请求
type CreateScheduledAlertRequest struct {
	Location     string    `json:"location"      binding:"required,min=2"`
	Companions   string    `json:"companions"    binding:"required,min=2"`
	Notes        string    `json:"notes"         binding:"omitempty,max=2000"`
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
}

// ScheduledAlertListRequest 预约报警列表查询参数
type ScheduledAlertListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending triggered cancelled"`
}

// ScheduledAlertResponse 预约报警信息响应
type ScheduledAlertResponse struct {
	ID           string `json:"id"`
	Location     string `json:"location"`
	Companions   string `json:"companions"`
	Notes        string `json:"notes,omitempty"`
	ScheduledFor string `json:"scheduled_for"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

// ImportScheduledAlertsResponse 日历导入结果响应
type ImportScheduledAlertsResponse struct {
	Created int                      `json:"created"`
	Skipped int                      `json:"skipped"`
	Alerts  []ScheduledAlertResponse `json:"alerts"`
}
