package dto

import "time"

// ── 打卡模块 DTO ──

// ClockInRequest 上班打卡请求
type ClockInRequest struct {
	LogType string `json:"log_type" binding:"omitempty,oneof=regular overtime extended_overtime"`
}

// ClockOutRequest 下班打卡请求
type ClockOutRequest struct {
	LogType string `json:"log_type" binding:"omitempty,oneof=regular overtime extended_overtime"`
}

// ListTimeLogsQuery 日志列表查询参数
type ListTimeLogsQuery struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"` // 仅管理员可查他人
	From   string `form:"from"    binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to"      binding:"omitempty,datetime=2006-01-02"`
}

// TimeLogResponse 打卡记录响应
type TimeLogResponse struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	TimeIn         time.Time        `json:"time_in"`
	TimeOut        *time.Time       `json:"time_out,omitempty"`
	LogType        string           `json:"log_type"`
	Status         string           `json:"status"`
	OvertimeStatus *string          `json:"overtime_status,omitempty"`
	PendingEdit    *PendingEditInfo `json:"pending_edit,omitempty"` // 仅 include_edit_requests=true 时填充
}

// PendingEditInfo 日志上挂起的编辑申请摘要（仅用于展示，不影响任何统计数值）
type PendingEditInfo struct {
	EditRequestID       string     `json:"edit_request_id"`
	RequestedTimeIn     *time.Time `json:"requested_time_in,omitempty"`
	RequestedTimeOut    *time.Time `json:"requested_time_out,omitempty"`
	IsContinuousSession bool       `json:"is_continuous_session"`
	GroupID             *string    `json:"group_id,omitempty"`
}
