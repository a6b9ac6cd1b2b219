package dto

import "time"

// ── 工时修改申请模块 DTO ──

// SubmitEditRequest 提交修改申请
// 单条日志编辑填 log_id；连续会话编辑填 log_ids（按时间顺序）。
// requested_time_in / requested_time_out 至少填一项。
type SubmitEditRequest struct {
	LogID            string     `json:"log_id"             binding:"omitempty,uuid"`
	LogIDs           []string   `json:"log_ids"            binding:"omitempty,dive,uuid"`
	RequestedTimeIn  *time.Time `json:"requested_time_in"`
	RequestedTimeOut *time.Time `json:"requested_time_out"`
	Reason           string     `json:"reason"             binding:"max=500"`
}

// EditRequestResponse 修改申请响应
type EditRequestResponse struct {
	ID                  string     `json:"id"`
	TimeLogID           string     `json:"time_log_id"`
	RequestedBy         string     `json:"requested_by"`
	RequestedTimeIn     *time.Time `json:"requested_time_in,omitempty"`
	RequestedTimeOut    *time.Time `json:"requested_time_out,omitempty"`
	OriginalTimeIn      time.Time  `json:"original_time_in"`
	OriginalTimeOut     *time.Time `json:"original_time_out,omitempty"`
	Status              string     `json:"status"`
	ReviewedBy          *string    `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	IsContinuousSession bool       `json:"is_continuous_session"`
	GroupID             *string    `json:"group_id,omitempty"`
	AffectedLogIDs      []string   `json:"affected_log_ids,omitempty"`
	Reason              string     `json:"reason,omitempty"`
	CreatedAt           string     `json:"created_at"`
}

// ListEditRequestsQuery 修改申请列表查询参数
type ListEditRequestsQuery struct {
	Status string `form:"status"  binding:"omitempty,oneof=pending approved rejected"`
	UserID string `form:"user_id" binding:"omitempty,uuid"` // 仅管理员可查他人
}
