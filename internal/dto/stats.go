package dto

import "time"

// ── 工时统计模块 DTO ──

// StatsOptions 统计计算选项
// IncludeEditRequests 只决定是否在日志上附带挂起编辑信息，不改变任何合计数值
type StatsOptions struct {
	IncludeEditRequests bool
	RequiredHours       float64
	AsOf                time.Time // 进行中会话的计时基准，零值表示取当前时间
}

// TimeStatistics 工时统计结果
type TimeStatistics struct {
	InternshipProgress    float64        `json:"internship_progress"` // 正班 + 已批准加班
	RegularHoursTotal     float64        `json:"regular_hours_total"`
	OvertimeHoursTotal    float64        `json:"overtime_hours_total"` // 显示用，含未批准加班
	ApprovedOvertimeHours float64        `json:"approved_overtime_hours"`
	OverflowHoursTotal    float64        `json:"overflow_hours_total"` // 超出正班上限、待迁移的部分
	RequiredHours         float64        `json:"required_hours"`
	ProgressPercent       float64        `json:"progress_percent"`
	Days                  []DayBreakdown `json:"days"`
}

// DayBreakdown 单日工时分解
type DayBreakdown struct {
	Date          string             `json:"date"` // YYYY-MM-DD
	RegularHours  float64            `json:"regular_hours"`
	OvertimeHours float64            `json:"overtime_hours"`
	OverflowHours float64            `json:"overflow_hours"`
	Sessions      []SessionBreakdown `json:"sessions"`
}

// SessionBreakdown 单个连续会话的工时分解
type SessionBreakdown struct {
	TimeIn         time.Time         `json:"time_in"`
	TimeOut        *time.Time        `json:"time_out,omitempty"`
	SessionType    string            `json:"session_type"`
	IsContinuous   bool              `json:"is_continuous"`
	IsActive       bool              `json:"is_active"`
	RegularHours   float64           `json:"regular_hours"`
	OvertimeHours  float64           `json:"overtime_hours"`
	RawHours       float64           `json:"raw_hours"` // 未封顶的实际时长，供管理员复核
	OvertimeStatus *string           `json:"overtime_status,omitempty"`
	Logs           []TimeLogResponse `json:"logs"`
}
