package dto

// ── 实习计划 / 结业模块 DTO ──

// ProgramResponse 实习计划响应
type ProgramResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	SupervisorName string  `json:"supervisor_name,omitempty"`
	RequiredHours  float64 `json:"required_hours"`
	Status         string  `json:"status"`
	StartDate      string  `json:"start_date,omitempty"` // YYYY-MM-DD
}

// EligibilityResponse 结业资格判定结果
type EligibilityResponse struct {
	Eligible           bool    `json:"eligible"`
	InternshipProgress float64 `json:"internship_progress"`
	RequiredHours      float64 `json:"required_hours"`
}

// CompletionRequestResponse 结业申请响应
type CompletionRequestResponse struct {
	ID         string  `json:"id"`
	ProgramID  string  `json:"program_id"`
	UserID     string  `json:"user_id"`
	Status     string  `json:"status"`
	ReviewedBy *string `json:"reviewed_by,omitempty"`
	ReviewedAt string  `json:"reviewed_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// MigrationRowError 迁移中单行失败明细
type MigrationRowError struct {
	TimeLogID string `json:"time_log_id"`
	Error     string `json:"error"`
}

// MigrationReport 超长日志迁移报告
// 迁移逐行隔离失败：单行出错记入 Errors，不中断整个批次
type MigrationReport struct {
	Processed int                 `json:"processed"` // 实际拆分的日志数
	Skipped   int                 `json:"skipped"`   // 扫描到但无需拆分的日志数
	Errors    []MigrationRowError `json:"errors,omitempty"`
}
