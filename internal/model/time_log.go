package model

import "time"

// ── 工时日志枚举值 ──

// 日志类型：三档工时，各有独立的每日上限
const (
	LogTypeRegular          = "regular"
	LogTypeOvertime         = "overtime"
	LogTypeExtendedOvertime = "extended_overtime"
)

// 日志状态
const (
	LogStatusPending   = "pending"   // 会话进行中（time_out 为空）或等待管理员处理
	LogStatusCompleted = "completed"
)

// 加班审批状态（仅 log_type != regular 时有意义）
const (
	OvertimeStatusPending  = "pending"
	OvertimeStatusApproved = "approved"
	OvertimeStatusRejected = "rejected"
)

// TimeLog 打卡记录表 — 对应 time_logs
// 不变量: time_out 非空时必须 >= time_in；除编辑审批与迁移外不得改写时间字段
type TimeLog struct {
	TimeLogID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"time_log_id"`
	UserID         string     `gorm:"type:uuid;not null;index:idx_time_logs_user_time_in" json:"user_id"`
	TimeIn         time.Time  `gorm:"not null;index:idx_time_logs_user_time_in"      json:"time_in"`
	TimeOut        *time.Time `json:"time_out,omitempty"`
	LogType        string     `gorm:"type:varchar(30);not null;default:'regular'"    json:"log_type"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	OvertimeStatus *string    `gorm:"type:varchar(20)"                               json:"overtime_status,omitempty"`
	VersionedModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (TimeLog) TableName() string { return "time_logs" }

// IsOpen 会话是否仍在进行（未打下班卡）
func (l *TimeLog) IsOpen() bool { return l.TimeOut == nil }

// IsOvertimeTier 是否属于加班档（overtime / extended_overtime）
func (l *TimeLog) IsOvertimeTier() bool {
	return l.LogType == LogTypeOvertime || l.LogType == LogTypeExtendedOvertime
}
