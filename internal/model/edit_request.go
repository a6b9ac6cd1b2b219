package model

import "time"

// 编辑申请状态
const (
	EditRequestStatusPending  = "pending"
	EditRequestStatusApproved = "approved"
	EditRequestStatusRejected = "rejected"
)

// EditRequest 工时修改申请表 — 对应 edit_requests
//
// 连续会话编辑（跨多条日志）持久化为多行：组内每条日志各一行，
// 共享 group_id，affected_log_ids 冗余记录组内全部日志 ID。
// 每行各自快照本条日志提交时的 original_time_in/out，撤销时逐行精确还原。
// 不变量: original_time_in/out 一经写入不可变更。
type EditRequest struct {
	EditRequestID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"edit_request_id"`
	TimeLogID           string     `gorm:"type:uuid;not null;index"                       json:"time_log_id"`
	RequestedBy         string     `gorm:"type:uuid;not null"                             json:"requested_by"`
	RequestedTimeIn     *time.Time `json:"requested_time_in,omitempty"`
	RequestedTimeOut    *time.Time `json:"requested_time_out,omitempty"`
	OriginalTimeIn      time.Time  `gorm:"not null"                                       json:"original_time_in"`
	OriginalTimeOut     *time.Time `json:"original_time_out,omitempty"`
	Status              string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	ReviewedBy          *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	IsContinuousSession bool       `gorm:"not null;default:false"                         json:"is_continuous_session"`
	GroupID             *string    `gorm:"type:uuid;index"                                json:"group_id,omitempty"`
	AffectedLogIDs      UUIDArray  `gorm:"type:uuid[]"                                    json:"affected_log_ids,omitempty"`
	SplitLogID          *string    `gorm:"type:uuid"                                      json:"split_log_id,omitempty"` // 审批拆分产生的加班日志，撤销时删除
	Reason              string     `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	VersionedModel

	// 关联
	TimeLog   *TimeLog `gorm:"foreignKey:TimeLogID;references:TimeLogID" json:"time_log,omitempty"`
	Requester *User    `gorm:"foreignKey:RequestedBy;references:UserID"  json:"requester,omitempty"`
}

// TableName 指定表名
func (EditRequest) TableName() string { return "edit_requests" }

// IsReviewed 是否已进入终态（approved / rejected）
func (r *EditRequest) IsReviewed() bool {
	return r.Status == EditRequestStatusApproved || r.Status == EditRequestStatusRejected
}
