package model

import "time"

// 结业申请状态
const (
	CompletionStatusPending  = "pending"
	CompletionStatusApproved = "approved"
	CompletionStatusRejected = "rejected"
)

// CompletionRequest 结业申请表 — 对应 completion_requests
type CompletionRequest struct {
	CompletionRequestID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"completion_request_id"`
	ProgramID           string     `gorm:"type:uuid;not null;index"                       json:"program_id"`
	UserID              string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Status              string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	ReviewedBy          *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	VersionedModel

	// 关联
	Program *InternshipProgram `gorm:"foreignKey:ProgramID;references:ProgramID" json:"program,omitempty"`
	User    *User              `gorm:"foreignKey:UserID;references:UserID"       json:"user,omitempty"`
}

// TableName 指定表名
func (CompletionRequest) TableName() string { return "completion_requests" }
