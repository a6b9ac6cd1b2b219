package model

import "time"

// 实习计划状态
const (
	ProgramStatusActive            = "active"
	ProgramStatusPendingCompletion = "pending_completion"
	ProgramStatusCompleted         = "completed"
)

// InternshipProgram 实习计划表 — 对应 internship_programs
// required_hours 是结业资格判定的目标值，核心逻辑只读不写
type InternshipProgram struct {
	ProgramID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"program_id"`
	UserID         string     `gorm:"type:uuid;not null"                             json:"user_id"`
	SchoolID       *string    `gorm:"type:uuid"                                      json:"school_id,omitempty"`
	DepartmentID   *string    `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	SupervisorName string     `gorm:"type:varchar(100)"                              json:"supervisor_name,omitempty"`
	RequiredHours  float64    `gorm:"type:numeric(7,2);not null"                     json:"required_hours"`
	StartDate      *time.Time `gorm:"type:date"                                      json:"start_date,omitempty"`
	Status         string     `gorm:"type:varchar(30);not null;default:'active'"     json:"status"`
	VersionedModel

	// 关联
	User       *User       `gorm:"foreignKey:UserID;references:UserID"             json:"user,omitempty"`
	School     *School     `gorm:"foreignKey:SchoolID;references:SchoolID"         json:"school,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (InternshipProgram) TableName() string { return "internship_programs" }
