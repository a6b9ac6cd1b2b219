package model

// School 学校表 — 对应 schools
type School struct {
	SchoolID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"school_id"`
	Name     string `gorm:"type:varchar(200);not null"                     json:"name"`
	Address  string `gorm:"type:varchar(500)"                              json:"address,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (School) TableName() string { return "schools" }
