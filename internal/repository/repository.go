package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	School     SchoolRepository
	Department DepartmentRepository
	TimeLog    TimeLogRepository
	Edit       EditRequestRepository
	Program    ProgramRepository
	Completion CompletionRequestRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		School:     NewSchoolRepo(db),
		Department: NewDepartmentRepo(db),
		TimeLog:    NewTimeLogRepo(db),
		Edit:       NewEditRequestRepo(db),
		Program:    NewProgramRepo(db),
		Completion: NewCompletionRequestRepo(db),
	}
}
