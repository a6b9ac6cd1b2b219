package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/internal/model"
)

// ProgramRepository 实习计划数据访问接口
type ProgramRepository interface {
	Create(ctx context.Context, program *model.InternshipProgram) error
	GetByID(ctx context.Context, id string) (*model.InternshipProgram, error)
	GetByUser(ctx context.Context, userID string) (*model.InternshipProgram, error)
	List(ctx context.Context, status string) ([]model.InternshipProgram, error)
	Update(ctx context.Context, program *model.InternshipProgram) error
}

type programRepo struct {
	db *gorm.DB
}

// NewProgramRepo 创建 ProgramRepository 实例
func NewProgramRepo(db *gorm.DB) ProgramRepository {
	return &programRepo{db: db}
}

func (r *programRepo) Create(ctx context.Context, program *model.InternshipProgram) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepo) GetByID(ctx context.Context, id string) (*model.InternshipProgram, error) {
	var program model.InternshipProgram
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("School").
		Preload("Department").
		Where("program_id = ?", id).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) GetByUser(ctx context.Context, userID string) (*model.InternshipProgram, error) {
	var program model.InternshipProgram
	err := r.db.WithContext(ctx).
		Preload("School").
		Preload("Department").
		Where("user_id = ?", userID).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) List(ctx context.Context, status string) ([]model.InternshipProgram, error) {
	q := r.db.WithContext(ctx).Preload("User")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var programs []model.InternshipProgram
	err := q.Order("created_at ASC").Find(&programs).Error
	return programs, err
}

func (r *programRepo) Update(ctx context.Context, program *model.InternshipProgram) error {
	return r.db.WithContext(ctx).Save(program).Error
}
