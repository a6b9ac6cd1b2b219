package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/internal/model"
)

// CompletionRequestRepository 结业申请数据访问接口
type CompletionRequestRepository interface {
	Create(ctx context.Context, req *model.CompletionRequest) error
	GetByID(ctx context.Context, id string) (*model.CompletionRequest, error)
	List(ctx context.Context, status string) ([]model.CompletionRequest, error)
	// HasActive 是否已存在 pending 或 approved 的结业申请
	HasActive(ctx context.Context, programID string) (bool, error)
	Update(ctx context.Context, req *model.CompletionRequest) error
	// CreateWithProgram 单事务创建结业申请并同步实习计划状态，
	// 任一步失败即整体回滚（全有或全无）
	CreateWithProgram(ctx context.Context, req *model.CompletionRequest, program *model.InternshipProgram) error
	// ApplyReview 单事务落盘审批结果：申请行与实习计划状态同时更新
	ApplyReview(ctx context.Context, req *model.CompletionRequest, program *model.InternshipProgram) error
}

type completionRequestRepo struct {
	db *gorm.DB
}

// NewCompletionRequestRepo 创建 CompletionRequestRepository 实例
func NewCompletionRequestRepo(db *gorm.DB) CompletionRequestRepository {
	return &completionRequestRepo{db: db}
}

func (r *completionRequestRepo) Create(ctx context.Context, req *model.CompletionRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *completionRequestRepo) GetByID(ctx context.Context, id string) (*model.CompletionRequest, error) {
	var req model.CompletionRequest
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("User").
		Where("completion_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *completionRequestRepo) List(ctx context.Context, status string) ([]model.CompletionRequest, error) {
	q := r.db.WithContext(ctx).Preload("Program").Preload("User")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var reqs []model.CompletionRequest
	err := q.Order("created_at ASC").Find(&reqs).Error
	return reqs, err
}

func (r *completionRequestRepo) HasActive(ctx context.Context, programID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CompletionRequest{}).
		Where("program_id = ? AND status IN ?", programID,
			[]string{model.CompletionStatusPending, model.CompletionStatusApproved}).
		Count(&count).Error
	return count > 0, err
}

func (r *completionRequestRepo) Update(ctx context.Context, req *model.CompletionRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *completionRequestRepo) CreateWithProgram(ctx context.Context, req *model.CompletionRequest, program *model.InternshipProgram) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		return tx.Save(program).Error
	})
}

func (r *completionRequestRepo) ApplyReview(ctx context.Context, req *model.CompletionRequest, program *model.InternshipProgram) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		return tx.Save(program).Error
	})
}
