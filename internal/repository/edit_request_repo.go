package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/internal/model"
	pkgerrors "github.com/jayelcee/InternHQ-sub003/pkg/errors"
)

// EditRequestRepository 工时修改申请数据访问接口
type EditRequestRepository interface {
	Create(ctx context.Context, req *model.EditRequest) error
	// CreateBatch 连续会话编辑的多行申请，单事务全部成功或全部失败
	CreateBatch(ctx context.Context, reqs []model.EditRequest) error
	GetByID(ctx context.Context, id string) (*model.EditRequest, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.EditRequest, error)
	// List 按状态过滤；userID 非空时只返回该用户日志上的申请
	List(ctx context.Context, status, userID string) ([]model.EditRequest, error)
	// ListPendingByUser 返回某用户日志上全部挂起申请，供统计展示附注使用
	ListPendingByUser(ctx context.Context, userID string) ([]model.EditRequest, error)
	Update(ctx context.Context, req *model.EditRequest) error
	// ApplyReviewOutcome 单事务落盘一次审批/撤销的全部变更：
	// 更新申请行、改写关联日志、创建拆分日志、删除被撤销的拆分日志。
	// 任一步失败即整体回滚（全有或全无）。
	ApplyReviewOutcome(ctx context.Context, reqs []*model.EditRequest, logs []*model.TimeLog, newLogs []*model.TimeLog, deleteLogIDs []string) error
}

type editRequestRepo struct {
	db *gorm.DB
}

// NewEditRequestRepo 创建 EditRequestRepository 实例
func NewEditRequestRepo(db *gorm.DB) EditRequestRepository {
	return &editRequestRepo{db: db}
}

func (r *editRequestRepo) Create(ctx context.Context, req *model.EditRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *editRequestRepo) CreateBatch(ctx context.Context, reqs []model.EditRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&reqs).Error
	})
}

func (r *editRequestRepo) GetByID(ctx context.Context, id string) (*model.EditRequest, error) {
	var req model.EditRequest
	err := r.db.WithContext(ctx).
		Preload("TimeLog").
		Where("edit_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *editRequestRepo) ListByGroup(ctx context.Context, groupID string) ([]model.EditRequest, error) {
	var reqs []model.EditRequest
	err := r.db.WithContext(ctx).
		Preload("TimeLog").
		Where("group_id = ?", groupID).
		Order("original_time_in ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *editRequestRepo) List(ctx context.Context, status, userID string) ([]model.EditRequest, error) {
	q := r.db.WithContext(ctx).Model(&model.EditRequest{}).Preload("TimeLog")
	if status != "" {
		q = q.Where("edit_requests.status = ?", status)
	}
	if userID != "" {
		q = q.Joins("JOIN time_logs ON time_logs.time_log_id = edit_requests.time_log_id").
			Where("time_logs.user_id = ?", userID)
	}

	var reqs []model.EditRequest
	err := q.Order("edit_requests.created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *editRequestRepo) ListPendingByUser(ctx context.Context, userID string) ([]model.EditRequest, error) {
	var reqs []model.EditRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN time_logs ON time_logs.time_log_id = edit_requests.time_log_id").
		Where("edit_requests.status = ? AND time_logs.user_id = ?", model.EditRequestStatusPending, userID).
		Find(&reqs).Error
	return reqs, err
}

func (r *editRequestRepo) Update(ctx context.Context, req *model.EditRequest) error {
	return updateEditRequestTx(r.db.WithContext(ctx), req)
}

func (r *editRequestRepo) ApplyReviewOutcome(ctx context.Context, reqs []*model.EditRequest, logs []*model.TimeLog, newLogs []*model.TimeLog, deleteLogIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, log := range logs {
			if err := updateTimeLogTx(tx, log); err != nil {
				return err
			}
		}
		for _, nl := range newLogs {
			if err := tx.Create(nl).Error; err != nil {
				return err
			}
		}
		for _, id := range deleteLogIDs {
			if err := tx.Unscoped().Where("time_log_id = ?", id).Delete(&model.TimeLog{}).Error; err != nil {
				return err
			}
		}
		for _, req := range reqs {
			if err := updateEditRequestTx(tx, req); err != nil {
				return err
			}
		}
		return nil
	})
}

// updateEditRequestTx 带乐观锁的申请行更新
func updateEditRequestTx(tx *gorm.DB, req *model.EditRequest) error {
	res := tx.Model(&model.EditRequest{}).
		Where("edit_request_id = ? AND version = ?", req.EditRequestID, req.Version).
		Updates(map[string]interface{}{
			"status":       req.Status,
			"reviewed_by":  req.ReviewedBy,
			"reviewed_at":  req.ReviewedAt,
			"split_log_id": req.SplitLogID,
			"updated_by":   req.UpdatedBy,
			"updated_at":   gorm.Expr("NOW()"),
			"version":      req.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version++
	return nil
}
