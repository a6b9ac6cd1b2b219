package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/internal/model"
	pkgerrors "github.com/jayelcee/InternHQ-sub003/pkg/errors"
)

// TimeLogRepository 打卡记录数据访问接口
type TimeLogRepository interface {
	// CreateIfNoOpen 在同一事务内检查并创建：同用户同类型已存在未关闭日志时返回 created=false
	CreateIfNoOpen(ctx context.Context, log *model.TimeLog) (created bool, err error)
	GetByID(ctx context.Context, id string) (*model.TimeLog, error)
	GetOpen(ctx context.Context, userID, logType string) (*model.TimeLog, error)
	ListByUser(ctx context.Context, userID string, from, to *time.Time) ([]model.TimeLog, error)
	// ListExceeding 扫描时长超过各类型上限（小时）的已关闭日志，供迁移使用
	ListExceeding(ctx context.Context, regularMax, overtimeMax, extendedMax float64) ([]model.TimeLog, error)
	Update(ctx context.Context, log *model.TimeLog) error
	// UpdateWithSplit 原子地更新 head 并创建 tail（tail 为 nil 时仅更新）
	UpdateWithSplit(ctx context.Context, head *model.TimeLog, tail *model.TimeLog) error
	DeleteHard(ctx context.Context, id string) error
}

type timeLogRepo struct {
	db *gorm.DB
}

// NewTimeLogRepo 创建 TimeLogRepository 实例
func NewTimeLogRepo(db *gorm.DB) TimeLogRepository {
	return &timeLogRepo{db: db}
}

func (r *timeLogRepo) CreateIfNoOpen(ctx context.Context, log *model.TimeLog) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		// check-then-act 必须在事务内，防止并发重复打卡
		if err := tx.Model(&model.TimeLog{}).
			Where("user_id = ? AND log_type = ? AND time_out IS NULL", log.UserID, log.LogType).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(log).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (r *timeLogRepo) GetByID(ctx context.Context, id string) (*model.TimeLog, error) {
	var log model.TimeLog
	err := r.db.WithContext(ctx).
		Where("time_log_id = ?", id).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *timeLogRepo) GetOpen(ctx context.Context, userID, logType string) (*model.TimeLog, error) {
	var log model.TimeLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND log_type = ? AND time_out IS NULL", userID, logType).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *timeLogRepo) ListByUser(ctx context.Context, userID string, from, to *time.Time) ([]model.TimeLog, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("time_in >= ?", *from)
	}
	if to != nil {
		q = q.Where("time_in < ?", *to)
	}

	var logs []model.TimeLog
	err := q.Order("time_in ASC").Find(&logs).Error
	return logs, err
}

func (r *timeLogRepo) ListExceeding(ctx context.Context, regularMax, overtimeMax, extendedMax float64) ([]model.TimeLog, error) {
	var logs []model.TimeLog
	err := r.db.WithContext(ctx).
		Where("time_out IS NOT NULL").
		Where(`EXTRACT(EPOCH FROM (time_out - time_in)) / 3600 > CASE log_type
			WHEN 'overtime' THEN ?
			WHEN 'extended_overtime' THEN ?
			ELSE ? END`, overtimeMax, extendedMax, regularMax).
		Order("time_in ASC").
		Find(&logs).Error
	return logs, err
}

func (r *timeLogRepo) Update(ctx context.Context, log *model.TimeLog) error {
	return updateTimeLogTx(r.db.WithContext(ctx), log)
}

func (r *timeLogRepo) UpdateWithSplit(ctx context.Context, head *model.TimeLog, tail *model.TimeLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateTimeLogTx(tx, head); err != nil {
			return err
		}
		if tail != nil {
			if err := tx.Create(tail).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *timeLogRepo) DeleteHard(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("time_log_id = ?", id).
		Delete(&model.TimeLog{}).Error
}

// updateTimeLogTx 带乐观锁的日志更新：version 不匹配时返回 ErrOptimisticLock
// 编辑审批/撤销与迁移共用，保证"读-算-写"不被并发写覆盖
func updateTimeLogTx(tx *gorm.DB, log *model.TimeLog) error {
	res := tx.Model(&model.TimeLog{}).
		Where("time_log_id = ? AND version = ?", log.TimeLogID, log.Version).
		Updates(map[string]interface{}{
			"time_in":         log.TimeIn,
			"time_out":        log.TimeOut,
			"log_type":        log.LogType,
			"status":          log.Status,
			"overtime_status": log.OvertimeStatus,
			"updated_by":      log.UpdatedBy,
			"updated_at":      gorm.Expr("NOW()"),
			"version":         log.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	log.Version++
	return nil
}
