package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/model"
	"github.com/jayelcee/InternHQ-sub003/internal/repository"
)

// ── 打卡模块业务错误 ──

var (
	ErrTimeLogNotFound   = errors.New("打卡记录不存在")
	ErrOpenSessionExists = errors.New("已存在未结束的同类型打卡")
	ErrNoOpenSession     = errors.New("没有进行中的打卡")
	ErrTimeLogForbidden  = errors.New("无权访问该打卡记录")
)

// TimeLogService 打卡业务接口
type TimeLogService interface {
	ClockIn(ctx context.Context, userID, logType string) (*dto.TimeLogResponse, error)
	ClockOut(ctx context.Context, userID, logType string) (*dto.TimeLogResponse, error)
	List(ctx context.Context, callerID, callerRole string, q *dto.ListTimeLogsQuery) ([]dto.TimeLogResponse, error)
	ListToday(ctx context.Context, userID string) ([]dto.TimeLogResponse, error)
}

type timeLogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeLogService 创建 TimeLogService 实例
func NewTimeLogService(repo *repository.Repository, logger *zap.Logger) TimeLogService {
	return &timeLogService{repo: repo, logger: logger}
}

// ────────────────────── ClockIn ──────────────────────

func (s *timeLogService) ClockIn(ctx context.Context, userID, logType string) (*dto.TimeLogResponse, error) {
	if logType == "" {
		logType = model.LogTypeRegular
	}

	log := &model.TimeLog{
		UserID:  userID,
		TimeIn:  time.Now(),
		LogType: logType,
		Status:  model.LogStatusPending,
	}
	// 加班档打卡默认进入待审批状态
	if log.IsOvertimeTier() {
		pending := model.OvertimeStatusPending
		log.OvertimeStatus = &pending
	}

	created, err := s.repo.TimeLog.CreateIfNoOpen(ctx, log)
	if err != nil {
		s.logger.Error("上班打卡失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if !created {
		return nil, ErrOpenSessionExists
	}

	resp := toTimeLogResponse(log)
	return &resp, nil
}

// ────────────────────── ClockOut ──────────────────────

func (s *timeLogService) ClockOut(ctx context.Context, userID, logType string) (*dto.TimeLogResponse, error) {
	if logType == "" {
		logType = model.LogTypeRegular
	}

	log, err := s.repo.TimeLog.GetOpen(ctx, userID, logType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenSession
		}
		s.logger.Error("查询进行中打卡失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	now := time.Now()
	if now.Before(log.TimeIn) {
		now = log.TimeIn
	}
	log.TimeOut = &now
	log.Status = model.LogStatusCompleted

	if err := s.repo.TimeLog.Update(ctx, log); err != nil {
		s.logger.Error("下班打卡失败", zap.String("time_log_id", log.TimeLogID), zap.Error(err))
		return nil, err
	}

	resp := toTimeLogResponse(log)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *timeLogService) List(ctx context.Context, callerID, callerRole string, q *dto.ListTimeLogsQuery) ([]dto.TimeLogResponse, error) {
	targetID := callerID
	if q.UserID != "" && q.UserID != callerID {
		// 仅管理员可查询他人日志
		if callerRole != model.RoleAdmin {
			return nil, ErrTimeLogForbidden
		}
		targetID = q.UserID
	}

	var from, to *time.Time
	if q.From != "" {
		t, err := time.ParseInLocation("2006-01-02", q.From, time.Local)
		if err == nil {
			from = &t
		}
	}
	if q.To != "" {
		t, err := time.ParseInLocation("2006-01-02", q.To, time.Local)
		if err == nil {
			end := t.AddDate(0, 0, 1) // to 为闭区间日期，查询时右开
			to = &end
		}
	}

	logs, err := s.repo.TimeLog.ListByUser(ctx, targetID, from, to)
	if err != nil {
		s.logger.Error("查询日志列表失败", zap.String("user_id", targetID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, toTimeLogResponse(&logs[i]))
	}
	return result, nil
}

// ────────────────────── ListToday ──────────────────────

func (s *timeLogService) ListToday(ctx context.Context, userID string) ([]dto.TimeLogResponse, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	logs, err := s.repo.TimeLog.ListByUser(ctx, userID, &start, &end)
	if err != nil {
		s.logger.Error("查询当日日志失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, toTimeLogResponse(&logs[i]))
	}
	return result, nil
}
