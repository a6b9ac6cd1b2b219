package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/config"
	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/model"
	"github.com/jayelcee/InternHQ-sub003/internal/repository"
)

// StatsService 工时统计业务接口
type StatsService interface {
	// CalculateTimeStatistics 汇总某用户全部日志的工时统计与逐日分解
	CalculateTimeStatistics(ctx context.Context, userID string, opts dto.StatsOptions) (*dto.TimeStatistics, error)
}

type statsService struct {
	repo   *repository.Repository
	policy *config.PolicyConfig
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, policy *config.PolicyConfig, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, policy: policy, logger: logger}
}

func (s *statsService) CalculateTimeStatistics(ctx context.Context, userID string, opts dto.StatsOptions) (*dto.TimeStatistics, error) {
	logs, err := s.repo.TimeLog.ListByUser(ctx, userID, nil, nil)
	if err != nil {
		s.logger.Error("查询用户日志失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	pending, err := s.repo.Edit.ListPendingByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询挂起编辑申请失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	// 未显式给定目标时数时取实习计划的 required_hours
	if opts.RequiredHours <= 0 {
		program, err := s.repo.Program.GetByUser(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询实习计划失败", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		if program != nil {
			opts.RequiredHours = program.RequiredHours
		}
	}

	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now()
	}

	return calculateStatistics(logs, pending, opts, s.policy), nil
}

// calculateStatistics 统计核心（纯函数）：相同输入与 AsOf 必得相同输出
//
// 日志先按本地日期分组，组内按连续会话分组，再逐会话经时长计算归并。
// priorRegular 在一天内跨会话累计、跨天清零。
// 结业进度 = 精确正班合计 + 已批准加班合计；挂起/驳回加班不计入。
// pending 的编辑申请只用于附注展示（IncludeEditRequests），不改变任何数值。
func calculateStatistics(logs []model.TimeLog, pendingEdits []model.EditRequest, opts dto.StatsOptions, policy *config.PolicyConfig) *dto.TimeStatistics {
	continuousGroups := make(map[string]string)
	editByLog := make(map[string]*model.EditRequest)
	for i := range pendingEdits {
		req := &pendingEdits[i]
		editByLog[req.TimeLogID] = req
		if req.IsContinuousSession && req.GroupID != nil {
			continuousGroups[req.TimeLogID] = *req.GroupID
		}
	}

	// 按本地日期分组
	byDay := make(map[string][]model.TimeLog)
	for _, log := range logs {
		day := log.TimeIn.Format("2006-01-02")
		byDay[day] = append(byDay[day], log)
	}
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	result := &dto.TimeStatistics{RequiredHours: opts.RequiredHours}

	for _, day := range days {
		sessions := GroupIntoSessions(byDay[day], policy.ContinuityTolerance, continuousGroups)

		dayBreak := dto.DayBreakdown{Date: day}
		priorRegular := 0.0

		for _, sess := range sessions {
			accurate := ComputeSessionDuration(sess.Logs, opts.AsOf, priorRegular, policy, DurationAccurate)
			raw := ComputeSessionDuration(sess.Logs, opts.AsOf, 0, policy, DurationRaw)
			priorRegular += accurate.RegularHours

			dayBreak.RegularHours += accurate.RegularHours
			dayBreak.OvertimeHours += accurate.OvertimeHours
			dayBreak.OverflowHours += accurate.OverflowHours

			result.RegularHoursTotal += accurate.RegularHours
			result.OvertimeHoursTotal += accurate.OvertimeHours
			result.OverflowHoursTotal += accurate.OverflowHours
			result.ApprovedOvertimeHours += accurate.ApprovedOvertimeHours

			sessResp := dto.SessionBreakdown{
				TimeIn:         sess.TimeIn,
				TimeOut:        sess.TimeOut,
				SessionType:    sess.SessionType,
				IsContinuous:   sess.IsContinuous,
				IsActive:       accurate.IsActive,
				RegularHours:   accurate.RegularHours,
				OvertimeHours:  accurate.OvertimeHours,
				RawHours:       raw.RegularHours + raw.OvertimeHours,
				OvertimeStatus: accurate.OvertimeStatus,
			}
			for _, log := range sess.Logs {
				logResp := toTimeLogResponse(&log)
				if opts.IncludeEditRequests {
					if req, ok := editByLog[log.TimeLogID]; ok {
						logResp.PendingEdit = &dto.PendingEditInfo{
							EditRequestID:       req.EditRequestID,
							RequestedTimeIn:     req.RequestedTimeIn,
							RequestedTimeOut:    req.RequestedTimeOut,
							IsContinuousSession: req.IsContinuousSession,
							GroupID:             req.GroupID,
						}
					}
				}
				sessResp.Logs = append(sessResp.Logs, logResp)
			}
			dayBreak.Sessions = append(dayBreak.Sessions, sessResp)
		}

		result.Days = append(result.Days, dayBreak)
	}

	result.InternshipProgress = result.RegularHoursTotal + result.ApprovedOvertimeHours
	if result.RequiredHours > 0 {
		result.ProgressPercent = math.Round(result.InternshipProgress/result.RequiredHours*10000) / 100
	}

	return result
}

func toTimeLogResponse(log *model.TimeLog) dto.TimeLogResponse {
	return dto.TimeLogResponse{
		ID:             log.TimeLogID,
		UserID:         log.UserID,
		TimeIn:         log.TimeIn,
		TimeOut:        log.TimeOut,
		LogType:        log.LogType,
		Status:         log.Status,
		OvertimeStatus: log.OvertimeStatus,
	}
}
