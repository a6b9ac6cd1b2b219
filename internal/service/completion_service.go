package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/config"
	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/model"
	"github.com/jayelcee/InternHQ-sub003/internal/repository"
)

// ── 结业与迁移模块业务错误 ──

var (
	ErrProgramNotFound           = errors.New("实习计划不存在")
	ErrCompletionNotFound        = errors.New("结业申请不存在")
	ErrCompletionNotEligible     = errors.New("累计工时未达到结业要求")
	ErrCompletionAlreadyActive   = errors.New("已存在处理中的结业申请")
	ErrCompletionAlreadyReviewed = errors.New("该结业申请已处理")
)

// CompletionService 结业资格与超长日志迁移业务接口
type CompletionService interface {
	GetMyProgram(ctx context.Context, userID string) (*dto.ProgramResponse, error)
	// CheckEligibility 结业资格判定：正班 + 已批准加班 ≥ 目标工时（含等于）
	CheckEligibility(ctx context.Context, userID string) (*dto.EligibilityResponse, error)
	RequestCompletion(ctx context.Context, userID string) (*dto.CompletionRequestResponse, error)
	ListCompletionRequests(ctx context.Context, status string) ([]dto.CompletionRequestResponse, error)
	ReviewCompletion(ctx context.Context, requestID, reviewerID string, approve bool) (*dto.CompletionRequestResponse, error)
	// MigrateLongLogs 扫描并拆分超过类型上限的历史日志，逐行隔离失败，可安全重跑
	MigrateLongLogs(ctx context.Context) (*dto.MigrationReport, error)
}

type completionService struct {
	repo   *repository.Repository
	stats  StatsService
	policy *config.PolicyConfig
	logger *zap.Logger
}

// NewCompletionService 创建 CompletionService 实例
func NewCompletionService(repo *repository.Repository, stats StatsService, policy *config.PolicyConfig, logger *zap.Logger) CompletionService {
	return &completionService{repo: repo, stats: stats, policy: policy, logger: logger}
}

func (s *completionService) GetMyProgram(ctx context.Context, userID string) (*dto.ProgramResponse, error) {
	program, err := s.loadProgram(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toProgramResponse(program)
	return &resp, nil
}

func (s *completionService) CheckEligibility(ctx context.Context, userID string) (*dto.EligibilityResponse, error) {
	program, err := s.loadProgram(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.stats.CalculateTimeStatistics(ctx, userID, dto.StatsOptions{RequiredHours: program.RequiredHours})
	if err != nil {
		return nil, err
	}

	return &dto.EligibilityResponse{
		Eligible:           stats.InternshipProgress >= program.RequiredHours,
		InternshipProgress: stats.InternshipProgress,
		RequiredHours:      program.RequiredHours,
	}, nil
}

func (s *completionService) RequestCompletion(ctx context.Context, userID string) (*dto.CompletionRequestResponse, error) {
	program, err := s.loadProgram(ctx, userID)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.CheckEligibility(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, ErrCompletionNotEligible
	}

	active, err := s.repo.Completion.HasActive(ctx, program.ProgramID)
	if err != nil {
		s.logger.Error("查询结业申请失败", zap.String("program_id", program.ProgramID), zap.Error(err))
		return nil, err
	}
	if active {
		return nil, ErrCompletionAlreadyActive
	}

	req := &model.CompletionRequest{
		ProgramID: program.ProgramID,
		UserID:    userID,
		Status:    model.CompletionStatusPending,
	}
	program.Status = model.ProgramStatusPendingCompletion
	if err := s.repo.Completion.CreateWithProgram(ctx, req, program); err != nil {
		s.logger.Error("创建结业申请失败", zap.String("program_id", program.ProgramID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("结业申请已提交",
		zap.String("user_id", userID),
		zap.String("program_id", program.ProgramID),
		zap.Float64("progress", eligibility.InternshipProgress))

	resp := toCompletionResponse(req)
	return &resp, nil
}

func (s *completionService) ListCompletionRequests(ctx context.Context, status string) ([]dto.CompletionRequestResponse, error) {
	reqs, err := s.repo.Completion.List(ctx, status)
	if err != nil {
		s.logger.Error("查询结业申请列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CompletionRequestResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, toCompletionResponse(&reqs[i]))
	}
	return result, nil
}

func (s *completionService) ReviewCompletion(ctx context.Context, requestID, reviewerID string, approve bool) (*dto.CompletionRequestResponse, error) {
	req, err := s.repo.Completion.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompletionNotFound
		}
		s.logger.Error("查询结业申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}
	if req.Status != model.CompletionStatusPending {
		return nil, ErrCompletionAlreadyReviewed
	}

	program, err := s.repo.Program.GetByID(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询实习计划失败", zap.String("program_id", req.ProgramID), zap.Error(err))
		return nil, err
	}

	now := time.Now()
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &now
	if approve {
		req.Status = model.CompletionStatusApproved
		program.Status = model.ProgramStatusCompleted
	} else {
		req.Status = model.CompletionStatusRejected
		program.Status = model.ProgramStatusActive
	}

	if err := s.repo.Completion.ApplyReview(ctx, req, program); err != nil {
		s.logger.Error("更新结业申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}

	resp := toCompletionResponse(req)
	return &resp, nil
}

// ────────────────────── 超长日志迁移 ──────────────────────

func (s *completionService) MigrateLongLogs(ctx context.Context) (*dto.MigrationReport, error) {
	logs, err := s.repo.TimeLog.ListExceeding(ctx,
		s.policy.RequiredDailyHours,
		s.policy.MaxOvertimeHours,
		s.policy.ExtendedOvertimeCap())
	if err != nil {
		s.logger.Error("扫描超长日志失败", zap.Error(err))
		return nil, err
	}

	report := &dto.MigrationReport{}
	for i := range logs {
		log := logs[i]
		tail := buildLogSplit(&log, s.policy)
		if tail == nil {
			// SQL 粗筛与精算（分钟向下取整）边界不一致时会出现
			report.Skipped++
			continue
		}

		if err := s.repo.TimeLog.UpdateWithSplit(ctx, &log, tail); err != nil {
			// 单行失败不中断批次，记录后继续
			s.logger.Warn("拆分超长日志失败",
				zap.String("time_log_id", log.TimeLogID),
				zap.Error(err))
			report.Errors = append(report.Errors, dto.MigrationRowError{
				TimeLogID: log.TimeLogID,
				Error:     err.Error(),
			})
			continue
		}
		report.Processed++
	}

	s.logger.Info("超长日志迁移完成",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)))
	return report, nil
}

// buildLogSplit 判断日志是否超过其类型上限，超过则原地截断并返回晋级的尾段。
// 编辑审批与迁移共用同一套拆分规则：
//   - head 在 time_in + 上限小时处截断，保持原类型；
//   - tail 从截断点到原 time_out，类型晋级一档
//     （regular → overtime → extended_overtime，extended 不再晋级），
//     加班档尾段置 overtime_status = pending 等待审批。
//
// 未超限时返回 nil 且不修改入参，重复执行天然幂等。
func buildLogSplit(log *model.TimeLog, policy *config.PolicyConfig) *model.TimeLog {
	if log.TimeOut == nil {
		return nil
	}

	max := policy.AllowedMax(log.LogType)
	if floorHours(log.TimeOut.Sub(log.TimeIn)) <= max {
		return nil
	}

	splitAt := log.TimeIn.Add(time.Duration(max * float64(time.Hour)))
	originalOut := *log.TimeOut

	tail := &model.TimeLog{
		TimeLogID: uuid.New().String(),
		UserID:    log.UserID,
		TimeIn:    splitAt,
		TimeOut:   &originalOut,
		LogType:   promoteLogType(log.LogType),
		Status:    model.LogStatusCompleted,
	}
	if tail.IsOvertimeTier() {
		pending := model.OvertimeStatusPending
		tail.OvertimeStatus = &pending
	}

	log.TimeOut = &splitAt
	return tail
}

// promoteLogType 日志类型晋级一档
func promoteLogType(logType string) string {
	switch logType {
	case model.LogTypeRegular:
		return model.LogTypeOvertime
	case model.LogTypeOvertime:
		return model.LogTypeExtendedOvertime
	default:
		return model.LogTypeExtendedOvertime
	}
}

func (s *completionService) loadProgram(ctx context.Context, userID string) (*model.InternshipProgram, error) {
	program, err := s.repo.Program.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询实习计划失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return program, nil
}

func toProgramResponse(program *model.InternshipProgram) dto.ProgramResponse {
	resp := dto.ProgramResponse{
		ID:             program.ProgramID,
		UserID:         program.UserID,
		SupervisorName: program.SupervisorName,
		RequiredHours:  program.RequiredHours,
		Status:         program.Status,
	}
	if program.StartDate != nil {
		resp.StartDate = program.StartDate.Format("2006-01-02")
	}
	return resp
}

func toCompletionResponse(req *model.CompletionRequest) dto.CompletionRequestResponse {
	resp := dto.CompletionRequestResponse{
		ID:         req.CompletionRequestID,
		ProgramID:  req.ProgramID,
		UserID:     req.UserID,
		Status:     req.Status,
		ReviewedBy: req.ReviewedBy,
		CreatedAt:  req.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if req.ReviewedAt != nil {
		resp.ReviewedAt = req.ReviewedAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}
