package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/jayelcee/InternHQ-sub003/internal/model"
	"github.com/jayelcee/InternHQ-sub003/internal/repository"
)

func newCompletionService(repo *repository.Repository) CompletionService {
	stats := NewStatsService(repo, testPolicy(), zap.NewNop())
	return NewCompletionService(repo, stats, testPolicy(), zap.NewNop())
}

// seedProgram 创建实习计划并返回 program_id
func seedProgram(t *testing.T, mocks *testMocks, userID string, requiredHours float64) string {
	t.Helper()
	program := &model.InternshipProgram{
		UserID:        userID,
		RequiredHours: requiredHours,
		Status:        model.ProgramStatusActive,
	}
	if err := mocks.program.Create(context.Background(), program); err != nil {
		t.Fatalf("创建实习计划应成功: %v", err)
	}
	return program.ProgramID
}

// ────────────────────── 资格判定 ──────────────────────

func TestCompletion_EligibilityInclusiveBoundary(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := newCompletionService(repo)
	ctx := context.Background()

	// 目标 18 小时，两个整天正好 18：边界取含等于
	seedProgram(t, mocks, "user-1", 18)
	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 17:00")
	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-11 08:00", "2026-08-11 17:00")

	elig, err := svc.CheckEligibility(ctx, "user-1")
	if err != nil {
		t.Fatalf("资格判定应成功: %v", err)
	}
	if !elig.Eligible {
		t.Errorf("进度 %v 达到目标 %v 应判定合格", elig.InternshipProgress, elig.RequiredHours)
	}
}

func TestCompletion_EligibilityBelowTarget(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := newCompletionService(repo)
	ctx := context.Background()

	seedProgram(t, mocks, "user-1", 18)
	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 17:00")

	elig, err := svc.CheckEligibility(ctx, "user-1")
	if err != nil {
		t.Fatalf("资格判定应成功: %v", err)
	}
	if elig.Eligible {
		t.Errorf("进度 %v 未达目标 %v 不应判定合格", elig.InternshipProgress, elig.RequiredHours)
	}

	if _, err := svc.RequestCompletion(ctx, "user-1"); !errors.Is(err, ErrCompletionNotEligible) {
		t.Errorf("期望 ErrCompletionNotEligible，实际=%v", err)
	}
}

func TestCompletion_EligibilityWithoutProgram(t *testing.T) {
	repo, _ := newTestRepo()
	svc := newCompletionService(repo)

	if _, err := svc.CheckEligibility(context.Background(), "user-1"); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("期望 ErrProgramNotFound，实际=%v", err)
	}
}

// ────────────────────── 结业申请与审批 ──────────────────────

func TestCompletion_RequestAndReviewFlow(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := newCompletionService(repo)
	ctx := context.Background()

	programID := seedProgram(t, mocks, "user-1", 9)
	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 17:00")

	req, err := svc.RequestCompletion(ctx, "user-1")
	if err != nil {
		t.Fatalf("结业申请应成功: %v", err)
	}
	if req.Status != model.CompletionStatusPending {
		t.Errorf("新申请状态应为 pending，实际=%s", req.Status)
	}
	program, _ := mocks.program.GetByID(ctx, programID)
	if program.Status != model.ProgramStatusPendingCompletion {
		t.Errorf("申请后计划状态应为 pending_completion，实际=%s", program.Status)
	}

	// 已有处理中申请时不能重复提交
	if _, err := svc.RequestCompletion(ctx, "user-1"); !errors.Is(err, ErrCompletionAlreadyActive) {
		t.Errorf("期望 ErrCompletionAlreadyActive，实际=%v", err)
	}

	approved, err := svc.ReviewCompletion(ctx, req.ID, "admin-1", true)
	if err != nil {
		t.Fatalf("审批应成功: %v", err)
	}
	if approved.Status != model.CompletionStatusApproved {
		t.Errorf("期望状态 approved，实际=%s", approved.Status)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != "admin-1" {
		t.Errorf("期望审批人 admin-1，实际=%v", approved.ReviewedBy)
	}
	program, _ = mocks.program.GetByID(ctx, programID)
	if program.Status != model.ProgramStatusCompleted {
		t.Errorf("批准后计划状态应为 completed，实际=%s", program.Status)
	}

	// 已处理申请不可再审
	if _, err := svc.ReviewCompletion(ctx, req.ID, "admin-1", false); !errors.Is(err, ErrCompletionAlreadyReviewed) {
		t.Errorf("期望 ErrCompletionAlreadyReviewed，实际=%v", err)
	}
}

func TestCompletion_RejectRestoresActiveProgram(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := newCompletionService(repo)
	ctx := context.Background()

	programID := seedProgram(t, mocks, "user-1", 9)
	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 17:00")

	req, err := svc.RequestCompletion(ctx, "user-1")
	if err != nil {
		t.Fatalf("结业申请应成功: %v", err)
	}

	rejected, err := svc.ReviewCompletion(ctx, req.ID, "admin-1", false)
	if err != nil {
		t.Fatalf("驳回应成功: %v", err)
	}
	if rejected.Status != model.CompletionStatusRejected {
		t.Errorf("期望状态 rejected，实际=%s", rejected.Status)
	}
	program, _ := mocks.program.GetByID(ctx, programID)
	if program.Status != model.ProgramStatusActive {
		t.Errorf("驳回后计划应恢复 active，实际=%s", program.Status)
	}

	// 被驳回后可重新提交
	if _, err := svc.RequestCompletion(ctx, "user-1"); err != nil {
		t.Errorf("驳回后重新申请应成功: %v", err)
	}
}

func TestCompletion_RequestAllOrNothing(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := newCompletionService(repo)
	ctx := context.Background()

	programID := seedProgram(t, mocks, "user-1", 9)
	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 17:00")

	// 计划状态写入失败时申请行不能留痕
	mocks.program.failUpdateID = programID
	if _, err := svc.RequestCompletion(ctx, "user-1"); !errors.Is(err, errMockWriteFailed) {
		t.Fatalf("期望写入失败错误，实际=%v", err)
	}

	active, _ := mocks.completion.HasActive(ctx, programID)
	if active {
		t.Errorf("提交失败后不应残留结业申请")
	}
	program, _ := mocks.program.GetByID(ctx, programID)
	if program.Status != model.ProgramStatusActive {
		t.Errorf("提交失败后计划状态应保持 active，实际=%s", program.Status)
	}

	// 故障恢复后可正常提交
	mocks.program.failUpdateID = ""
	if _, err := svc.RequestCompletion(ctx, "user-1"); err != nil {
		t.Errorf("恢复后提交应成功: %v", err)
	}
}

func TestCompletion_ReviewAllOrNothing(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := newCompletionService(repo)
	ctx := context.Background()

	programID := seedProgram(t, mocks, "user-1", 9)
	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 17:00")

	req, err := svc.RequestCompletion(ctx, "user-1")
	if err != nil {
		t.Fatalf("结业申请应成功: %v", err)
	}

	// 计划状态写入失败时申请行不能单独落盘
	mocks.program.failUpdateID = programID
	if _, err := svc.ReviewCompletion(ctx, req.ID, "admin-1", true); !errors.Is(err, errMockWriteFailed) {
		t.Fatalf("期望写入失败错误，实际=%v", err)
	}

	stored, _ := mocks.completion.GetByID(ctx, req.ID)
	if stored.Status != model.CompletionStatusPending {
		t.Errorf("审批失败后申请应保持 pending，实际=%s", stored.Status)
	}
	program, _ := mocks.program.GetByID(ctx, programID)
	if program.Status != model.ProgramStatusPendingCompletion {
		t.Errorf("审批失败后计划应保持 pending_completion，实际=%s", program.Status)
	}

	// 故障恢复后重审成功，两处状态同步落盘
	mocks.program.failUpdateID = ""
	approved, err := svc.ReviewCompletion(ctx, req.ID, "admin-1", true)
	if err != nil {
		t.Fatalf("恢复后审批应成功: %v", err)
	}
	if approved.Status != model.CompletionStatusApproved {
		t.Errorf("期望状态 approved，实际=%s", approved.Status)
	}
	program, _ = mocks.program.GetByID(ctx, programID)
	if program.Status != model.ProgramStatusCompleted {
		t.Errorf("批准后计划状态应为 completed，实际=%s", program.Status)
	}
}

func TestCompletion_ReviewMissingRequest(t *testing.T) {
	repo, _ := newTestRepo()
	svc := newCompletionService(repo)

	if _, err := svc.ReviewCompletion(context.Background(), "completion-missing", "admin-1", true); !errors.Is(err, ErrCompletionNotFound) {
		t.Errorf("期望 ErrCompletionNotFound，实际=%v", err)
	}
}

// ────────────────────── 超长日志迁移 ──────────────────────

func TestMigrateLongLogs_SplitsAndIsIdempotent(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := newCompletionService(repo)
	ctx := context.Background()

	// 11 小时正班：应截断为 9 小时正班 + 2 小时待审批加班
	longID := seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 19:00")
	// 合规日志不受影响
	okID := seedLog(mocks.timeLog, "user-2", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 17:00")

	report, err := svc.MigrateLongLogs(ctx)
	if err != nil {
		t.Fatalf("迁移应成功: %v", err)
	}
	if report.Processed != 1 {
		t.Errorf("期望处理 1 条，实际=%d", report.Processed)
	}
	if len(report.Errors) != 0 {
		t.Errorf("不应有失败行，实际=%v", report.Errors)
	}

	head, _ := mocks.timeLog.GetByID(ctx, longID)
	if head.TimeOut == nil || !head.TimeOut.Equal(mkTime("2026-08-10 17:00")) {
		t.Errorf("首段应截断在 9 小时处，实际=%v", head.TimeOut)
	}
	logs, _ := mocks.timeLog.ListByUser(ctx, "user-1", nil, nil)
	if len(logs) != 2 {
		t.Fatalf("期望拆分后 2 条日志，实际=%d", len(logs))
	}
	tail := logs[1]
	if tail.LogType != model.LogTypeOvertime {
		t.Errorf("尾段应晋升 overtime，实际=%s", tail.LogType)
	}
	if tail.OvertimeStatus == nil || *tail.OvertimeStatus != model.OvertimeStatusPending {
		t.Errorf("尾段应待审批，实际=%v", tail.OvertimeStatus)
	}

	untouched, _ := mocks.timeLog.GetByID(ctx, okID)
	if !untouched.TimeOut.Equal(mkTime("2026-08-10 17:00")) {
		t.Errorf("合规日志不得被改动，实际=%v", untouched.TimeOut)
	}

	// 重跑：拆分后所有日志均在上限内，不再产生变化
	again, err := svc.MigrateLongLogs(ctx)
	if err != nil {
		t.Fatalf("重跑应成功: %v", err)
	}
	if again.Processed != 0 {
		t.Errorf("重跑不应再处理任何日志，实际=%d", again.Processed)
	}
	logs, _ = mocks.timeLog.ListByUser(ctx, "user-1", nil, nil)
	if len(logs) != 2 {
		t.Errorf("重跑后日志数不应变化，实际=%d", len(logs))
	}
}

func TestMigrateLongLogs_RowFailureIsIsolated(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := newCompletionService(repo)
	ctx := context.Background()

	badID := seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 19:00")
	goodID := seedLog(mocks.timeLog, "user-2", model.LogTypeRegular, "2026-08-11 08:00", "2026-08-11 19:00")

	mocks.timeLog.failUpdateID = badID

	report, err := svc.MigrateLongLogs(ctx)
	if err != nil {
		t.Fatalf("单行失败不应中断批次: %v", err)
	}
	if report.Processed != 1 {
		t.Errorf("其余行应照常处理，实际=%d", report.Processed)
	}
	if len(report.Errors) != 1 || report.Errors[0].TimeLogID != badID {
		t.Errorf("失败行应被记录，实际=%v", report.Errors)
	}

	good, _ := mocks.timeLog.GetByID(ctx, goodID)
	if !good.TimeOut.Equal(mkTime("2026-08-11 17:00")) {
		t.Errorf("正常行应完成拆分，实际=%v", good.TimeOut)
	}
}

func TestMigrateLongLogs_ExtendedOvertimeStaysAtTier(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := newCompletionService(repo)
	ctx := context.Background()

	// 延长加班 14 小时，上限 12：尾段不再晋级，仍为 extended_overtime
	seedLog(mocks.timeLog, "user-1", model.LogTypeExtendedOvertime, "2026-08-10 06:00", "2026-08-10 20:00")

	report, err := svc.MigrateLongLogs(ctx)
	if err != nil {
		t.Fatalf("迁移应成功: %v", err)
	}
	if report.Processed != 1 {
		t.Fatalf("期望处理 1 条，实际=%d", report.Processed)
	}

	logs, _ := mocks.timeLog.ListByUser(ctx, "user-1", nil, nil)
	if len(logs) != 2 {
		t.Fatalf("期望 2 条日志，实际=%d", len(logs))
	}
	if logs[1].LogType != model.LogTypeExtendedOvertime {
		t.Errorf("延长加班尾段应保持档位，实际=%s", logs[1].LogType)
	}
}
