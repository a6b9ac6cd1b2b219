package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/model"
)

func TestTimeLogService_ClockInAndOut(t *testing.T) {
	repo, _ := newTestRepo()
	svc := NewTimeLogService(repo, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.ClockIn(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("上班打卡应成功: %v", err)
	}
	if resp.LogType != model.LogTypeRegular {
		t.Errorf("默认档位应为 regular，实际=%s", resp.LogType)
	}
	if resp.Status != model.LogStatusPending {
		t.Errorf("进行中日志状态应为 pending，实际=%s", resp.Status)
	}
	if resp.TimeOut != nil {
		t.Errorf("上班打卡不应有 time_out，实际=%v", resp.TimeOut)
	}

	out, err := svc.ClockOut(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("下班打卡应成功: %v", err)
	}
	if out.Status != model.LogStatusCompleted {
		t.Errorf("下班后状态应为 completed，实际=%s", out.Status)
	}
	if out.TimeOut == nil {
		t.Fatal("下班后应有 time_out")
	}
	if out.TimeOut.Before(out.TimeIn) {
		t.Error("time_out 不应早于 time_in")
	}
}

func TestTimeLogService_DoubleClockInRejected(t *testing.T) {
	repo, _ := newTestRepo()
	svc := NewTimeLogService(repo, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.ClockIn(ctx, "user-1", model.LogTypeRegular); err != nil {
		t.Fatalf("首次打卡应成功: %v", err)
	}
	if _, err := svc.ClockIn(ctx, "user-1", model.LogTypeRegular); !errors.Is(err, ErrOpenSessionExists) {
		t.Errorf("重复打卡期望 ErrOpenSessionExists，实际=%v", err)
	}
}

func TestTimeLogService_DifferentTiersCoexist(t *testing.T) {
	// 同类型互斥，不同档位可并存（正班进行中仍可开加班）
	repo, _ := newTestRepo()
	svc := NewTimeLogService(repo, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.ClockIn(ctx, "user-1", model.LogTypeRegular); err != nil {
		t.Fatalf("正班打卡应成功: %v", err)
	}
	resp, err := svc.ClockIn(ctx, "user-1", model.LogTypeOvertime)
	if err != nil {
		t.Fatalf("加班打卡应成功: %v", err)
	}
	if resp.OvertimeStatus == nil || *resp.OvertimeStatus != model.OvertimeStatusPending {
		t.Errorf("加班档打卡应默认待审批，实际=%v", resp.OvertimeStatus)
	}
}

func TestTimeLogService_ClockOutWithoutOpenSession(t *testing.T) {
	repo, _ := newTestRepo()
	svc := NewTimeLogService(repo, zap.NewNop())

	if _, err := svc.ClockOut(context.Background(), "user-1", ""); !errors.Is(err, ErrNoOpenSession) {
		t.Errorf("期望 ErrNoOpenSession，实际=%v", err)
	}
}

func TestTimeLogService_ListPermission(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := NewTimeLogService(repo, zap.NewNop())
	ctx := context.Background()

	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 17:00")

	// 实习生查询他人日志被拒
	_, err := svc.List(ctx, "user-2", model.RoleIntern, &dto.ListTimeLogsQuery{UserID: "user-1"})
	if !errors.Is(err, ErrTimeLogForbidden) {
		t.Errorf("期望 ErrTimeLogForbidden，实际=%v", err)
	}

	// 管理员可查询任何人
	logs, err := svc.List(ctx, "admin-1", model.RoleAdmin, &dto.ListTimeLogsQuery{UserID: "user-1"})
	if err != nil {
		t.Fatalf("管理员查询应成功: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("期望日志数=1，实际=%d", len(logs))
	}

	// 本人查询自己无需权限
	own, err := svc.List(ctx, "user-1", model.RoleIntern, &dto.ListTimeLogsQuery{})
	if err != nil {
		t.Fatalf("本人查询应成功: %v", err)
	}
	if len(own) != 1 {
		t.Errorf("期望日志数=1，实际=%d", len(own))
	}
}

func TestTimeLogService_ListDateRangeInclusive(t *testing.T) {
	repo, mocks := newTestRepo()
	svc := NewTimeLogService(repo, zap.NewNop())
	ctx := context.Background()

	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-10 08:00", "2026-08-10 17:00")
	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-11 08:00", "2026-08-11 17:00")
	seedLog(mocks.timeLog, "user-1", model.LogTypeRegular, "2026-08-12 08:00", "2026-08-12 17:00")

	// to 为闭区间：2026-08-11 当天的日志应包含在内
	logs, err := svc.List(ctx, "user-1", model.RoleIntern, &dto.ListTimeLogsQuery{
		From: "2026-08-11",
		To:   "2026-08-11",
	})
	if err != nil {
		t.Fatalf("查询应成功: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("期望日志数=1，实际=%d", len(logs))
	}
	if !logs[0].TimeIn.Equal(mkTime("2026-08-11 08:00")) {
		t.Errorf("期望命中 08-11 的日志，实际=%v", logs[0].TimeIn)
	}
}
