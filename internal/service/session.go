package service

import (
	"sort"
	"time"

	"github.com/jayelcee/InternHQ-sub003/internal/model"
)

// Session 派生的连续工作段：一条或多条首尾相接的日志
// 仅在一次统计计算期间存在，不落库
type Session struct {
	Logs         []model.TimeLog
	TimeIn       time.Time
	TimeOut      *time.Time // 最后一条日志未关闭时为 nil
	SessionType  string     // 首条日志的类型
	IsContinuous bool
	IsActive     bool
}

// GroupIntoSessions 把同一天的日志按物理连续工作段分组，输出保持时间升序
//
// 两条相邻日志归入同一会话，当且仅当：
//  1. 前者的 time_out 与后者的 time_in 相差不超过 tolerance，
//     且二者构成档位接续（regular→overtime 或 overtime→extended_overtime）；
//  2. 或二者通过连续会话编辑元数据共享同一组 ID（continuousGroups）。
func GroupIntoSessions(logs []model.TimeLog, tolerance time.Duration, continuousGroups map[string]string) []Session {
	if len(logs) == 0 {
		return nil
	}

	sorted := make([]model.TimeLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeIn.Before(sorted[j].TimeIn)
	})

	var sessions []Session
	current := []model.TimeLog{sorted[0]}

	for i := 1; i < len(sorted); i++ {
		prev := &current[len(current)-1]
		next := &sorted[i]
		if sameSession(prev, next, tolerance, continuousGroups) {
			current = append(current, *next)
			continue
		}
		sessions = append(sessions, buildSession(current))
		current = []model.TimeLog{*next}
	}
	sessions = append(sessions, buildSession(current))

	return sessions
}

func sameSession(prev, next *model.TimeLog, tolerance time.Duration, groups map[string]string) bool {
	if gp, ok := groups[prev.TimeLogID]; ok && gp != "" && gp == groups[next.TimeLogID] {
		return true
	}
	if prev.TimeOut == nil {
		return false
	}
	gap := next.TimeIn.Sub(*prev.TimeOut)
	if gap < 0 {
		gap = -gap
	}
	if gap > tolerance {
		return false
	}
	return tierContinuation(prev.LogType, next.LogType)
}

// tierContinuation 档位接续判定：正班接加班、加班接延长加班
func tierContinuation(a, b string) bool {
	switch {
	case a == model.LogTypeRegular && b == model.LogTypeOvertime:
		return true
	case a == model.LogTypeOvertime && b == model.LogTypeExtendedOvertime:
		return true
	default:
		return false
	}
}

func buildSession(logs []model.TimeLog) Session {
	last := logs[len(logs)-1]
	return Session{
		Logs:         logs,
		TimeIn:       logs[0].TimeIn,
		TimeOut:      last.TimeOut,
		SessionType:  logs[0].LogType,
		IsContinuous: len(logs) > 1,
		IsActive:     last.TimeOut == nil,
	}
}
