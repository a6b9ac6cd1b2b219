package service

import (
	"time"

	"github.com/jayelcee/InternHQ-sub003/config"
	"github.com/jayelcee/InternHQ-sub003/internal/model"
)

// ── 工时计算核心（纯函数，无副作用）──

// DurationMode 时长计算模式
type DurationMode string

const (
	// DurationAccurate 精确模式：按策略封顶，用于正式合计与文档
	DurationAccurate DurationMode = "accurate"
	// DurationRaw 原始模式：不封顶，用于管理员复核实际工作时长
	DurationRaw DurationMode = "raw"
)

// SessionDuration 一个连续会话的时长分解结果
type SessionDuration struct {
	RegularHours  float64
	OvertimeHours float64
	// ApprovedOvertimeHours 仅已批准日志贡献的加班时数。
	// 同一会话可能混合已批准与被驳回的加班日志，计入进度时按条归集
	ApprovedOvertimeHours float64
	// OverflowHours 正班超出每日上限的部分。不悄悄丢弃，待迁移拆分
	OverflowHours  float64
	OvertimeStatus *string
	IsActive       bool
}

// floorHours 将时长向下取整到整分钟后折算为小时
// 不足一分钟的尾数一律舍弃，避免多记工时
func floorHours(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d/time.Minute) / 60.0
}

// ComputeSessionDuration 计算一个会话（按时间排好序的日志组）的正班/加班时长
//
// asOf 是进行中会话的计时基准：未关闭的日志以 asOf 为结束时刻计算，
// 这是时长唯一依赖"当前时间"的场景，由调用方显式传入以保证可测性。
// priorRegularHoursToday 为当日此前会话已计入的正班时数，
// 用于跨会话累计封顶：当日正班合计不得超过 policy.RequiredDailyHours。
func ComputeSessionDuration(logs []model.TimeLog, asOf time.Time, priorRegularHoursToday float64, policy *config.PolicyConfig, mode DurationMode) SessionDuration {
	var out SessionDuration

	regUsed := priorRegularHoursToday
	otUsed := 0.0

	for i := range logs {
		log := &logs[i]

		end := asOf
		if log.TimeOut != nil {
			end = *log.TimeOut
		} else {
			out.IsActive = true
		}
		elapsed := floorHours(end.Sub(log.TimeIn))

		switch log.LogType {
		case model.LogTypeOvertime, model.LogTypeExtendedOvertime:
			credit := elapsed
			if mode == DurationAccurate {
				cap := policy.MaxOvertimeHours
				if log.LogType == model.LogTypeExtendedOvertime {
					cap = policy.ExtendedOvertimeCap()
				}
				avail := cap - otUsed
				if avail < 0 {
					avail = 0
				}
				if credit > avail {
					credit = avail
				}
			}
			out.OvertimeHours += credit
			otUsed += credit
			// 被驳回的加班仍计算并展示时长；进度归集只认逐条的已批准时数
			if log.OvertimeStatus != nil {
				out.OvertimeStatus = log.OvertimeStatus
				if *log.OvertimeStatus == model.OvertimeStatusApproved {
					out.ApprovedOvertimeHours += credit
				}
			}

		default: // regular
			if mode == DurationRaw {
				out.RegularHours += elapsed
				continue
			}
			avail := policy.RequiredDailyHours - regUsed
			if avail < 0 {
				avail = 0
			}
			credit := elapsed
			if credit > avail {
				credit = avail
			}
			out.RegularHours += credit
			regUsed += credit
			out.OverflowHours += elapsed - credit
		}
	}

	return out
}
