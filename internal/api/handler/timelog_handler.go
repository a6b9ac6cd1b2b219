package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/service"
	"github.com/jayelcee/InternHQ-sub003/pkg/response"
)

// TimeLogHandler 打卡模块 HTTP 处理器
type TimeLogHandler struct {
	timeLogSvc service.TimeLogService
}

// NewTimeLogHandler 创建 TimeLogHandler
func NewTimeLogHandler(timeLogSvc service.TimeLogService) *TimeLogHandler {
	return &TimeLogHandler{timeLogSvc: timeLogSvc}
}

// ClockIn 上班打卡
// POST /api/v1/time-logs/clock-in
func (h *TimeLogHandler) ClockIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timeLogSvc.ClockIn(c.Request.Context(), userID, req.LogType)
	if err != nil {
		if errors.Is(err, service.ErrOpenSessionExists) {
			response.Conflict(c, 12002, "已存在未结束的同类型打卡")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// ClockOut 下班打卡
// POST /api/v1/time-logs/clock-out
func (h *TimeLogHandler) ClockOut(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timeLogSvc.ClockOut(c.Request.Context(), userID, req.LogType)
	if err != nil {
		if errors.Is(err, service.ErrNoOpenSession) {
			response.Conflict(c, 12003, "没有进行中的打卡")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// List 日志列表
// GET /api/v1/time-logs
func (h *TimeLogHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var q dto.ListTimeLogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timeLogSvc.List(c.Request.Context(), userID, role, &q)
	if err != nil {
		if errors.Is(err, service.ErrTimeLogForbidden) {
			response.Forbidden(c, 12004, "无权查看他人打卡记录")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListToday 当日日志
// GET /api/v1/time-logs/today
func (h *TimeLogHandler) ListToday(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.timeLogSvc.ListToday(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
