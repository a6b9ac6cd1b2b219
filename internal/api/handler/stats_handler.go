package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/service"
	"github.com/jayelcee/InternHQ-sub003/pkg/response"
)

// StatsHandler 工时统计模块 HTTP 处理器
type StatsHandler struct {
	statsSvc      service.StatsService
	completionSvc service.CompletionService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService, completionSvc service.CompletionService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc, completionSvc: completionSvc}
}

// GetMyStats 当前用户工时统计
// GET /api/v1/stats/me
func (h *StatsHandler) GetMyStats(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	opts := dto.StatsOptions{
		IncludeEditRequests: c.Query("include_edit_requests") == "true",
	}

	result, err := h.statsSvc.CalculateTimeStatistics(c.Request.Context(), userID, opts)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetUserStats 指定用户工时统计（仅管理员）
// GET /api/v1/admin/stats/users/:id
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	opts := dto.StatsOptions{
		IncludeEditRequests: c.Query("include_edit_requests") == "true",
	}

	result, err := h.statsSvc.CalculateTimeStatistics(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetMyEligibility 当前用户结业资格
// GET /api/v1/stats/me/eligibility
func (h *StatsHandler) GetMyEligibility(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.completionSvc.CheckEligibility(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			response.NotFound(c, 14001, "实习计划不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
