package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jayelcee/InternHQ-sub003/internal/service"
	"github.com/jayelcee/InternHQ-sub003/pkg/response"
)

// CompletionHandler 结业与迁移模块 HTTP 处理器
type CompletionHandler struct {
	completionSvc service.CompletionService
}

// NewCompletionHandler 创建 CompletionHandler
func NewCompletionHandler(completionSvc service.CompletionService) *CompletionHandler {
	return &CompletionHandler{completionSvc: completionSvc}
}

// GetMyProgram 当前用户实习计划
// GET /api/v1/programs/me
func (h *CompletionHandler) GetMyProgram(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.completionSvc.GetMyProgram(c.Request.Context(), userID)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.OK(c, result)
}

// RequestCompletion 提交结业申请
// POST /api/v1/completion-requests
func (h *CompletionHandler) RequestCompletion(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.completionSvc.RequestCompletion(c.Request.Context(), userID)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.Created(c, result)
}

// List 结业申请列表（仅管理员）
// GET /api/v1/admin/completion-requests
func (h *CompletionHandler) List(c *gin.Context) {
	result, err := h.completionSvc.ListCompletionRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Approve 结业审批通过
// POST /api/v1/admin/completion-requests/:id/approve
func (h *CompletionHandler) Approve(c *gin.Context) {
	h.review(c, true)
}

// Reject 结业驳回
// POST /api/v1/admin/completion-requests/:id/reject
func (h *CompletionHandler) Reject(c *gin.Context) {
	h.review(c, false)
}

func (h *CompletionHandler) review(c *gin.Context, approve bool) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.completionSvc.ReviewCompletion(c.Request.Context(), c.Param("id"), reviewerID, approve)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.OK(c, result)
}

// MigrateLongLogs 超长日志迁移（仅管理员）
// POST /api/v1/admin/migrations/long-logs
func (h *CompletionHandler) MigrateLongLogs(c *gin.Context) {
	result, err := h.completionSvc.MigrateLongLogs(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// handleCompletionError 将业务错误映射为统一响应
func (h *CompletionHandler) handleCompletionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 14001, "实习计划不存在")
	case errors.Is(err, service.ErrCompletionNotEligible):
		response.BadRequest(c, 14002, "累计工时未达到结业要求")
	case errors.Is(err, service.ErrCompletionAlreadyActive):
		response.Conflict(c, 14003, "已存在处理中的结业申请")
	case errors.Is(err, service.ErrCompletionNotFound):
		response.NotFound(c, 14004, "结业申请不存在")
	case errors.Is(err, service.ErrCompletionAlreadyReviewed):
		response.Conflict(c, 14005, "该结业申请已处理")
	default:
		response.InternalError(c)
	}
}
