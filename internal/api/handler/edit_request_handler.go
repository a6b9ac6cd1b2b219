package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/service"
	pkgerrors "github.com/jayelcee/InternHQ-sub003/pkg/errors"
	"github.com/jayelcee/InternHQ-sub003/pkg/response"
)

// EditRequestHandler 工时修改申请模块 HTTP 处理器
type EditRequestHandler struct {
	editSvc service.EditRequestService
}

// NewEditRequestHandler 创建 EditRequestHandler
func NewEditRequestHandler(editSvc service.EditRequestService) *EditRequestHandler {
	return &EditRequestHandler{editSvc: editSvc}
}

// Submit 提交修改申请
// POST /api/v1/edit-requests
func (h *EditRequestHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.SubmitEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.editSvc.Submit(c.Request.Context(), userID, role, &req)
	if err != nil {
		h.handleEditError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 申请详情
// GET /api/v1/edit-requests/:id
func (h *EditRequestHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.editSvc.GetByID(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		h.handleEditError(c, err)
		return
	}
	response.OK(c, result)
}

// List 申请列表
// GET /api/v1/edit-requests
func (h *EditRequestHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var q dto.ListEditRequestsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.editSvc.List(c.Request.Context(), userID, role, &q)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Approve 审批通过
// POST /api/v1/admin/edit-requests/:id/approve
func (h *EditRequestHandler) Approve(c *gin.Context) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.editSvc.Approve(c.Request.Context(), c.Param("id"), reviewerID)
	if err != nil {
		h.handleEditError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 驳回
// POST /api/v1/admin/edit-requests/:id/reject
func (h *EditRequestHandler) Reject(c *gin.Context) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.editSvc.Reject(c.Request.Context(), c.Param("id"), reviewerID)
	if err != nil {
		h.handleEditError(c, err)
		return
	}

	response.OK(c, result)
}

// Revert 撤销已处理的申请（回到 pending，幂等）
// POST /api/v1/admin/edit-requests/:id/revert
func (h *EditRequestHandler) Revert(c *gin.Context) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.editSvc.Revert(c.Request.Context(), c.Param("id"), reviewerID)
	if err != nil {
		h.handleEditError(c, err)
		return
	}

	response.OK(c, result)
}

// ApproveGroup 整组审批通过
// POST /api/v1/admin/edit-requests/groups/:group_id/approve
func (h *EditRequestHandler) ApproveGroup(c *gin.Context) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.editSvc.ApproveGroup(c.Request.Context(), c.Param("group_id"), reviewerID)
	if err != nil {
		h.handleEditError(c, err)
		return
	}

	response.OK(c, result)
}

// RejectGroup 整组驳回
// POST /api/v1/admin/edit-requests/groups/:group_id/reject
func (h *EditRequestHandler) RejectGroup(c *gin.Context) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.editSvc.RejectGroup(c.Request.Context(), c.Param("group_id"), reviewerID)
	if err != nil {
		h.handleEditError(c, err)
		return
	}

	response.OK(c, result)
}

// RevertGroup 整组撤销
// POST /api/v1/admin/edit-requests/groups/:group_id/revert
func (h *EditRequestHandler) RevertGroup(c *gin.Context) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.editSvc.RevertGroup(c.Request.Context(), c.Param("group_id"), reviewerID)
	if err != nil {
		h.handleEditError(c, err)
		return
	}

	response.OK(c, result)
}

// handleEditError 将业务错误映射为统一响应
func (h *EditRequestHandler) handleEditError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEditRequestNotFound):
		response.NotFound(c, 13001, "修改申请不存在")
	case errors.Is(err, service.ErrTimeLogNotFound):
		response.NotFound(c, 12001, "打卡记录不存在")
	case errors.Is(err, service.ErrEditInvalidTarget):
		response.BadRequest(c, 13002, "必须指定一条日志或一组连续日志")
	case errors.Is(err, service.ErrEditNoChanges):
		response.BadRequest(c, 13003, "必须至少提供一个修改后的时间")
	case errors.Is(err, service.ErrEditTimeOrder):
		response.BadRequest(c, 13004, "结束时间不能早于开始时间")
	case errors.Is(err, service.ErrEditAlreadyPending):
		response.Conflict(c, 13005, "该日志已有挂起的修改申请")
	case errors.Is(err, service.ErrEditAlreadyReviewed):
		response.Conflict(c, 13006, "该申请已处理")
	case errors.Is(err, service.ErrEditForbidden):
		response.Forbidden(c, 13007, "无权操作该修改申请")
	case errors.Is(err, service.ErrEditIsContinuous):
		response.BadRequest(c, 13008, "连续会话申请须按组操作")
	case errors.Is(err, service.ErrEditMixedUsers):
		response.BadRequest(c, 13009, "连续会话日志必须属于同一用户")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13010, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
