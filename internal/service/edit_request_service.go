package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/config"
	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/model"
	"github.com/jayelcee/InternHQ-sub003/internal/repository"
)

// ── 工时修改申请模块业务错误 ──

var (
	ErrEditRequestNotFound = errors.New("修改申请不存在")
	ErrEditInvalidTarget   = errors.New("必须指定一条日志或一组连续日志")
	ErrEditNoChanges       = errors.New("必须至少提供一个修改后的时间")
	ErrEditTimeOrder       = errors.New("结束时间不能早于开始时间")
	ErrEditAlreadyPending  = errors.New("该日志已有挂起的修改申请")
	ErrEditAlreadyReviewed = errors.New("该申请已处理")
	ErrEditForbidden       = errors.New("无权操作该修改申请")
	ErrEditIsContinuous    = errors.New("连续会话申请须按组操作")
	ErrEditMixedUsers      = errors.New("连续会话日志必须属于同一用户")
)

// EditRequestService 工时修改申请业务接口
//
// 状态机: pending → approved / rejected；approved/rejected → pending（撤销）。
// 连续会话编辑跨多条日志，审批/驳回/撤销按组整体执行（全有或全无）。
type EditRequestService interface {
	// Submit 提交申请。管理员替他人提交时直接走先提交后审批的快速通道
	Submit(ctx context.Context, callerID, callerRole string, req *dto.SubmitEditRequest) ([]dto.EditRequestResponse, error)
	GetByID(ctx context.Context, callerID, callerRole, id string) (*dto.EditRequestResponse, error)
	List(ctx context.Context, callerID, callerRole string, q *dto.ListEditRequestsQuery) ([]dto.EditRequestResponse, error)
	Approve(ctx context.Context, requestID, reviewerID string) (*dto.EditRequestResponse, error)
	Reject(ctx context.Context, requestID, reviewerID string) (*dto.EditRequestResponse, error)
	// Revert 把日志时间精确还原为提交时快照并让申请回到 pending；对已是 pending 的申请幂等
	Revert(ctx context.Context, requestID, reviewerID string) (*dto.EditRequestResponse, error)
	ApproveGroup(ctx context.Context, groupID, reviewerID string) ([]dto.EditRequestResponse, error)
	RejectGroup(ctx context.Context, groupID, reviewerID string) ([]dto.EditRequestResponse, error)
	RevertGroup(ctx context.Context, groupID, reviewerID string) ([]dto.EditRequestResponse, error)
}

type editRequestService struct {
	repo   *repository.Repository
	policy *config.PolicyConfig
	logger *zap.Logger
}

// NewEditRequestService 创建 EditRequestService 实例
func NewEditRequestService(repo *repository.Repository, policy *config.PolicyConfig, logger *zap.Logger) EditRequestService {
	return &editRequestService{repo: repo, policy: policy, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *editRequestService) Submit(ctx context.Context, callerID, callerRole string, req *dto.SubmitEditRequest) ([]dto.EditRequestResponse, error) {
	// 任何状态写入前先做全部校验
	if req.RequestedTimeIn == nil && req.RequestedTimeOut == nil {
		return nil, ErrEditNoChanges
	}
	if req.RequestedTimeIn != nil && req.RequestedTimeOut != nil &&
		req.RequestedTimeOut.Before(*req.RequestedTimeIn) {
		return nil, ErrEditTimeOrder
	}

	single := req.LogID != ""
	continuous := len(req.LogIDs) > 0
	if single == continuous {
		return nil, ErrEditInvalidTarget
	}
	if continuous && len(req.LogIDs) < 2 {
		return nil, ErrEditInvalidTarget
	}

	if single {
		return s.submitSingle(ctx, callerID, callerRole, req)
	}
	return s.submitContinuous(ctx, callerID, callerRole, req)
}

func (s *editRequestService) submitSingle(ctx context.Context, callerID, callerRole string, req *dto.SubmitEditRequest) ([]dto.EditRequestResponse, error) {
	log, err := s.repo.TimeLog.GetByID(ctx, req.LogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeLogNotFound
		}
		s.logger.Error("查询打卡记录失败", zap.String("time_log_id", req.LogID), zap.Error(err))
		return nil, err
	}

	if err := s.checkSubmitAllowed(ctx, callerID, callerRole, log.UserID, []string{log.TimeLogID}); err != nil {
		return nil, err
	}

	// 快照当前时间，撤销时据此精确还原
	row := &model.EditRequest{
		TimeLogID:        log.TimeLogID,
		RequestedBy:      callerID,
		RequestedTimeIn:  req.RequestedTimeIn,
		RequestedTimeOut: req.RequestedTimeOut,
		OriginalTimeIn:   log.TimeIn,
		OriginalTimeOut:  cloneTime(log.TimeOut),
		Status:           model.EditRequestStatusPending,
		Reason:           req.Reason,
	}
	if err := s.repo.Edit.Create(ctx, row); err != nil {
		s.logger.Error("创建修改申请失败", zap.Error(err))
		return nil, err
	}

	// 管理员替他人修改：提交后立即审批，管理员同时作为申请人与审批人
	if callerRole == model.RoleAdmin && log.UserID != callerID {
		resp, err := s.Approve(ctx, row.EditRequestID, callerID)
		if err != nil {
			return nil, err
		}
		return []dto.EditRequestResponse{*resp}, nil
	}

	return []dto.EditRequestResponse{toEditRequestResponse(row)}, nil
}

func (s *editRequestService) submitContinuous(ctx context.Context, callerID, callerRole string, req *dto.SubmitEditRequest) ([]dto.EditRequestResponse, error) {
	logs := make([]*model.TimeLog, 0, len(req.LogIDs))
	for _, id := range req.LogIDs {
		log, err := s.repo.TimeLog.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTimeLogNotFound
			}
			s.logger.Error("查询打卡记录失败", zap.String("time_log_id", id), zap.Error(err))
			return nil, err
		}
		logs = append(logs, log)
	}

	owner := logs[0].UserID
	for _, log := range logs {
		if log.UserID != owner {
			return nil, ErrEditMixedUsers
		}
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].TimeIn.Before(logs[j].TimeIn) })

	affected := make(model.UUIDArray, 0, len(logs))
	for _, log := range logs {
		affected = append(affected, log.TimeLogID)
	}

	if err := s.checkSubmitAllowed(ctx, callerID, callerRole, owner, affected); err != nil {
		return nil, err
	}

	// 组内每条日志一行申请，共享 group_id；
	// 请求的开始时间只作用于首条、结束时间只作用于末条，组内衔接边界保持不变
	groupID := uuid.New().String()
	rows := make([]model.EditRequest, 0, len(logs))
	for i, log := range logs {
		row := model.EditRequest{
			TimeLogID:           log.TimeLogID,
			RequestedBy:         callerID,
			OriginalTimeIn:      log.TimeIn,
			OriginalTimeOut:     cloneTime(log.TimeOut),
			Status:              model.EditRequestStatusPending,
			IsContinuousSession: true,
			GroupID:             &groupID,
			AffectedLogIDs:      affected,
			Reason:              req.Reason,
		}
		if i == 0 {
			row.RequestedTimeIn = req.RequestedTimeIn
		}
		if i == len(logs)-1 {
			row.RequestedTimeOut = req.RequestedTimeOut
		}
		rows = append(rows, row)
	}

	if err := s.repo.Edit.CreateBatch(ctx, rows); err != nil {
		s.logger.Error("创建连续会话修改申请失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	if callerRole == model.RoleAdmin && owner != callerID {
		return s.ApproveGroup(ctx, groupID, callerID)
	}

	result := make([]dto.EditRequestResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toEditRequestResponse(&rows[i]))
	}
	return result, nil
}

// checkSubmitAllowed 所有权与重复提交检查
func (s *editRequestService) checkSubmitAllowed(ctx context.Context, callerID, callerRole, ownerID string, logIDs []string) error {
	if callerID != ownerID && callerRole != model.RoleAdmin {
		return ErrEditForbidden
	}

	pending, err := s.repo.Edit.ListPendingByUser(ctx, ownerID)
	if err != nil {
		s.logger.Error("查询挂起申请失败", zap.String("user_id", ownerID), zap.Error(err))
		return err
	}
	for i := range pending {
		for _, id := range logIDs {
			if pending[i].TimeLogID == id {
				return ErrEditAlreadyPending
			}
		}
	}
	return nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *editRequestService) GetByID(ctx context.Context, callerID, callerRole, id string) (*dto.EditRequestResponse, error) {
	req, err := s.repo.Edit.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEditRequestNotFound
		}
		s.logger.Error("查询修改申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 非管理员只能看自己日志上的申请
	if callerRole != model.RoleAdmin {
		log, err := s.repo.TimeLog.GetByID(ctx, req.TimeLogID)
		if err != nil {
			s.logger.Error("查询修改申请关联日志失败", zap.String("time_log_id", req.TimeLogID), zap.Error(err))
			return nil, err
		}
		if log.UserID != callerID {
			return nil, ErrEditForbidden
		}
	}

	resp := toEditRequestResponse(req)
	return &resp, nil
}

func (s *editRequestService) List(ctx context.Context, callerID, callerRole string, q *dto.ListEditRequestsQuery) ([]dto.EditRequestResponse, error) {
	userID := q.UserID
	// 非管理员只能看自己日志上的申请
	if callerRole != model.RoleAdmin {
		userID = callerID
	}

	reqs, err := s.repo.Edit.List(ctx, q.Status, userID)
	if err != nil {
		s.logger.Error("查询修改申请列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EditRequestResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, toEditRequestResponse(&reqs[i]))
	}
	return result, nil
}

// ────────────────────── Approve ──────────────────────

func (s *editRequestService) Approve(ctx context.Context, requestID, reviewerID string) (*dto.EditRequestResponse, error) {
	req, err := s.loadSingle(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.IsReviewed() {
		return nil, ErrEditAlreadyReviewed
	}

	log, err := s.loadLog(ctx, req.TimeLogID)
	if err != nil {
		return nil, err
	}

	applyRequestedTimes(req, log)
	if log.TimeOut != nil && log.TimeOut.Before(log.TimeIn) {
		return nil, ErrEditTimeOrder
	}

	// 新时长越过正班上限时按迁移规则拆分出加班尾段
	var newLogs []*model.TimeLog
	if tail := buildLogSplit(log, s.policy); tail != nil {
		newLogs = append(newLogs, tail)
		req.SplitLogID = &tail.TimeLogID
	}

	markReviewed(req, reviewerID, model.EditRequestStatusApproved)

	if err := s.repo.Edit.ApplyReviewOutcome(ctx, []*model.EditRequest{req}, []*model.TimeLog{log}, newLogs, nil); err != nil {
		s.logger.Error("审批修改申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}

	resp := toEditRequestResponse(req)
	return &resp, nil
}

func (s *editRequestService) ApproveGroup(ctx context.Context, groupID, reviewerID string) ([]dto.EditRequestResponse, error) {
	reqs, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if req.IsReviewed() {
			return nil, ErrEditAlreadyReviewed
		}
	}

	logs := make([]*model.TimeLog, 0, len(reqs))
	for _, req := range reqs {
		log, err := s.loadLog(ctx, req.TimeLogID)
		if err != nil {
			return nil, err
		}
		applyRequestedTimes(req, log)
		if log.TimeOut != nil && log.TimeOut.Before(log.TimeIn) {
			return nil, ErrEditTimeOrder
		}
		logs = append(logs, log)
		markReviewed(req, reviewerID, model.EditRequestStatusApproved)
	}

	// 组内所有日志在一个事务里改写，任一失败整组回滚
	if err := s.repo.Edit.ApplyReviewOutcome(ctx, reqs, logs, nil, nil); err != nil {
		s.logger.Error("审批连续会话申请失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	return toEditRequestResponses(reqs), nil
}

// ────────────────────── Reject ──────────────────────

func (s *editRequestService) Reject(ctx context.Context, requestID, reviewerID string) (*dto.EditRequestResponse, error) {
	req, err := s.loadSingle(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.IsReviewed() {
		return nil, ErrEditAlreadyReviewed
	}

	// 驳回不触碰日志本身
	markReviewed(req, reviewerID, model.EditRequestStatusRejected)
	if err := s.repo.Edit.Update(ctx, req); err != nil {
		s.logger.Error("驳回修改申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}

	resp := toEditRequestResponse(req)
	return &resp, nil
}

func (s *editRequestService) RejectGroup(ctx context.Context, groupID, reviewerID string) ([]dto.EditRequestResponse, error) {
	reqs, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if req.IsReviewed() {
			return nil, ErrEditAlreadyReviewed
		}
		markReviewed(req, reviewerID, model.EditRequestStatusRejected)
	}

	if err := s.repo.Edit.ApplyReviewOutcome(ctx, reqs, nil, nil, nil); err != nil {
		s.logger.Error("驳回连续会话申请失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	return toEditRequestResponses(reqs), nil
}

// ────────────────────── Revert ──────────────────────

func (s *editRequestService) Revert(ctx context.Context, requestID, reviewerID string) (*dto.EditRequestResponse, error) {
	req, err := s.loadSingle(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// 幂等：申请已在 pending 时撤销是成功的空操作
	if req.Status == model.EditRequestStatusPending {
		resp := toEditRequestResponse(req)
		return &resp, nil
	}

	log, deleteIDs, err := s.prepareRevert(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Edit.ApplyReviewOutcome(ctx, []*model.EditRequest{req}, []*model.TimeLog{log}, nil, deleteIDs); err != nil {
		s.logger.Error("撤销修改申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}

	resp := toEditRequestResponse(req)
	return &resp, nil
}

func (s *editRequestService) RevertGroup(ctx context.Context, groupID, reviewerID string) ([]dto.EditRequestResponse, error) {
	reqs, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var (
		logs      []*model.TimeLog
		deleteIDs []string
		toUpdate  []*model.EditRequest
	)
	for _, req := range reqs {
		if req.Status == model.EditRequestStatusPending {
			continue // 幂等跳过
		}
		log, del, err := s.prepareRevert(ctx, req)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
		deleteIDs = append(deleteIDs, del...)
		toUpdate = append(toUpdate, req)
	}

	if len(toUpdate) > 0 {
		if err := s.repo.Edit.ApplyReviewOutcome(ctx, toUpdate, logs, nil, deleteIDs); err != nil {
			s.logger.Error("撤销连续会话申请失败", zap.String("group_id", groupID), zap.Error(err))
			return nil, err
		}
	}

	return toEditRequestResponses(reqs), nil
}

// prepareRevert 把日志时间还原为提交时快照，并收集需删除的拆分日志
func (s *editRequestService) prepareRevert(ctx context.Context, req *model.EditRequest) (*model.TimeLog, []string, error) {
	log, err := s.loadLog(ctx, req.TimeLogID)
	if err != nil {
		return nil, nil, err
	}

	log.TimeIn = req.OriginalTimeIn
	log.TimeOut = cloneTime(req.OriginalTimeOut)
	if log.TimeOut == nil {
		log.Status = model.LogStatusPending
	}

	var deleteIDs []string
	if req.SplitLogID != nil {
		deleteIDs = append(deleteIDs, *req.SplitLogID)
		req.SplitLogID = nil
	}

	req.Status = model.EditRequestStatusPending
	req.ReviewedBy = nil
	req.ReviewedAt = nil

	return log, deleteIDs, nil
}

// ── 内部辅助方法 ──

func (s *editRequestService) loadSingle(ctx context.Context, requestID string) (*model.EditRequest, error) {
	req, err := s.repo.Edit.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEditRequestNotFound
		}
		s.logger.Error("查询修改申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}
	if req.IsContinuousSession {
		return nil, ErrEditIsContinuous
	}
	return req, nil
}

func (s *editRequestService) loadGroup(ctx context.Context, groupID string) ([]*model.EditRequest, error) {
	rows, err := s.repo.Edit.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询申请组失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEditRequestNotFound
	}
	reqs := make([]*model.EditRequest, 0, len(rows))
	for i := range rows {
		reqs = append(reqs, &rows[i])
	}
	return reqs, nil
}

func (s *editRequestService) loadLog(ctx context.Context, logID string) (*model.TimeLog, error) {
	log, err := s.repo.TimeLog.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeLogNotFound
		}
		s.logger.Error("查询打卡记录失败", zap.String("time_log_id", logID), zap.Error(err))
		return nil, err
	}
	return log, nil
}

func applyRequestedTimes(req *model.EditRequest, log *model.TimeLog) {
	if req.RequestedTimeIn != nil {
		log.TimeIn = *req.RequestedTimeIn
	}
	if req.RequestedTimeOut != nil {
		log.TimeOut = cloneTime(req.RequestedTimeOut)
		log.Status = model.LogStatusCompleted
	}
}

func markReviewed(req *model.EditRequest, reviewerID, status string) {
	now := time.Now()
	req.Status = status
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &now
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func toEditRequestResponse(req *model.EditRequest) dto.EditRequestResponse {
	return dto.EditRequestResponse{
		ID:                  req.EditRequestID,
		TimeLogID:           req.TimeLogID,
		RequestedBy:         req.RequestedBy,
		RequestedTimeIn:     req.RequestedTimeIn,
		RequestedTimeOut:    req.RequestedTimeOut,
		OriginalTimeIn:      req.OriginalTimeIn,
		OriginalTimeOut:     req.OriginalTimeOut,
		Status:              req.Status,
		ReviewedBy:          req.ReviewedBy,
		ReviewedAt:          req.ReviewedAt,
		IsContinuousSession: req.IsContinuousSession,
		GroupID:             req.GroupID,
		AffectedLogIDs:      req.AffectedLogIDs,
		Reason:              req.Reason,
		CreatedAt:           req.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func toEditRequestResponses(reqs []*model.EditRequest) []dto.EditRequestResponse {
	result := make([]dto.EditRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		result = append(result, toEditRequestResponse(req))
	}
	return result
}
