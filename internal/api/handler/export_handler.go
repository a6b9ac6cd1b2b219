package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/jayelcee/InternHQ-sub003/internal/model"
	"github.com/jayelcee/InternHQ-sub003/internal/service"
	"github.com/jayelcee/InternHQ-sub003/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportDTR 导出打卡明细 Excel
// GET /api/v1/export/dtr?user_id=xxx&month=2026-08
// 普通用户只能导出自己的；user_id 参数仅管理员可用
func (h *ExportHandler) ExportDTR(c *gin.Context) {
	userID, ok := h.resolveTargetUser(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportDTR(c.Request.Context(), userID, c.Query("month"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, buf.Bytes(), filename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// ExportCalendar 导出打卡会话 iCalendar
// GET /api/v1/export/calendar?user_id=xxx
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	userID, ok := h.resolveTargetUser(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, buf.Bytes(), filename, "text/calendar")
}

// resolveTargetUser 确定导出目标用户：管理员可通过 user_id 指定他人
func (h *ExportHandler) resolveTargetUser(c *gin.Context) (string, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return "", false
	}

	if target := c.Query("user_id"); target != "" && target != userID {
		if role != model.RoleAdmin {
			response.Forbidden(c, 15003, "无权导出他人数据")
			return "", false
		}
		return target, true
	}
	return userID, true
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11005, "用户不存在")
	case errors.Is(err, service.ErrExportNoLogs):
		response.NotFound(c, 15001, "该时间范围内无打卡记录")
	default:
		response.InternalError(c)
	}
}

// writeDownload 设置下载响应头并写入文件内容
func writeDownload(c *gin.Context, data []byte, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", contentType)
	c.Data(http.StatusOK, contentType, data)
}
