package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jayelcee/InternHQ-sub003/internal/service"
	"github.com/jayelcee/InternHQ-sub003/pkg/response"
)

// LookupHandler 学校/部门字典 HTTP 处理器
type LookupHandler struct {
	lookupSvc service.LookupService
}

// NewLookupHandler 创建 LookupHandler
func NewLookupHandler(lookupSvc service.LookupService) *LookupHandler {
	return &LookupHandler{lookupSvc: lookupSvc}
}

// ListSchools 学校列表
// GET /api/v1/schools
func (h *LookupHandler) ListSchools(c *gin.Context) {
	result, err := h.lookupSvc.ListSchools(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ListDepartments 部门列表
// GET /api/v1/departments
func (h *LookupHandler) ListDepartments(c *gin.Context) {
	result, err := h.lookupSvc.ListDepartments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
