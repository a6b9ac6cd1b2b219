package dto

// ── 用户管理模块 DTO ──

// ListUsersQuery 用户列表查询参数（仅管理员）
type ListUsersQuery struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=intern admin"`
}

// UserListResponse 分页用户列表
type UserListResponse struct {
	Total int64          `json:"total"`
	Users []UserResponse `json:"users"`
}

// UpdateUserRequest 更新用户资料
type UpdateUserRequest struct {
	Name         string `json:"name"          binding:"omitempty,min=2,max=50"`
	SchoolID     string `json:"school_id"     binding:"omitempty,uuid"`
	DepartmentID string `json:"department_id" binding:"omitempty,uuid"`
}
