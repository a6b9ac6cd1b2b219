package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/repository"
)

// LookupService 学校/部门字典查询接口
type LookupService interface {
	ListSchools(ctx context.Context) ([]dto.SchoolResponse, error)
	ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error)
}

type lookupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLookupService 创建 LookupService 实例
func NewLookupService(repo *repository.Repository, logger *zap.Logger) LookupService {
	return &lookupService{repo: repo, logger: logger}
}

func (s *lookupService) ListSchools(ctx context.Context) ([]dto.SchoolResponse, error) {
	schools, err := s.repo.School.List(ctx)
	if err != nil {
		s.logger.Error("查询学校列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SchoolResponse, 0, len(schools))
	for _, school := range schools {
		result = append(result, dto.SchoolResponse{ID: school.SchoolID, Name: school.Name})
	}
	return result, nil
}

func (s *lookupService) ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error) {
	departments, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("查询部门列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentResponse, 0, len(departments))
	for _, dept := range departments {
		result = append(result, dto.DepartmentResponse{ID: dept.DepartmentID, Name: dept.Name})
	}
	return result, nil
}
