package service

import (
	"go.uber.org/zap"

	"github.com/jayelcee/InternHQ-sub003/config"
	"github.com/jayelcee/InternHQ-sub003/internal/repository"
	"github.com/jayelcee/InternHQ-sub003/pkg/jwt"
	"github.com/jayelcee/InternHQ-sub003/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Lookup     LookupService
	TimeLog    TimeLogService
	Edit       EditRequestService
	Stats      StatsService
	Completion CompletionService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	stats := NewStatsService(repo, &cfg.Policy, logger)
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, rdb, &cfg.Auth, logger),
		User:       NewUserService(repo, logger),
		Lookup:     NewLookupService(repo, logger),
		TimeLog:    NewTimeLogService(repo, logger),
		Edit:       NewEditRequestService(repo, &cfg.Policy, logger),
		Stats:      stats,
		Completion: NewCompletionService(repo, stats, &cfg.Policy, logger),
		Export:     NewExportService(repo, stats, &cfg.Policy, logger),
	}
}
