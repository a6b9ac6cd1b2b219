package handler

import "github.com/jayelcee/InternHQ-sub003/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Lookup     *LookupHandler
	TimeLog    *TimeLogHandler
	Edit       *EditRequestHandler
	Stats      *StatsHandler
	Completion *CompletionHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Lookup:     NewLookupHandler(svc.Lookup),
		TimeLog:    NewTimeLogHandler(svc.TimeLog),
		Edit:       NewEditRequestHandler(svc.Edit),
		Stats:      NewStatsHandler(svc.Stats, svc.Completion),
		Completion: NewCompletionHandler(svc.Completion),
		Export:     NewExportHandler(svc.Export),
	}
}
