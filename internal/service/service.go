package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/store"
	"github.com/amjey/staff-tracker/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Dashboard DashboardService
	Roster    RosterService
	Event     EventService
	Auth      AuthService
	Export    ExportService

	gw     *store.Gateway
	sheets config.StoreConfig
}

// NewService 创建 Service 聚合
// jwtMgr 为 nil 时不创建 AuthService（命令行工具不需要会话）
func NewService(
	cfg *config.Config,
	gw *store.Gateway,
	jwtMgr *jwt.Manager,
	revoked RevocationStore,
	logger *zap.Logger,
) *Service {
	dashboard := NewDashboardService(cfg, gw, logger)
	svc := &Service{
		Dashboard: dashboard,
		Roster:    NewRosterService(cfg, gw, logger),
		Event:     NewEventService(cfg, gw, logger),
		Export:    NewExportService(dashboard, logger),
		gw:        gw,
		sheets:    cfg.Store,
	}
	if jwtMgr != nil {
		svc.Auth = NewAuthService(cfg, jwtMgr, revoked, logger)
	}
	return svc
}

// Bootstrap 写入驱动支持时，为空的名册与活动日志写入规范表头
func (s *Service) Bootstrap(ctx context.Context) error {
	if !s.gw.Writable() {
		return nil
	}
	if err := s.gw.EnsureSheet(ctx, s.sheets.StaffSheet, model.StaffColumns); err != nil {
		return err
	}
	return s.gw.EnsureSheet(ctx, s.sheets.EventSheet, model.EventColumns)
}
