package handler

import "github.com/amjey/staff-tracker/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Staff     *StaffHandler
	Event     *EventHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Staff:     NewStaffHandler(svc.Dashboard, svc.Roster),
		Event:     NewEventHandler(svc.Dashboard, svc.Event),
		Export:    NewExportHandler(svc.Export),
	}
}
