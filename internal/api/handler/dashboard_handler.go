package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amjey/staff-tracker/internal/service"
	"github.com/amjey/staff-tracker/pkg/response"
)

// DashboardHandler 总览、排行榜与缓存刷新
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Summary 总览统计
// GET /api/v1/dashboard/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	result, err := h.dashboardSvc.Summary(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Leaderboard 出勤排行榜
// GET /api/v1/leaderboard?by=count|duration&top=N
//
// top 缺省时使用配置的默认条数，top<0 表示不截断。
func (h *DashboardHandler) Leaderboard(c *gin.Context) {
	top, ok := parseTop(c)
	if !ok {
		return
	}

	result, err := h.dashboardSvc.Leaderboard(c.Request.Context(), c.Query("by"), top)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Refresh 手动丢弃读缓存
// POST /api/v1/cache/refresh
func (h *DashboardHandler) Refresh(c *gin.Context) {
	h.dashboardSvc.Refresh(c.Request.Context())
	response.OK(c, nil)
}

// parseTop 解析 top 查询参数，非法时写入 400 响应
func parseTop(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("top"))
	if raw == "" {
		return 0, true
	}
	top, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, 10001, "top 必须是整数")
		return 0, false
	}
	return top, true
}
