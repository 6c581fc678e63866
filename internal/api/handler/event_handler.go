package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/internal/service"
	"github.com/amjey/staff-tracker/pkg/response"
)

// EventHandler 活动日志模块 HTTP 处理器
type EventHandler struct {
	dashboardSvc service.DashboardService
	eventSvc     service.EventService
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(dashboardSvc service.DashboardService, eventSvc service.EventService) *EventHandler {
	return &EventHandler{dashboardSvc: dashboardSvc, eventSvc: eventSvc}
}

// List 活动记录列表
// GET /api/v1/events?group=
func (h *EventHandler) List(c *gin.Context) {
	result, err := h.dashboardSvc.ListEvents(c.Request.Context(), c.Query("group"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Groups 按活动分组计数
// GET /api/v1/events/groups?unique=true
func (h *EventHandler) Groups(c *gin.Context) {
	unique := false
	if raw := c.Query("unique"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, 10001, "unique 必须是布尔值")
			return
		}
		unique = v
	}

	result, err := h.dashboardSvc.GroupCounts(c.Request.Context(), unique)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Attendees 某地点的出勤人员
// GET /api/v1/events/attendees?location=
func (h *EventHandler) Attendees(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		response.BadRequest(c, 10001, "location 不能为空")
		return
	}

	result, err := h.dashboardSvc.Attendees(c.Request.Context(), location)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Create 登记一条出勤
// POST /api/v1/events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求体格式错误")
		return
	}

	rec, err := h.eventSvc.AppendEvent(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, rec)
}
