package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/internal/service"
	"github.com/amjey/staff-tracker/pkg/response"
)

// StaffHandler 名册模块 HTTP 处理器
type StaffHandler struct {
	dashboardSvc service.DashboardService
	rosterSvc    service.RosterService
}

// NewStaffHandler 创建 StaffHandler
func NewStaffHandler(dashboardSvc service.DashboardService, rosterSvc service.RosterService) *StaffHandler {
	return &StaffHandler{dashboardSvc: dashboardSvc, rosterSvc: rosterSvc}
}

// List 名册列表
// GET /api/v1/staff?q=
func (h *StaffHandler) List(c *gin.Context) {
	result, err := h.dashboardSvc.ListStaff(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Get 人员档案与出勤历史
// GET /api/v1/staff/:sn
func (h *StaffHandler) Get(c *gin.Context) {
	result, err := h.dashboardSvc.Profile(c.Request.Context(), c.Param("sn"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Create 登记人员（追加一行）
// POST /api/v1/staff
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求体格式错误")
		return
	}

	rec, err := h.rosterSvc.AppendStaff(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, rec)
}

// Update 按编号整行修改
// PUT /api/v1/staff/:sn
func (h *StaffHandler) Update(c *gin.Context) {
	var req dto.StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求体格式错误")
		return
	}

	rec, err := h.rosterSvc.UpdateStaff(c.Request.Context(), c.Param("sn"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, rec)
}

// Delete 按编号删除
// DELETE /api/v1/staff/:sn
func (h *StaffHandler) Delete(c *gin.Context) {
	if err := h.rosterSvc.DeleteStaff(c.Request.Context(), c.Param("sn")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// Import 批量登记
// POST /api/v1/staff/import
// Content-Type: multipart/form-data, field="file"（.xlsx / .xls）
func (h *StaffHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传文件（字段名 file）")
		return
	}
	defer file.Close()

	result, err := h.rosterSvc.ImportStaff(c.Request.Context(), header.Filename, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
