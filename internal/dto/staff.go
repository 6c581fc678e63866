package dto

import (
	"github.com/amjey/staff-tracker/internal/model"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// ── 名册模块 DTO ──

// StaffRequest 登记或修改人员
// 字段与名册列一一对应：SN, Rank, Name, Unit, Contact, LeaderBadge
type StaffRequest struct {
	SerialNumber string `json:"serial_number" validate:"required,serial,max=32"`
	Rank         string `json:"rank"          validate:"max=64"`
	Name         string `json:"name"          validate:"required,max=128"`
	Unit         string `json:"unit"          validate:"max=64"`
	Contact      string `json:"contact"       validate:"max=32"`
	LeaderBadge  string `json:"leader_badge"  validate:"max=64"`
}

// StaffListResponse 名册列表
type StaffListResponse struct {
	Staff    []model.StaffRecord `json:"staff"`
	Total    int                 `json:"total"`
	Warnings []apperrors.Warning `json:"warnings"`
}

// StaffProfileResponse 人员档案与出勤历史
type StaffProfileResponse struct {
	Staff        *model.StaffRecord  `json:"staff"` // 名册中不存在但有出勤记录时为 null
	History      []model.EventRecord `json:"history"`
	TotalEvents  int                 `json:"total_events"`
	TotalMinutes int                 `json:"total_minutes"`
	Warnings     []apperrors.Warning `json:"warnings"`
}

// ImportFailure 批量导入中被拒绝的一行
type ImportFailure struct {
	Row    int                    `json:"row"` // 上传文件中的行号（从 1 开始，含表头）
	Reason string                 `json:"reason"`
	Fields []apperrors.FieldError `json:"fields,omitempty"`
}

// ImportResult 批量导入结果
type ImportResult struct {
	Imported int             `json:"imported"`
	Skipped  []string        `json:"skipped"` // 已在名册中的编号
	Failures []ImportFailure `json:"failures"`
}
