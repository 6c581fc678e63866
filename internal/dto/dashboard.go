package dto

import (
	"github.com/amjey/staff-tracker/internal/model"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// SummaryResponse 仪表盘首页汇总
type SummaryResponse struct {
	TotalStaff          int                    `json:"total_staff"`
	TotalEvents         int                    `json:"total_events"`
	UniqueEvents        int                    `json:"unique_events"`
	TotalMinutes        int                    `json:"total_minutes"`
	CategoryCounts      map[model.Category]int `json:"category_counts"`
	EventsByGroup       map[string]int         `json:"events_by_group"`
	UniqueEventsByGroup map[string]int         `json:"unique_events_by_group"`
	Columns             ColumnResolution       `json:"columns"`
	Warnings            []apperrors.Warning    `json:"warnings"`
}

// ColumnResolution 规范字段实际绑定到的表头，用于排查表头漂移
type ColumnResolution struct {
	Staff map[string]string `json:"staff"`
	Event map[string]string `json:"event"`
}
