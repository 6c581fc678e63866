package dto

import (
	"github.com/amjey/staff-tracker/internal/analytics"
	"github.com/amjey/staff-tracker/internal/model"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// ── 活动模块 DTO ──

// EventRequest 登记一条出勤记录
// Date 为空时取业务时区的当天；Group 为空时归入 Other
type EventRequest struct {
	SerialNumber    string `json:"serial_number"    validate:"required,serial,max=32"`
	EventName       string `json:"event_name"       validate:"required,max=128"`
	Location        string `json:"location"         validate:"max=128"`
	Date            string `json:"date"             validate:"omitempty,datetime=2006-01-02"`
	DurationMinutes int    `json:"duration_minutes" validate:"min=1,max=100000"`
	Group           string `json:"group"            validate:"omitempty,event_group"`
}

// EventListResponse 活动日志列表
type EventListResponse struct {
	Group    string              `json:"group,omitempty"`
	Events   []model.EventRecord `json:"events"`
	Total    int                 `json:"total"`
	Warnings []apperrors.Warning `json:"warnings"`
}

// GroupCountsResponse 各分组活动数
type GroupCountsResponse struct {
	Unique   bool                `json:"unique"`
	Groups   map[string]int      `json:"groups"`
	Warnings []apperrors.Warning `json:"warnings"`
}

// AttendeesResponse 某地点的出勤人员（左连接名册）
type AttendeesResponse struct {
	Location  string               `json:"location"`
	Attendees []analytics.Attendee `json:"attendees"`
	Warnings  []apperrors.Warning  `json:"warnings"`
}

// LeaderboardResponse 排行榜
type LeaderboardResponse struct {
	By       string                       `json:"by"` // count | duration
	Top      int                          `json:"top"`
	Entries  []analytics.LeaderboardEntry `json:"entries"`
	Warnings []apperrors.Warning          `json:"warnings"`
}
