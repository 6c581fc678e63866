package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/analytics"
	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/normalize"
	"github.com/amjey/staff-tracker/internal/store"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// ── 仪表盘模块业务错误 ──

var (
	ErrStaffNotFound            = errors.New("名册中不存在该编号")
	ErrInvalidLeaderboardMetric = errors.New("排行指标只能是 count 或 duration")
)

// 排行指标
const (
	MetricCount    = "count"
	MetricDuration = "duration"
)

// Dataset 一次加载得到的两个关系。
// 某个关系读取失败时以空关系代替，并在 Warnings 中记录 fetch_failed。
type Dataset struct {
	Staff         []model.StaffRecord
	Events        []model.EventRecord
	StaffBinding  normalize.Binding
	EventBinding  normalize.Binding
	StaffFetchErr error
	EventFetchErr error
	Warnings      []apperrors.Warning
}

// DashboardService 只读视图业务接口
type DashboardService interface {
	// Load 并发读取名册与活动日志并完成规范化、分类
	Load(ctx context.Context) (*Dataset, error)
	Summary(ctx context.Context) (*dto.SummaryResponse, error)
	ListStaff(ctx context.Context, query string) (*dto.StaffListResponse, error)
	Profile(ctx context.Context, serialNumber string) (*dto.StaffProfileResponse, error)
	ListEvents(ctx context.Context, group string) (*dto.EventListResponse, error)
	GroupCounts(ctx context.Context, unique bool) (*dto.GroupCountsResponse, error)
	Attendees(ctx context.Context, location string) (*dto.AttendeesResponse, error)
	Leaderboard(ctx context.Context, by string, top int) (*dto.LeaderboardResponse, error)
	// Refresh 丢弃两张表的读缓存
	Refresh(ctx context.Context)
}

type dashboardService struct {
	gw     *store.Gateway
	sheets config.StoreConfig
	topN   int
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(cfg *config.Config, gw *store.Gateway, logger *zap.Logger) DashboardService {
	return &dashboardService{
		gw:     gw,
		sheets: cfg.Store,
		topN:   cfg.App.TopN,
		logger: logger,
	}
}

// ────────────────────── Load ──────────────────────

func (s *dashboardService) Load(ctx context.Context) (*Dataset, error) {
	var (
		staffRows, eventRows [][]string
		staffErr, eventErr   error
	)

	// 两次读取互不影响：各自记录错误，不使用 errgroup 的取消语义
	var g errgroup.Group
	g.Go(func() error {
		staffRows, staffErr = s.gw.Fetch(ctx, s.sheets.StaffSheet)
		return nil
	})
	g.Go(func() error {
		eventRows, eventErr = s.gw.Fetch(ctx, s.sheets.EventSheet)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds := &Dataset{}

	if staffErr == nil {
		ds.Staff, ds.StaffBinding, staffErr = normalize.Staff(staffRows, normalize.StaffSchema)
		if staffErr != nil {
			staffErr = &apperrors.FetchError{Sheet: s.sheets.StaffSheet, Err: staffErr}
			ds.Staff = nil
		}
	}
	if eventErr == nil {
		ds.Events, ds.EventBinding, eventErr = normalize.Events(eventRows, normalize.EventSchema)
		if eventErr != nil {
			eventErr = &apperrors.FetchError{Sheet: s.sheets.EventSheet, Err: eventErr}
			ds.Events = nil
		}
	}

	ds.StaffFetchErr, ds.EventFetchErr = staffErr, eventErr
	for _, err := range []error{staffErr, eventErr} {
		if err == nil {
			continue
		}
		var fe *apperrors.FetchError
		sheet := ""
		if errors.As(err, &fe) {
			sheet = fe.Sheet
		}
		s.logger.Warn("关系加载失败，以空关系展示", zap.String("sheet", sheet), zap.Error(err))
		ds.Warnings = append(ds.Warnings, apperrors.Warning{
			Kind:    apperrors.WarningFetchFailed,
			Sheet:   sheet,
			Message: err.Error(),
		})
	}

	analytics.ClassifyAll(ds.Staff)
	return ds, nil
}

// ────────────────────── Summary ──────────────────────

func (s *dashboardService) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	warnings := append([]apperrors.Warning{}, ds.Warnings...)
	warnings = append(warnings, analytics.DuplicateKeys(ds.Staff)...)
	// 名册读取失败时每条活动都会是孤儿，不再逐条提示
	if ds.StaffFetchErr == nil {
		warnings = append(warnings, analytics.Orphans(ds.Events, ds.Staff)...)
	}

	return &dto.SummaryResponse{
		TotalStaff:          analytics.TotalStaff(ds.Staff),
		TotalEvents:         analytics.TotalEvents(ds.Events),
		UniqueEvents:        len(analytics.UniqueEvents(ds.Events)),
		TotalMinutes:        analytics.TotalMinutes(ds.Events),
		CategoryCounts:      analytics.CategoryCounts(ds.Staff),
		EventsByGroup:       analytics.EventsByGroup(ds.Events, false),
		UniqueEventsByGroup: analytics.EventsByGroup(ds.Events, true),
		Columns: dto.ColumnResolution{
			Staff: ds.StaffBinding.Headers(),
			Event: ds.EventBinding.Headers(),
		},
		Warnings: warnings,
	}, nil
}

// ────────────────────── Staff ──────────────────────

func (s *dashboardService) ListStaff(ctx context.Context, query string) (*dto.StaffListResponse, error) {
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	staff := ds.Staff
	if strings.TrimSpace(query) != "" {
		staff = analytics.SearchStaff(ds.Staff, query)
	}
	if staff == nil {
		staff = []model.StaffRecord{}
	}

	return &dto.StaffListResponse{
		Staff:    staff,
		Total:    len(staff),
		Warnings: nonNil(ds.Warnings),
	}, nil
}

func (s *dashboardService) Profile(ctx context.Context, serialNumber string) (*dto.StaffProfileResponse, error) {
	key := normalize.Canonical(serialNumber)
	if normalize.IsDegenerate(key) {
		return nil, ErrStaffNotFound
	}

	ds, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	history := analytics.HistoryFor(key, ds.Events)
	resp := &dto.StaffProfileResponse{
		History:      history,
		TotalEvents:  len(history),
		TotalMinutes: analytics.TotalMinutes(history),
		Warnings:     nonNil(ds.Warnings),
	}

	if rec, ok := analytics.FindStaff(ds.Staff, key); ok {
		resp.Staff = rec
		return resp, nil
	}
	if len(history) == 0 {
		return nil, ErrStaffNotFound
	}

	resp.Warnings = append(resp.Warnings, apperrors.Warning{
		Kind:         apperrors.WarningKeyMismatch,
		Sheet:        s.sheets.EventSheet,
		SerialNumber: key,
		Message:      "该编号有出勤记录但不在名册中",
	})
	return resp, nil
}

// ────────────────────── Events ──────────────────────

func (s *dashboardService) ListEvents(ctx context.Context, group string) (*dto.EventListResponse, error) {
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	events := analytics.FilterByGroup(ds.Events, group)
	if events == nil {
		events = []model.EventRecord{}
	}
	return &dto.EventListResponse{
		Group:    strings.TrimSpace(group),
		Events:   events,
		Total:    len(events),
		Warnings: nonNil(ds.Warnings),
	}, nil
}

func (s *dashboardService) GroupCounts(ctx context.Context, unique bool) (*dto.GroupCountsResponse, error) {
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.GroupCountsResponse{
		Unique:   unique,
		Groups:   analytics.EventsByGroup(ds.Events, unique),
		Warnings: nonNil(ds.Warnings),
	}, nil
}

// Attendees 某地点的出勤记录左连接名册；名册中找不到的编号逐条给出 key_mismatch 告警
func (s *dashboardService) Attendees(ctx context.Context, location string) (*dto.AttendeesResponse, error) {
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	subset := analytics.FilterByLocation(ds.Events, location)
	warnings := nonNil(ds.Warnings)
	if ds.StaffFetchErr == nil {
		warnings = append(warnings, analytics.Orphans(subset, ds.Staff)...)
	}

	return &dto.AttendeesResponse{
		Location:  strings.TrimSpace(location),
		Attendees: analytics.JoinLocation(subset, ds.Staff),
		Warnings:  warnings,
	}, nil
}

// ────────────────────── Leaderboard ──────────────────────

func (s *dashboardService) Leaderboard(ctx context.Context, by string, top int) (*dto.LeaderboardResponse, error) {
	if by == "" {
		by = MetricCount
	}
	if by != MetricCount && by != MetricDuration {
		return nil, ErrInvalidLeaderboardMetric
	}
	if top == 0 {
		top = s.topN
	}

	ds, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	var entries []analytics.LeaderboardEntry
	if by == MetricDuration {
		entries = analytics.LeaderboardByDuration(ds.Events, ds.Staff, top)
	} else {
		entries = analytics.LeaderboardByCount(ds.Events, ds.Staff, top)
	}

	return &dto.LeaderboardResponse{
		By:       by,
		Top:      top,
		Entries:  entries,
		Warnings: nonNil(ds.Warnings),
	}, nil
}

func (s *dashboardService) Refresh(ctx context.Context) {
	s.gw.Invalidate(ctx, s.sheets.StaffSheet, s.sheets.EventSheet)
	s.logger.Info("已手动刷新表格缓存")
}

// nonNil 保证 JSON 中输出 [] 而不是 null
func nonNil(ws []apperrors.Warning) []apperrors.Warning {
	out := make([]apperrors.Warning, len(ws))
	copy(out, ws)
	return out
}
