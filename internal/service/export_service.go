package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/amjey/staff-tracker/internal/analytics"
	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/normalize"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// calendarNamespace 日历 UID 的命名空间，同一活动多次导出得到相同 UID
var calendarNamespace = uuid.MustParse("7b0e8f6c-3f0a-4d52-9a57-5c2f3d1e8a40")

// 活动日期可能是表单写入的 ISO 日期，也可能是人工录入的其他常见写法
var eventDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"January 2, 2006",
}

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层（或命令行）决定写到 HTTP 响应还是文件
type ExportService interface {
	// ExportRoster 名册 + 类别 + 出勤统计 (.xlsx)
	ExportRoster(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportLeaderboard 排行榜 (.xlsx)
	ExportLeaderboard(ctx context.Context, by string, top int) (*bytes.Buffer, string, error)
	// ExportCalendar 活动日志转为 iCalendar 订阅源 (.ics)，每个（活动, 地点, 日期）一条全天事件
	ExportCalendar(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	dashboard DashboardService
	now       func() time.Time
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(dashboard DashboardService, logger *zap.Logger) ExportService {
	return &exportService{dashboard: dashboard, now: time.Now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportRoster(ctx context.Context) (*bytes.Buffer, string, error) {
	ds, err := s.dashboard.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	s.logWarnings(ds)

	header := append(append([]string{}, model.StaffColumns...), "Category", "Events", "Minutes")
	rows := make([][]interface{}, 0, len(ds.Staff))
	for i := range ds.Staff {
		st := &ds.Staff[i]
		history := analytics.HistoryFor(st.SerialNumber, ds.Events)
		rows = append(rows, []interface{}{
			st.SerialNumber, st.Rank, st.Name, st.Unit, st.Contact, st.LeaderBadge,
			string(st.Category), len(history), analytics.TotalMinutes(history),
		})
	}

	buf, err := s.writeWorkbook("Roster", header, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("roster_%s.xlsx", s.now().Format("20060102")), nil
}

// ═══════════════════════════════════════════════════════════
// ExportLeaderboard
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportLeaderboard(ctx context.Context, by string, top int) (*bytes.Buffer, string, error) {
	board, err := s.dashboard.Leaderboard(ctx, by, top)
	if err != nil {
		return nil, "", err
	}

	valueHeader := "Events"
	if board.By == MetricDuration {
		valueHeader = "Minutes"
	}
	header := []string{"Rank", "SN", "Name", valueHeader}
	rows := make([][]interface{}, 0, len(board.Entries))
	for _, e := range board.Entries {
		rows = append(rows, []interface{}{e.Rank, e.SerialNumber, e.Name, e.Value})
	}

	buf, err := s.writeWorkbook("Leaderboard", header, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("leaderboard_%s_%s.xlsx", board.By, s.now().Format("20060102")), nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar
// ═══════════════════════════════════════════════════════════

type calendarEntry struct {
	name     string
	location string
	group    string
	day      time.Time
	count    int
	minutes  int
}

func (s *exportService) ExportCalendar(ctx context.Context) (*bytes.Buffer, string, error) {
	ds, err := s.dashboard.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	s.logWarnings(ds)

	// 按（活动, 地点, 日期）聚合出勤记录，保持首次出现的顺序
	entries := make(map[string]*calendarEntry)
	var order []string
	skipped := 0
	for _, e := range ds.Events {
		day, ok := parseEventDate(e.Date)
		if !ok {
			skipped++
			continue
		}
		key := strings.ToLower(strings.TrimSpace(e.EventName)) + "\x00" +
			strings.ToLower(strings.TrimSpace(e.Location)) + "\x00" + day.Format(dateLayout)
		ce, ok := entries[key]
		if !ok {
			ce = &calendarEntry{name: e.EventName, location: e.Location, group: e.Group, day: day}
			entries[key] = ce
			order = append(order, key)
		}
		ce.count++
		ce.minutes += e.DurationMinutes
	}
	if skipped > 0 {
		s.logger.Warn("部分活动日期无法解析，未写入日历", zap.Int("skipped", skipped))
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//staff-tracker//events//EN")

	stamp := s.now().UTC()
	for _, key := range order {
		ce := entries[key]
		ev := cal.AddEvent(uuid.NewSHA1(calendarNamespace, []byte(key)).String() + "@staff-tracker")
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(ce.day)
		ev.SetAllDayEndAt(ce.day.AddDate(0, 0, 1))
		ev.SetSummary(ce.name)
		if ce.location != "" {
			ev.SetLocation(ce.location)
		}
		ev.SetDescription(fmt.Sprintf("出勤 %d 人次，累计 %d 分钟", ce.count, ce.minutes))
		ev.AddProperty(ics.ComponentPropertyCategories, ce.group)
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "events.ics", nil
}

// parseEventDate 按常见写法解析活动日期
func parseEventDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if normalize.IsDegenerate(raw) {
		return time.Time{}, false
	}
	// 表格 API 可能返回 "2026-01-01 00:00:00"
	if i := strings.IndexByte(raw, ' '); i == 10 {
		raw = raw[:i]
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ── 辅助函数 ──

// writeWorkbook 生成单工作表的 xlsx，首行为加粗表头
func (s *exportService) writeWorkbook(sheet string, header []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		s.logger.Error("写入表头失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			s.logger.Error("写入数据行失败", zap.Int("row", i+2), zap.Error(err))
			return nil, ErrExportGenerateFail
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	f.SetColWidth(sheet, "A", lastCol, 16)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

func (s *exportService) logWarnings(ds *Dataset) {
	for _, w := range ds.Warnings {
		s.logger.Warn("导出数据不完整", zap.String("sheet", w.Sheet), zap.String("message", w.Message))
	}
}
