package service

import (
	"context"
	"strings"
	"testing"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
)

// ── ExportRoster 测试 ──

func TestExportService_ExportRoster(t *testing.T) {
	svc, _ := setupTestService(t, testStaffRows, testEventRows)

	buf, filename, err := svc.Export.ExportRoster(context.Background())
	if err != nil {
		t.Fatalf("ExportRoster 应成功: %v", err)
	}
	if !strings.HasPrefix(filename, "roster_") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名不符合预期: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Roster")
	if err != nil {
		t.Fatalf("读取 Roster 工作表失败: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("期望表头 + 3 行，实际 %d 行", len(rows))
	}
	if rows[0][6] != "Category" || rows[0][7] != "Events" {
		t.Errorf("表头不符合预期: %v", rows[0])
	}
	// Ali: TeamLeader, 3 次, 225 分钟
	if rows[1][6] != "TeamLeader" || rows[1][7] != "3" || rows[1][8] != "225" {
		t.Errorf("Ali 的统计不符合预期: %v", rows[1])
	}
}

// ── ExportLeaderboard 测试 ──

func TestExportService_ExportLeaderboard(t *testing.T) {
	svc, _ := setupTestService(t, testStaffRows, testEventRows)

	buf, filename, err := svc.Export.ExportLeaderboard(context.Background(), MetricDuration, 2)
	if err != nil {
		t.Fatalf("ExportLeaderboard 应成功: %v", err)
	}
	if !strings.HasPrefix(filename, "leaderboard_duration_") {
		t.Errorf("文件名不符合预期: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows("Leaderboard")
	if len(rows) != 3 {
		t.Fatalf("期望表头 + 2 行，实际 %d 行", len(rows))
	}
	if rows[0][3] != "Minutes" || rows[1][1] != "7" || rows[1][3] != "225" {
		t.Errorf("排行内容不符合预期: %v", rows)
	}
}

// ── ExportCalendar 测试 ──

func TestExportService_ExportCalendar(t *testing.T) {
	svc, _ := setupTestService(t, testStaffRows, testEventRows)

	buf, filename, err := svc.Export.ExportCalendar(context.Background())
	if err != nil {
		t.Fatalf("ExportCalendar 应成功: %v", err)
	}
	if filename != "events.ics" {
		t.Errorf("文件名不符合预期: %s", filename)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("导出内容应为合法 iCalendar: %v", err)
	}

	// Fireworks@Corniche 与 Parade@Old Town 各一条；"not a date" 被跳过
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("期望 2 条日历事件，实际=%d", len(events))
	}
	summary := events[0].GetProperty(ics.ComponentPropertySummary)
	if summary == nil || summary.Value != "Fireworks" {
		t.Errorf("第一条事件应为 Fireworks，实际: %+v", summary)
	}
}

func TestParseEventDate(t *testing.T) {
	cases := map[string]bool{
		"2026-01-01":          true,
		"2026-01-01 00:00:00": true,
		"1/2/2026":            true,
		"02-Jan-2026":         true,
		"":                    false,
		"nan":                 false,
		"soon":                false,
	}
	for in, ok := range cases {
		if _, got := parseEventDate(in); got != ok {
			t.Errorf("parseEventDate(%q) 期望 %v，实际 %v", in, ok, got)
		}
	}
}
