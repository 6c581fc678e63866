package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/internal/model"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

func TestEventService_AppendEvent_Defaults(t *testing.T) {
	svc, wb := setupTestService(t, testStaffRows, testEventRows)
	ctx := context.Background()

	// 2026-03-31 22:30 UTC 在 Asia/Dubai 已是 4 月 1 日
	svc.Event.(*eventService).now = func() time.Time {
		return time.Date(2026, 3, 31, 22, 30, 0, 0, time.UTC)
	}

	rec, err := svc.Event.AppendEvent(ctx, &dto.EventRequest{
		SerialNumber:    "9.0",
		EventName:       "Iftar",
		Location:        "Corniche",
		DurationMinutes: 45,
	})
	if err != nil {
		t.Fatalf("AppendEvent 应成功: %v", err)
	}
	if rec.Date != "2026-04-01" {
		t.Errorf("日期应默认为业务时区的当天，实际=%s", rec.Date)
	}
	if rec.Group != model.DefaultEventGroup {
		t.Errorf("分组应默认为 Other，实际=%s", rec.Group)
	}
	if rec.SerialNumber != "9" {
		t.Errorf("编号应写入规范形式，实际=%s", rec.SerialNumber)
	}

	rows, _ := wb.ListRows(ctx, testEventSheet)
	last := rows[len(rows)-1]
	want := []string{"9", "Iftar", "Corniche", "2026-04-01", "45", "Other"}
	for i := range want {
		if last[i] != want[i] {
			t.Fatalf("写入列顺序不符合预期: %v", last)
		}
	}

	p, _ := svc.Dashboard.Profile(ctx, "9")
	if p.TotalEvents != 1 {
		t.Errorf("写入后读取应看到新记录，实际=%d", p.TotalEvents)
	}
}

func TestEventService_AppendEvent_GroupCaseFolded(t *testing.T) {
	svc, _ := setupTestService(t, testStaffRows, testEventRows)

	rec, err := svc.Event.AppendEvent(context.Background(), &dto.EventRequest{
		SerialNumber:    "7",
		EventName:       "Fireworks",
		Date:            "2026-12-31",
		DurationMinutes: 30,
		Group:           "new year",
	})
	if err != nil {
		t.Fatalf("AppendEvent 应成功: %v", err)
	}
	if rec.Group != "New Year" {
		t.Errorf("分组应统一为表单写法，实际=%s", rec.Group)
	}
}

func TestEventService_AppendEvent_Validation(t *testing.T) {
	svc, _ := setupTestService(t, testStaffRows, testEventRows)

	_, err := svc.Event.AppendEvent(context.Background(), &dto.EventRequest{
		SerialNumber:    "7",
		EventName:       "",
		Date:            "01/02/2026",
		DurationMinutes: 0,
		Group:           "Birthday",
	})

	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("期望 *ValidationError，实际: %v", err)
	}
	got := map[string]bool{}
	for _, f := range ve.FieldNames() {
		got[f] = true
	}
	for _, f := range []string{"event_name", "date", "duration_minutes", "group"} {
		if !got[f] {
			t.Errorf("期望字段 %s 报错，实际=%v", f, ve.FieldNames())
		}
	}
	if got["serial_number"] {
		t.Error("serial_number 合法，不应报错")
	}
}
