package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/amjey/staff-tracker/internal/analytics"
	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/internal/model"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	printLeaderboard(&buf, &dto.LeaderboardResponse{
		By: "duration",
		Entries: []analytics.LeaderboardEntry{
			{Rank: 1, SerialNumber: "8", Name: "Sara", Value: 120},
			{Rank: 2, SerialNumber: "42", Value: 30},
		},
		Warnings: []apperrors.Warning{{Kind: apperrors.WarningKeyMismatch, Message: "编号 42 不在名册中"}},
	})

	out := buf.String()
	if !strings.Contains(out, "分钟") {
		t.Errorf("按时长排行应显示分钟列:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[1], "1") || !strings.Contains(lines[1], "Sara") {
		t.Errorf("第一名应为 Sara，实际 %q", lines[1])
	}
	if !strings.Contains(lines[2], "-") {
		t.Errorf("名册中不存在的编号应显示 -，实际 %q", lines[2])
	}
	if !strings.Contains(out, "[key_mismatch]") {
		t.Errorf("应输出告警:\n%s", out)
	}
}

func TestPrintLeaderboard_CountHeader(t *testing.T) {
	var buf bytes.Buffer
	printLeaderboard(&buf, &dto.LeaderboardResponse{By: "count"})

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	for _, col := range []string{"名次", "编号", "姓名", "活动次数"} {
		if !strings.Contains(header, col) {
			t.Errorf("表头应包含 %q，实际 %q", col, header)
		}
	}
}

func TestPrintHistory_Orphan(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, &dto.StaffProfileResponse{
		History:      []model.EventRecord{{EventName: "Parade", Location: "Old Town", Date: "2025-12-02", DurationMinutes: 45, Group: "National Day"}},
		TotalEvents:  1,
		TotalMinutes: 45,
	})

	out := buf.String()
	if strings.Contains(out, "类别") {
		t.Error("名册中不存在的人员不应输出档案")
	}
	if !strings.Contains(out, "共 1 次活动，45 分钟") {
		t.Errorf("应输出合计:\n%s", out)
	}
}

func TestGroupNames_FixedFirst(t *testing.T) {
	names := groupNames(map[string]int{"Zeta": 1, "Alpha": 2, "New Year": 3})
	want := append(append([]string{}, model.EventGroups...), "Alpha", "Zeta")
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("期望 %v，实际 %v", want, names)
	}
}

func TestDescribe_ValidationError(t *testing.T) {
	err := describe(&apperrors.ValidationError{Fields: []apperrors.FieldError{
		{Field: "serial_number", Reason: "必填"},
		{Field: "duration_minutes", Reason: "不能小于 1"},
	}})
	msg := err.Error()
	if !strings.Contains(msg, "--sn: 必填") || !strings.Contains(msg, "--duration: 不能小于 1") {
		t.Errorf("应映射为命令行参数名，实际 %q", msg)
	}

	plain := errors.New("boom")
	if describe(plain) != plain {
		t.Error("非校验错误应原样返回")
	}
}
