package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/internal/model"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printSummary(w io.Writer, s *dto.SummaryResponse) {
	tw := newTable(w)
	fmt.Fprintf(tw, "人员\t%d\n", s.TotalStaff)
	fmt.Fprintf(tw, "活动记录\t%d\n", s.TotalEvents)
	fmt.Fprintf(tw, "不重复活动\t%d\n", s.UniqueEvents)
	fmt.Fprintf(tw, "累计分钟\t%d\n", s.TotalMinutes)
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "按类别:")
	tw = newTable(w)
	for _, c := range model.Categories {
		fmt.Fprintf(tw, "  %s\t%d\n", c, s.CategoryCounts[c])
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "按活动分组（记录数 / 不重复活动数）:")
	tw = newTable(w)
	for _, g := range groupNames(s.EventsByGroup) {
		fmt.Fprintf(tw, "  %s\t%d\t%d\n", g, s.EventsByGroup[g], s.UniqueEventsByGroup[g])
	}
	tw.Flush()

	printWarnings(w, s.Warnings)
}

func printLeaderboard(w io.Writer, lb *dto.LeaderboardResponse) {
	valueHeader := "活动次数"
	if lb.By == "duration" {
		valueHeader = "分钟"
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "名次\t编号\t姓名\t%s\n", valueHeader)
	for _, e := range lb.Entries {
		name := e.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", e.Rank, e.SerialNumber, name, e.Value)
	}
	tw.Flush()

	printWarnings(w, lb.Warnings)
}

func printHistory(w io.Writer, p *dto.StaffProfileResponse) {
	if p.Staff != nil {
		tw := newTable(w)
		fmt.Fprintf(tw, "编号\t%s\n", p.Staff.SerialNumber)
		fmt.Fprintf(tw, "姓名\t%s\n", p.Staff.Name)
		fmt.Fprintf(tw, "职级\t%s\n", p.Staff.Rank)
		fmt.Fprintf(tw, "单位\t%s\n", p.Staff.Unit)
		fmt.Fprintf(tw, "类别\t%s\n", p.Staff.Category)
		tw.Flush()
		fmt.Fprintln(w)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "日期\t活动\t地点\t分组\t分钟")
	for _, e := range p.History {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.Date, e.EventName, e.Location, e.Group, e.DurationMinutes)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n共 %d 次活动，%d 分钟\n", p.TotalEvents, p.TotalMinutes)

	printWarnings(w, p.Warnings)
}

func printWarnings(w io.Writer, ws []apperrors.Warning) {
	if len(ws) == 0 {
		return
	}
	fmt.Fprintf(w, "\n告警（%d 条）:\n", len(ws))
	for _, warn := range ws {
		fmt.Fprintf(w, "  [%s] %s\n", warn.Kind, warn.Message)
	}
}

// groupNames 固定分组在前，其余按字母序
func groupNames(counts map[string]int) []string {
	seen := make(map[string]bool, len(counts))
	names := make([]string, 0, len(counts))
	for _, g := range model.EventGroups {
		names = append(names, g)
		seen[g] = true
	}
	var extra []string
	for g := range counts {
		if !seen[g] {
			extra = append(extra, g)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// describe 把字段校验错误展开为逐行提示
func describe(err error) error {
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	lines := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		lines = append(lines, fmt.Sprintf("  --%s: %s", flagFor(f.Field), f.Reason))
	}
	return fmt.Errorf("输入不合法:\n%s", strings.Join(lines, "\n"))
}

// flagFor 请求字段名 → 命令行参数名
func flagFor(field string) string {
	switch field {
	case "serial_number":
		return "sn"
	case "leader_badge":
		return "badge"
	case "event_name":
		return "event"
	case "duration_minutes":
		return "duration"
	}
	return field
}
