package analytics

import (
	"strings"

	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/normalize"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// TotalStaff 名册人数
func TotalStaff(staff []model.StaffRecord) int { return len(staff) }

// TotalEvents 活动日志行数
func TotalEvents(events []model.EventRecord) int { return len(events) }

// ────────────────────── 分组与去重 ──────────────────────

func uniqueKey(e model.EventRecord) string {
	return strings.ToLower(strings.TrimSpace(e.EventName)) + "\x00" + strings.ToLower(strings.TrimSpace(e.Location))
}

// UniqueEvents 按 UniqueEventKey 去重，保留首次出现的记录，顺序不变
func UniqueEvents(events []model.EventRecord) []model.EventRecord {
	seen := make(map[string]bool, len(events))
	out := make([]model.EventRecord, 0, len(events))
	for _, e := range events {
		k := uniqueKey(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// EventsByGroup 各分组的活动数；unique 为 true 时先去重
func EventsByGroup(events []model.EventRecord, unique bool) map[string]int {
	if unique {
		events = UniqueEvents(events)
	}
	counts := make(map[string]int)
	for _, e := range events {
		g := e.Group
		if g == "" {
			g = model.DefaultEventGroup
		}
		counts[g]++
	}
	return counts
}

// FilterByGroup 按分组筛选（忽略大小写），group 为空时原样返回
func FilterByGroup(events []model.EventRecord, group string) []model.EventRecord {
	group = strings.TrimSpace(group)
	if group == "" {
		return events
	}
	out := make([]model.EventRecord, 0)
	for _, e := range events {
		if strings.EqualFold(strings.TrimSpace(e.Group), group) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByLocation 按地点筛选（去空白、忽略大小写）
func FilterByLocation(events []model.EventRecord, location string) []model.EventRecord {
	location = strings.TrimSpace(location)
	out := make([]model.EventRecord, 0)
	if location == "" {
		return out
	}
	for _, e := range events {
		if strings.EqualFold(strings.TrimSpace(e.Location), location) {
			out = append(out, e)
		}
	}
	return out
}

// ────────────────────── 查询 ──────────────────────

// HistoryFor 某人员的全部出勤记录；无匹配或编号无效时返回空切片
func HistoryFor(staffKey string, events []model.EventRecord) []model.EventRecord {
	out := make([]model.EventRecord, 0)
	key := normalize.Canonical(staffKey)
	if normalize.IsDegenerate(key) {
		return out
	}
	for _, e := range events {
		if normalize.KeysMatch(e.SerialNumber, key) {
			out = append(out, e)
		}
	}
	return out
}

// TotalMinutes 出勤记录的总时长
func TotalMinutes(events []model.EventRecord) int {
	total := 0
	for _, e := range events {
		total += e.DurationMinutes
	}
	return total
}

// SearchStaff 按编号精确匹配或姓名子串（忽略大小写）检索人员
func SearchStaff(staff []model.StaffRecord, query string) []model.StaffRecord {
	out := make([]model.StaffRecord, 0)
	query = strings.TrimSpace(query)
	if normalize.IsDegenerate(query) {
		return out
	}
	lower := strings.ToLower(query)
	for _, s := range staff {
		if normalize.KeysMatch(s.SerialNumber, query) || strings.Contains(strings.ToLower(s.Name), lower) {
			out = append(out, s)
		}
	}
	return out
}

// IndexStaff 编号 → 人员；重复编号以首次出现为准，无效编号不入索引
func IndexStaff(staff []model.StaffRecord) map[string]*model.StaffRecord {
	idx := make(map[string]*model.StaffRecord, len(staff))
	for i := range staff {
		key := normalize.Canonical(staff[i].SerialNumber)
		if normalize.IsDegenerate(key) {
			continue
		}
		if _, ok := idx[key]; !ok {
			idx[key] = &staff[i]
		}
	}
	return idx
}

// FindStaff 按编号查找人员
func FindStaff(staff []model.StaffRecord, key string) (*model.StaffRecord, bool) {
	s, ok := IndexStaff(staff)[normalize.Canonical(key)]
	return s, ok
}

// ────────────────────── 数据质量告警 ──────────────────────

// DuplicateKeys 名册中重复出现的编号，每个重复编号一条告警
func DuplicateKeys(staff []model.StaffRecord) []apperrors.Warning {
	seen := make(map[string]int, len(staff))
	var warnings []apperrors.Warning
	for _, s := range staff {
		key := normalize.Canonical(s.SerialNumber)
		if normalize.IsDegenerate(key) {
			continue
		}
		seen[key]++
		if seen[key] == 2 {
			warnings = append(warnings, apperrors.Warning{
				Kind:         apperrors.WarningDuplicateKey,
				SerialNumber: key,
				Message:      "名册中存在重复编号，查询以首次出现的记录为准",
			})
		}
	}
	return warnings
}

// Orphans 活动日志中在名册里找不到的编号，每个编号一条告警
func Orphans(events []model.EventRecord, staff []model.StaffRecord) []apperrors.Warning {
	idx := IndexStaff(staff)
	reported := make(map[string]bool)
	var warnings []apperrors.Warning
	for _, e := range events {
		key := normalize.Canonical(e.SerialNumber)
		if _, ok := idx[key]; ok || reported[key] {
			continue
		}
		reported[key] = true
		warnings = append(warnings, apperrors.Warning{
			Kind:         apperrors.WarningKeyMismatch,
			SerialNumber: key,
			Message:      "活动记录的编号在名册中不存在",
		})
	}
	return warnings
}
