package analytics

import (
	"sort"

	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/normalize"
)

// LeaderboardEntry 排行榜一项
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	SerialNumber string `json:"serial_number"`
	Name         string `json:"name"` // 名册中找不到时为空
	Value        int    `json:"value"`
}

// LeaderboardByCount 按出勤次数排行
func LeaderboardByCount(events []model.EventRecord, staff []model.StaffRecord, topN int) []LeaderboardEntry {
	return leaderboard(events, staff, topN, func(model.EventRecord) int { return 1 })
}

// LeaderboardByDuration 按累计时长（分钟）排行
func LeaderboardByDuration(events []model.EventRecord, staff []model.StaffRecord, topN int) []LeaderboardEntry {
	return leaderboard(events, staff, topN, func(e model.EventRecord) int { return e.DurationMinutes })
}

// leaderboard 按编号分组累加，值降序；同值按编号在 events 中首次出现的先后排序。
// 名次为顺序位置（1..n）。topN <= 0 表示不截断。
func leaderboard(events []model.EventRecord, staff []model.StaffRecord, topN int, value func(model.EventRecord) int) []LeaderboardEntry {
	totals := make(map[string]int)
	var order []string
	for _, e := range events {
		key := normalize.Canonical(e.SerialNumber)
		if normalize.IsDegenerate(key) {
			continue
		}
		if _, ok := totals[key]; !ok {
			order = append(order, key)
		}
		totals[key] += value(e)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})

	if topN > 0 && len(order) > topN {
		order = order[:topN]
	}

	idx := IndexStaff(staff)
	out := make([]LeaderboardEntry, 0, len(order))
	for i, key := range order {
		entry := LeaderboardEntry{Rank: i + 1, SerialNumber: key, Value: totals[key]}
		if s, ok := idx[key]; ok {
			entry.Name = s.Name
		}
		out = append(out, entry)
	}
	return out
}
