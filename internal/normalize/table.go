// Package normalize 把表格后端返回的原始二维表整理成干净的名册与活动关系。
//
// 处理顺序不可调换：
//  1. 表头去空白，重名表头追加数字后缀（Name, Name_1 …），绝不静默丢列
//  2. 丢弃表头为空的幽灵列
//  3. 丢弃整行为空的数据行
//  4. 编号列规范化（见 Canonical）
//  5. 时长列按别名或子串定位，提取首段数字
//  6. 地点/分组/日期列同样按别名或子串定位，容忍表头漂移
package normalize

import (
	"strconv"
	"strings"
)

// Row 清洗后的数据行
type Row struct {
	Number int      // 原表中的行号（从 1 开始，表头为第 1 行）
	Cells  []string // 与 Table.Header 一一对应
}

// Table 完成步骤 1-3 后的表格
type Table struct {
	Header []string
	Rows   []Row
}

// Clean 执行表头去重、幽灵列剔除、空行剔除，并去除所有单元格首尾空白
func Clean(raw [][]string) Table {
	if len(raw) == 0 {
		return Table{}
	}

	names := DedupeHeaders(raw[0])

	// 只保留非空表头的列
	keep := make([]int, 0, len(names))
	header := make([]string, 0, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		keep = append(keep, i)
		header = append(header, name)
	}

	t := Table{Header: header}
	for i := 1; i < len(raw); i++ {
		src := raw[i]
		cells := make([]string, len(keep))
		empty := true
		for j, col := range keep {
			if col < len(src) {
				cells[j] = strings.TrimSpace(src[col])
			}
			if cells[j] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		t.Rows = append(t.Rows, Row{Number: i + 1, Cells: cells})
	}
	return t
}

// DedupeHeaders 去除表头首尾空白，并为重复表头追加 _1、_2 … 后缀。
// 空表头保持为空字符串，由调用方决定是否剔除。
func DedupeHeaders(header []string) []string {
	out := make([]string, len(header))

	// 先登记每个名称的首次出现，避免生成的后缀与原有表头撞名
	used := make(map[string]bool, len(header))
	first := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if _, ok := first[name]; !ok {
			first[name] = i
			used[name] = true
		}
	}

	next := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || first[name] == i {
			out[i] = name
			continue
		}
		n := next[name] + 1
		candidate := name + "_" + strconv.Itoa(n)
		for used[candidate] {
			n++
			candidate = name + "_" + strconv.Itoa(n)
		}
		next[name] = n
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
