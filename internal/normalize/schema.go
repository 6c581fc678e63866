package normalize

import (
	"fmt"
	"strings"
)

// 规范字段名
const (
	FieldSN          = "sn"
	FieldRank        = "rank"
	FieldName        = "name"
	FieldUnit        = "unit"
	FieldContact     = "contact"
	FieldLeaderBadge = "leader_badge"
	FieldRole        = "role"

	FieldEventName = "event_name"
	FieldLocation  = "location"
	FieldDate      = "date"
	FieldDuration  = "duration"
	FieldGroup     = "group"
)

// Field 一个规范字段及其可接受的表头
type Field struct {
	Name     string
	Aliases  []string // 精确匹配（忽略大小写与首尾空白），按优先级排列
	Hints    []string // 别名全部落空时使用的子串匹配（小写）
	Avoid    []string // 子串匹配时排除含这些片段的表头
	Required bool
}

// Schema 一个关系的字段解析策略
type Schema struct {
	Relation string
	Fields   []Field
}

// StaffSchema 名册字段解析策略
var StaffSchema = &Schema{
	Relation: "staff",
	Fields: []Field{
		{Name: FieldSN, Aliases: []string{"SN", "S.N", "S/N", "Serial", "Serial Number", "Serial No", "Staff SN"}, Hints: []string{"serial"}, Required: true},
		{Name: FieldName, Aliases: []string{"Name", "Full Name", "Staff Name"}, Hints: []string{"name"}, Required: true},
		{Name: FieldRank, Aliases: []string{"Rank"}, Hints: []string{"rank"}},
		{Name: FieldUnit, Aliases: []string{"Unit", "Department", "Section"}, Hints: []string{"unit"}},
		{Name: FieldContact, Aliases: []string{"Contact", "Contact Number", "Phone", "Mobile"}, Hints: []string{"contact", "phone", "mobile"}},
		{Name: FieldLeaderBadge, Aliases: []string{"LeaderBadge", "Leader Badge", "Badge"}, Hints: []string{"badge"}},
		{Name: FieldRole, Aliases: []string{"Role", "Role Label", "Designation", "Position"}, Hints: []string{"role"}},
	},
}

// EventSchema 活动日志字段解析策略
var EventSchema = &Schema{
	Relation: "event",
	Fields: []Field{
		{Name: FieldSN, Aliases: []string{"SN", "S.N", "S/N", "Serial", "Serial Number", "Staff SN"}, Hints: []string{"serial"}, Required: true},
		{Name: FieldEventName, Aliases: []string{"EventName", "Event Name", "Event"}, Hints: []string{"eventname", "event name", "event"}, Avoid: []string{"id", "date", "location", "duration", "mins", "minutes", "group", "category"}, Required: true},
		{Name: FieldLocation, Aliases: []string{"Location", "Event Location", "Venue", "Place"}, Hints: []string{"location", "venue"}},
		{Name: FieldDate, Aliases: []string{"Date", "Event Date"}, Hints: []string{"date"}},
		{Name: FieldDuration, Aliases: []string{"Duration", "Duration (Mins)", "Mins", "Minutes"}, Hints: []string{"duration"}},
		{Name: FieldGroup, Aliases: []string{"Group", "Category", "Event Group", "Group Label"}, Hints: []string{"group", "category"}},
	},
}

// MissingColumnsError 必需字段在表头中找不到任何匹配
type MissingColumnsError struct {
	Relation string
	Fields   []string
	Header   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s 表缺少必需列 %v（实际表头: %v）", e.Relation, e.Fields, e.Header)
}

// Binding 字段 → 列索引的解析结果
type Binding struct {
	header  []string
	columns map[string]int
}

// Index 返回字段所在列，未解析到时返回 -1
func (b Binding) Index(field string) int {
	if i, ok := b.columns[field]; ok {
		return i
	}
	return -1
}

// Has 字段是否解析到了列
func (b Binding) Has(field string) bool { return b.Index(field) >= 0 }

// Value 读取一行中某字段的值，字段缺失时返回空串
func (b Binding) Value(cells []string, field string) string {
	i := b.Index(field)
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// Headers 字段 → 实际表头名，用于诊断展示
func (b Binding) Headers() map[string]string {
	out := make(map[string]string, len(b.columns))
	for f, i := range b.columns {
		out[f] = b.header[i]
	}
	return out
}

// Resolve 在清洗后的表头上解析全部字段。
// 先对所有字段做别名精确匹配，再对仍未解析的字段做子串匹配；一列只绑定一个字段。
func (s *Schema) Resolve(header []string) (Binding, error) {
	b := Binding{header: header, columns: make(map[string]int, len(s.Fields))}
	taken := make(map[int]bool, len(header))

	for _, f := range s.Fields {
		for _, alias := range f.Aliases {
			if i := findExact(header, alias, taken); i >= 0 {
				b.columns[f.Name] = i
				taken[i] = true
				break
			}
		}
	}

	for _, f := range s.Fields {
		if _, ok := b.columns[f.Name]; ok {
			continue
		}
		for _, hint := range f.Hints {
			if i := findSubstring(header, hint, f.Avoid, taken); i >= 0 {
				b.columns[f.Name] = i
				taken[i] = true
				break
			}
		}
	}

	var missing []string
	for _, f := range s.Fields {
		if f.Required && !b.Has(f.Name) {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return b, &MissingColumnsError{Relation: s.Relation, Fields: missing, Header: header}
	}
	return b, nil
}

func findExact(header []string, alias string, taken map[int]bool) int {
	for i, h := range header {
		if !taken[i] && strings.EqualFold(strings.TrimSpace(h), alias) {
			return i
		}
	}
	return -1
}

func findSubstring(header []string, hint string, avoid []string, taken map[int]bool) int {
	for i, h := range header {
		if taken[i] {
			continue
		}
		lower := strings.ToLower(h)
		if !strings.Contains(lower, hint) || containsAny(lower, avoid) {
			continue
		}
		return i
	}
	return -1
}

func containsAny(s string, parts []string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
