package normalize

import (
	"github.com/amjey/staff-tracker/internal/model"
)

// Staff 把名册原始表格转换为人员记录。
// 原始表格为空（连表头都没有）时返回空关系；表头存在但缺少必需列时返回 *MissingColumnsError。
// Category 字段留空，由分类器填充。
func Staff(raw [][]string, schema *Schema) ([]model.StaffRecord, Binding, error) {
	t := Clean(raw)
	if len(t.Header) == 0 {
		return nil, Binding{}, nil
	}

	b, err := schema.Resolve(t.Header)
	if err != nil {
		return nil, b, err
	}

	// 没有独立职务列时，职务文本取自 Rank 列
	roleField := FieldRole
	if !b.Has(FieldRole) {
		roleField = FieldRank
	}

	records := make([]model.StaffRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, model.StaffRecord{
			SerialNumber: Canonical(b.Value(row.Cells, FieldSN)),
			Rank:         b.Value(row.Cells, FieldRank),
			Name:         b.Value(row.Cells, FieldName),
			Unit:         b.Value(row.Cells, FieldUnit),
			Contact:      Contact(b.Value(row.Cells, FieldContact)),
			LeaderBadge:  b.Value(row.Cells, FieldLeaderBadge),
			RoleLabel:    b.Value(row.Cells, roleField),
			Row:          row.Number,
		})
	}
	return records, b, nil
}

// Events 把活动日志原始表格转换为出勤记录
func Events(raw [][]string, schema *Schema) ([]model.EventRecord, Binding, error) {
	t := Clean(raw)
	if len(t.Header) == 0 {
		return nil, Binding{}, nil
	}

	b, err := schema.Resolve(t.Header)
	if err != nil {
		return nil, b, err
	}

	records := make([]model.EventRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		group := b.Value(row.Cells, FieldGroup)
		if group == "" {
			group = model.DefaultEventGroup
		}
		records = append(records, model.EventRecord{
			SerialNumber:    Canonical(b.Value(row.Cells, FieldSN)),
			EventName:       b.Value(row.Cells, FieldEventName),
			Location:        b.Value(row.Cells, FieldLocation),
			Date:            b.Value(row.Cells, FieldDate),
			DurationMinutes: CoerceDuration(b.Value(row.Cells, FieldDuration)),
			Group:           group,
			Row:             row.Number,
		})
	}
	return records, b, nil
}
