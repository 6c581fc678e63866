package model

import "github.com/lib/pq"

// SheetRow postgres 驱动下的表格行，对应 sheet_rows 表
//
// 以 (sheet, position) 模拟工作表的行序；表头同样存为 position=0 的一行，
// 因此读取结果与 CSV/API 驱动的二维表格完全一致。
type SheetRow struct {
	RowID    string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"row_id"`
	Sheet    string         `gorm:"type:varchar(100);not null;index:idx_sheet_position,priority:1" json:"sheet"`
	Position int64          `gorm:"not null;index:idx_sheet_position,priority:2"                  json:"position"`
	Cells    pq.StringArray `gorm:"type:text[];not null"                                          json:"cells"`
	SoftDeleteModel
}

// TableName 指定表名
func (SheetRow) TableName() string { return "sheet_rows" }
