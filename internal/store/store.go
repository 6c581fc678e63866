// Package store 表格后端的读写驱动（CSV 导出、表格 API、本地工作簿、PostgreSQL）
// 以及带超时、缓存与错误类型转换的访问网关。
package store

import (
	"context"

	"github.com/amjey/staff-tracker/internal/normalize"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// Reader 读取整张工作表（含表头行）
type Reader interface {
	ListRows(ctx context.Context, sheet string) ([][]string, error)
}

// Appender 在工作表末尾追加一行
type Appender interface {
	AppendRow(ctx context.Context, sheet string, values []string) error
}

// Editor 按主键定位并修改或删除一行。
// 定位在写入时刻完成，不依赖调用方先前读到的行号。
type Editor interface {
	UpdateRow(ctx context.Context, sheet string, key RowKey, values []string) error
	DeleteRow(ctx context.Context, sheet string, key RowKey) error
}

// Writer 可写驱动
type Writer interface {
	Appender
	Editor
}

// Bootstrapper 能够为空工作表写入表头的驱动
type Bootstrapper interface {
	EnsureSheet(ctx context.Context, sheet string, header []string) error
}

// RowKey 主键：按 Schema 在表头中定位 Field 列，再按规范化编号比较 Value
type RowKey struct {
	Schema *normalize.Schema
	Field  string
	Value  string
}

// findRow 返回匹配行在 rows 中的下标（rows[0] 为表头），找不到时返回 ErrRowNotFound
func findRow(rows [][]string, key RowKey) (int, error) {
	if len(rows) == 0 {
		return -1, apperrors.ErrRowNotFound
	}

	b, err := key.Schema.Resolve(normalize.DedupeHeaders(rows[0]))
	if err != nil {
		return -1, err
	}
	col := b.Index(key.Field)
	if col < 0 {
		return -1, apperrors.ErrRowNotFound
	}

	for i := 1; i < len(rows); i++ {
		if col < len(rows[i]) && normalize.KeysMatch(rows[i][col], key.Value) {
			return i, nil
		}
	}
	return -1, apperrors.ErrRowNotFound
}

// mergeRow 用 values 覆盖旧行的前 len(values) 个单元格，规范列之外的附加列原样保留
func mergeRow(old, values []string) []string {
	if len(old) <= len(values) {
		return values
	}
	out := make([]string, len(old))
	copy(out, old)
	copy(out, values)
	return out
}
