package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Workbook 以本地 .xlsx 文件充当表格后端，用于离线开发与演示。
// 同一进程内的写操作串行化；不支持多进程同时写同一文件。
type Workbook struct {
	mu   sync.Mutex
	path string
}

// NewWorkbook 创建工作簿驱动，文件不存在时在首次写入时创建
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// ListRows 读取工作表全部行
func (w *Workbook) ListRows(_ context.Context, sheet string) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("打开工作簿失败: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("工作表 %q 不存在", sheet)
	}
	return f.GetRows(sheet)
}

// EnsureSheet 工作表不存在或为空时写入表头
func (w *Workbook) EnsureSheet(_ context.Context, sheet string, header []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := w.ensure(f, sheet)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	return w.save(f)
}

// AppendRow 写入到最后一个非空行之后
func (w *Workbook) AppendRow(_ context.Context, sheet string, values []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := w.ensure(f, sheet)
	if err != nil {
		return err
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return err
	}
	return w.save(f)
}

// UpdateRow 按主键覆盖整行
func (w *Workbook) UpdateRow(_ context.Context, sheet string, key RowKey, values []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("打开工作簿失败: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	idx, err := findRow(rows, key)
	if err != nil {
		return err
	}

	padded := mergeRow(rows[idx], values)
	cell, err := excelize.CoordinatesToCellName(1, idx+1)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &padded); err != nil {
		return err
	}
	return w.save(f)
}

// DeleteRow 按主键删除整行，后续行上移
func (w *Workbook) DeleteRow(_ context.Context, sheet string, key RowKey) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("打开工作簿失败: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	idx, err := findRow(rows, key)
	if err != nil {
		return err
	}
	if err := f.RemoveRow(sheet, idx+1); err != nil {
		return err
	}
	return w.save(f)
}

// ── 内部辅助方法 ──

// open 打开工作簿，文件不存在时新建
func (w *Workbook) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("打开工作簿失败: %w", err)
	}
	return excelize.NewFile(), nil
}

// ensure 确保工作表存在并返回现有行；新建文件时移除默认的 Sheet1
func (w *Workbook) ensure(f *excelize.File, sheet string) ([][]string, error) {
	if idx, _ := f.GetSheetIndex(sheet); idx >= 0 {
		return f.GetRows(sheet)
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}
	if sheet != "Sheet1" {
		if rows, err := f.GetRows("Sheet1"); err == nil && len(rows) == 0 {
			f.DeleteSheet("Sheet1")
		}
	}
	return nil, nil
}

func (w *Workbook) save(f *excelize.File) error {
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return f.SaveAs(w.path)
}
