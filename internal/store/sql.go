package store

import (
	"context"

	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/repository"
)

// Postgres 以 sheet_rows 表模拟工作表，行为与其余驱动一致：
// 第一行（position 最小）为表头，其余为数据行
type Postgres struct {
	repo *repository.Repository
}

// NewPostgres 创建 postgres 驱动
func NewPostgres(repo *repository.Repository) *Postgres {
	return &Postgres{repo: repo}
}

func (p *Postgres) ListRows(ctx context.Context, sheet string) ([][]string, error) {
	rows, err := p.repo.SheetRow.ListBySheet(ctx, sheet)
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string(r.Cells))
	}
	return out, nil
}

func (p *Postgres) EnsureSheet(ctx context.Context, sheet string, header []string) error {
	n, err := p.repo.SheetRow.CountBySheet(ctx, sheet)
	if err != nil || n > 0 {
		return err
	}
	_, err = p.repo.SheetRow.Append(ctx, sheet, header)
	return err
}

func (p *Postgres) AppendRow(ctx context.Context, sheet string, values []string) error {
	_, err := p.repo.SheetRow.Append(ctx, sheet, values)
	return err
}

func (p *Postgres) UpdateRow(ctx context.Context, sheet string, key RowKey, values []string) error {
	row, err := p.locate(ctx, sheet, key)
	if err != nil {
		return err
	}
	return p.repo.SheetRow.UpdateCells(ctx, row.RowID, mergeRow(row.Cells, values))
}

func (p *Postgres) DeleteRow(ctx context.Context, sheet string, key RowKey) error {
	row, err := p.locate(ctx, sheet, key)
	if err != nil {
		return err
	}
	return p.repo.SheetRow.Delete(ctx, row.RowID)
}

// locate 按主键找到对应的行记录
func (p *Postgres) locate(ctx context.Context, sheet string, key RowKey) (*model.SheetRow, error) {
	rows, err := p.repo.SheetRow.ListBySheet(ctx, sheet)
	if err != nil {
		return nil, err
	}
	grid := make([][]string, len(rows))
	for i, r := range rows {
		grid[i] = r.Cells
	}
	idx, err := findRow(grid, key)
	if err != nil {
		return nil, err
	}
	return &rows[idx], nil
}
