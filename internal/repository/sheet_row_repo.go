package repository

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amjey/staff-tracker/internal/model"
)

// SheetRowRepository 表格行数据访问接口
type SheetRowRepository interface {
	ListBySheet(ctx context.Context, sheet string) ([]model.SheetRow, error)
	Append(ctx context.Context, sheet string, cells []string) (*model.SheetRow, error)
	UpdateCells(ctx context.Context, rowID string, cells []string) error
	Delete(ctx context.Context, rowID string) error
	CountBySheet(ctx context.Context, sheet string) (int64, error)
}

type sheetRowRepo struct {
	db *gorm.DB
}

// NewSheetRowRepo 创建 SheetRowRepository 实例
func NewSheetRowRepo(db *gorm.DB) SheetRowRepository {
	return &sheetRowRepo{db: db}
}

func (r *sheetRowRepo) ListBySheet(ctx context.Context, sheet string) ([]model.SheetRow, error) {
	var rows []model.SheetRow
	err := r.db.WithContext(ctx).
		Where("sheet = ?", sheet).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

// Append 在事务内取当前最大行序并追加；对同一工作表的并发追加以行锁串行化
func (r *sheetRowRepo) Append(ctx context.Context, sheet string, cells []string) (*model.SheetRow, error) {
	row := &model.SheetRow{Sheet: sheet, Cells: pq.StringArray(cells)}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last model.SheetRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Unscoped().
			Where("sheet = ?", sheet).
			Order("position DESC").
			Limit(1).
			Find(&last).Error
		if err != nil {
			return err
		}
		if last.RowID != "" {
			row.Position = last.Position + 1
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *sheetRowRepo) UpdateCells(ctx context.Context, rowID string, cells []string) error {
	result := r.db.WithContext(ctx).
		Model(&model.SheetRow{}).
		Where("row_id = ?", rowID).
		Updates(map[string]interface{}{
			"cells":      pq.StringArray(cells),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sheetRowRepo) Delete(ctx context.Context, rowID string) error {
	result := r.db.WithContext(ctx).
		Where("row_id = ?", rowID).
		Delete(&model.SheetRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sheetRowRepo) CountBySheet(ctx context.Context, sheet string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.SheetRow{}).
		Where("sheet = ?", sheet).
		Count(&n).Error
	return n, err
}
