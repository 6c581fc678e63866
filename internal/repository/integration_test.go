//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "未设置 TEST_DATABASE_DSN，跳过集成测试")
		os.Exit(0)
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.AutoMigrate(&model.SheetRow{}); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// uniqueSheet 每个用例使用独立的工作表名，返回清理函数
func uniqueSheet(t *testing.T) (string, func()) {
	t.Helper()
	sheet := fmt.Sprintf("test-%d", time.Now().UnixNano())
	return sheet, func() {
		testDB.Unscoped().Where("sheet = ?", sheet).Delete(&model.SheetRow{})
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Append / List
// ═══════════════════════════════════════════════════════════

func TestSheetRowRepo_AppendKeepsOrder(t *testing.T) {
	sheet, cleanup := uniqueSheet(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	for _, cells := range [][]string{
		{"SN", "Name"},
		{"7", "Ali"},
		{"8", "Sara"},
	} {
		if _, err := repo.SheetRow.Append(ctx, sheet, cells); err != nil {
			t.Fatalf("Append 失败: %v", err)
		}
	}

	rows, err := repo.SheetRow.ListBySheet(ctx, sheet)
	if err != nil {
		t.Fatalf("ListBySheet 失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望 3 行，实际 %d", len(rows))
	}
	for i, r := range rows {
		if r.Position != int64(i) {
			t.Errorf("第 %d 行 position 期望 %d，实际 %d", i, i, r.Position)
		}
	}
	if rows[2].Cells[1] != "Sara" {
		t.Errorf("最后一行期望 Sara，实际 %v", rows[2].Cells)
	}
}

func TestSheetRowRepo_DeleteIsSoft(t *testing.T) {
	sheet, cleanup := uniqueSheet(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	row, err := repo.SheetRow.Append(ctx, sheet, []string{"7", "Ali"})
	if err != nil {
		t.Fatalf("Append 失败: %v", err)
	}
	if err := repo.SheetRow.Delete(ctx, row.RowID); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}

	n, err := repo.SheetRow.CountBySheet(ctx, sheet)
	if err != nil {
		t.Fatalf("CountBySheet 失败: %v", err)
	}
	if n != 0 {
		t.Errorf("软删除后期望 0 行可见，实际 %d", n)
	}

	// 已删除行仍占用行序，新行不会复用
	next, err := repo.SheetRow.Append(ctx, sheet, []string{"8", "Sara"})
	if err != nil {
		t.Fatalf("Append 失败: %v", err)
	}
	if next.Position != row.Position+1 {
		t.Errorf("期望 position %d，实际 %d", row.Position+1, next.Position)
	}

	if err := repo.SheetRow.Delete(ctx, row.RowID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("重复删除期望 ErrRecordNotFound，实际 %v", err)
	}
}

func TestSheetRowRepo_UpdateCells(t *testing.T) {
	sheet, cleanup := uniqueSheet(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	row, err := repo.SheetRow.Append(ctx, sheet, []string{"7", "Ali"})
	if err != nil {
		t.Fatalf("Append 失败: %v", err)
	}
	if err := repo.SheetRow.UpdateCells(ctx, row.RowID, []string{"7", "Ali Hassan"}); err != nil {
		t.Fatalf("UpdateCells 失败: %v", err)
	}

	rows, _ := repo.SheetRow.ListBySheet(ctx, sheet)
	if len(rows) != 1 || rows[0].Cells[1] != "Ali Hassan" {
		t.Errorf("更新未生效: %+v", rows)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	sheet, cleanup := uniqueSheet(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	if _, err := txRepo.SheetRow.Append(ctx, sheet, []string{"SN"}); err != nil {
		tx.Rollback()
		t.Fatalf("事务内 Append 失败: %v", err)
	}
	tx.Rollback()

	n, _ := repo.SheetRow.CountBySheet(ctx, sheet)
	if n != 0 {
		t.Fatalf("期望回滚后查不到行，实际 %d", n)
	}
}
