package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/store"
)

// ── 测试辅助 ──

const (
	testStaffSheet = "Staff Roster"
	testEventSheet = "Event Log"
)

var testStaffRows = [][]string{
	{"SN", "Rank", "Name", "Unit", "Contact", "LeaderBadge"},
	{"7", "Team Leader", "Ali", "Ops", "0501234567.0", "Y"},
	{"8", "Driver", "Sara", "Ops", "0507654321", ""},
	{"9", "Volunteer", "Omar", "Logistics", "", ""},
}

var testEventRows = [][]string{
	{"SN", "EventName", "Location", "Date", "Duration", "Group"},
	{"7.0", "Fireworks", "Corniche", "2026-01-01", "90 mins", "New Year"},
	{"8", "Fireworks", "Corniche", "2026-01-01", "60", "New Year"},
	{"7", "Parade", "Old Town", "2026-12-02", "120", "National Day"},
	{"42", "Parade", "Old Town", "2026-12-02", "30", "National Day"},
	{"7", "Lantern Walk", "Marina", "not a date", "15", ""},
}

func newTestConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{
			StaffSheet: testStaffSheet,
			EventSheet: testEventSheet,
			Timeout:    5 * time.Second,
		},
		Auth: config.AuthConfig{
			Password:   "fireworks-2026",
			JWTSecret:  "test-secret-key-for-unit-testing-2026",
			SessionTTL: 8 * time.Hour,
		},
		App: config.AppConfig{Timezone: "Asia/Dubai", TopN: 10},
	}
}

// newTestWorkbook 在临时目录创建工作簿并写入两张表
func newTestWorkbook(t *testing.T, staff, events [][]string) *store.Workbook {
	t.Helper()
	ctx := context.Background()
	wb := store.NewWorkbook(filepath.Join(t.TempDir(), "staff.xlsx"))

	seed := func(sheet string, rows [][]string) {
		if len(rows) == 0 {
			if err := wb.EnsureSheet(ctx, sheet, nil); err != nil {
				t.Fatalf("初始化工作表失败: %v", err)
			}
			return
		}
		if err := wb.EnsureSheet(ctx, sheet, rows[0]); err != nil {
			t.Fatalf("初始化工作表失败: %v", err)
		}
		for _, r := range rows[1:] {
			if err := wb.AppendRow(ctx, sheet, r); err != nil {
				t.Fatalf("写入测试数据失败: %v", err)
			}
		}
	}
	seed(testStaffSheet, staff)
	seed(testEventSheet, events)
	return wb
}

// setupTestService 基于临时工作簿构造完整的 Service，开启读缓存以覆盖写后读一致性
func setupTestService(t *testing.T, staff, events [][]string) (*Service, *store.Workbook) {
	t.Helper()
	wb := newTestWorkbook(t, staff, events)
	gw := store.NewGateway(wb, wb, zap.NewNop(), store.WithCache(store.NewMemoryCache(), time.Minute))
	return NewService(newTestConfig(), gw, nil, nil, zap.NewNop()), wb
}

// failingReader 对指定工作表返回错误，其余委托给内部 Reader
type failingReader struct {
	inner store.Reader
	sheet string
}

func (r failingReader) ListRows(ctx context.Context, sheet string) ([][]string, error) {
	if sheet == r.sheet {
		return nil, errors.New("403 forbidden")
	}
	return r.inner.ListRows(ctx, sheet)
}
