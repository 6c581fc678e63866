package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/normalize"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// ══════════════════════════════════════════════════════════
// fakeBackend 内存表格后端（Reader + Writer）
// ══════════════════════════════════════════════════════════

type fakeBackend struct {
	mu       sync.Mutex
	sheets   map[string][][]string
	reads    int
	readErr  error
	writeErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{sheets: make(map[string][][]string)}
}

func (f *fakeBackend) ListRows(_ context.Context, sheet string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([][]string, len(f.sheets[sheet]))
	copy(out, f.sheets[sheet])
	return out, nil
}

func (f *fakeBackend) AppendRow(_ context.Context, sheet string, values []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.sheets[sheet] = append(f.sheets[sheet], values)
	return nil
}

func (f *fakeBackend) UpdateRow(_ context.Context, sheet string, key RowKey, values []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx, err := findRow(f.sheets[sheet], key)
	if err != nil {
		return err
	}
	f.sheets[sheet][idx] = values
	return nil
}

func (f *fakeBackend) DeleteRow(_ context.Context, sheet string, key RowKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx, err := findRow(f.sheets[sheet], key)
	if err != nil {
		return err
	}
	rows := f.sheets[sheet]
	f.sheets[sheet] = append(rows[:idx:idx], rows[idx+1:]...)
	return nil
}

func staffKey(sn string) RowKey {
	return RowKey{Schema: normalize.StaffSchema, Field: normalize.FieldSN, Value: sn}
}

// ══════════════════════════════════════════════════════════
// findRow
// ══════════════════════════════════════════════════════════

func TestFindRow_CanonicalMatch(t *testing.T) {
	rows := [][]string{
		{"S.N", "Name"},
		{"6", "Omar"},
		{"7.0", "Ali"},
	}
	idx, err := findRow(rows, staffKey("7"))
	if err != nil {
		t.Fatalf("期望定位成功，实际错误: %v", err)
	}
	if idx != 2 {
		t.Errorf("期望下标 2，实际 %d", idx)
	}
}

func TestFindRow_NotFound(t *testing.T) {
	rows := [][]string{{"SN", "Name"}, {"6", "Omar"}}
	if _, err := findRow(rows, staffKey("9")); !errors.Is(err, apperrors.ErrRowNotFound) {
		t.Errorf("期望 ErrRowNotFound，实际 %v", err)
	}
	if _, err := findRow(nil, staffKey("6")); !errors.Is(err, apperrors.ErrRowNotFound) {
		t.Errorf("空表期望 ErrRowNotFound，实际 %v", err)
	}
}

func TestFindRow_DegenerateKeyNeverMatches(t *testing.T) {
	rows := [][]string{{"SN", "Name"}, {"", "Ghost"}, {"nan", "Ghost2"}}
	for _, key := range []string{"", "NaN"} {
		if _, err := findRow(rows, staffKey(key)); !errors.Is(err, apperrors.ErrRowNotFound) {
			t.Errorf("退化主键 %q 期望 ErrRowNotFound，实际 %v", key, err)
		}
	}
}

// ══════════════════════════════════════════════════════════
// CSVExport
// ══════════════════════════════════════════════════════════

func TestCSVExport_ListRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export" || r.URL.Query().Get("format") != "csv" {
			t.Errorf("请求路径不符合预期: %s", r.URL.String())
		}
		if got := r.URL.Query().Get("sheet"); got != "Staff Roster" {
			t.Errorf("期望 sheet=Staff Roster，实际 %q", got)
		}
		w.Write([]byte("SN,Name,Unit\n7,\"Ali, Jr\",Ops\n8,Sara\n"))
	}))
	defer srv.Close()

	rows, err := NewCSVExport(srv.URL, time.Second).ListRows(context.Background(), "Staff Roster")
	if err != nil {
		t.Fatalf("期望读取成功，实际错误: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望 3 行，实际 %d", len(rows))
	}
	if rows[1][1] != "Ali, Jr" {
		t.Errorf("带逗号的字段解析错误: %q", rows[1][1])
	}
	if len(rows[2]) != 2 {
		t.Errorf("参差行应保持原长度，实际 %d", len(rows[2]))
	}
}

func TestCSVExport_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewCSVExport(srv.URL, time.Second).ListRows(context.Background(), "x"); err == nil {
		t.Fatal("期望 HTTP 403 返回错误")
	}
}

// ══════════════════════════════════════════════════════════
// Workbook
// ══════════════════════════════════════════════════════════

func TestWorkbook_RoundTrip(t *testing.T) {
	ctx := context.Background()
	wb := NewWorkbook(filepath.Join(t.TempDir(), "data", "book.xlsx"))
	sheet := "Staff Roster"

	if err := wb.EnsureSheet(ctx, sheet, model.StaffColumns); err != nil {
		t.Fatalf("EnsureSheet 失败: %v", err)
	}
	// 重复调用不应再写一遍表头
	if err := wb.EnsureSheet(ctx, sheet, model.StaffColumns); err != nil {
		t.Fatalf("EnsureSheet 失败: %v", err)
	}

	for _, row := range [][]string{
		{"7", "Sgt", "Ali", "Ops", "0501", ""},
		{"8", "Cpl", "Sara", "Ops", "0502", "Y"},
	} {
		if err := wb.AppendRow(ctx, sheet, row); err != nil {
			t.Fatalf("AppendRow 失败: %v", err)
		}
	}

	if err := wb.UpdateRow(ctx, sheet, staffKey("7.0"), []string{"7", "Sgt", "Ali Hassan", "Ops", "0501", ""}); err != nil {
		t.Fatalf("UpdateRow 失败: %v", err)
	}
	if err := wb.DeleteRow(ctx, sheet, staffKey("8")); err != nil {
		t.Fatalf("DeleteRow 失败: %v", err)
	}

	rows, err := wb.ListRows(ctx, sheet)
	if err != nil {
		t.Fatalf("ListRows 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望表头 + 1 行，实际 %d 行: %v", len(rows), rows)
	}
	if rows[0][0] != "SN" || rows[1][2] != "Ali Hassan" {
		t.Errorf("工作簿内容不符合预期: %v", rows)
	}
}

func TestWorkbook_MissingSheet(t *testing.T) {
	ctx := context.Background()
	wb := NewWorkbook(filepath.Join(t.TempDir(), "book.xlsx"))
	if err := wb.EnsureSheet(ctx, "Staff Roster", model.StaffColumns); err != nil {
		t.Fatalf("EnsureSheet 失败: %v", err)
	}
	if _, err := wb.ListRows(ctx, "Event Log"); err == nil {
		t.Error("读取不存在的工作表期望返回错误")
	}
}

// ══════════════════════════════════════════════════════════
// MemoryCache
// ══════════════════════════════════════════════════════════

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	c.Set(ctx, "s", [][]string{{"SN"}}, 5*time.Second)
	if _, ok := c.Get(ctx, "s"); !ok {
		t.Fatal("期望命中缓存")
	}

	now = now.Add(5 * time.Second)
	if _, ok := c.Get(ctx, "s"); ok {
		t.Error("TTL 到期后不应命中")
	}
}

// ══════════════════════════════════════════════════════════
// Gateway
// ══════════════════════════════════════════════════════════

func TestGateway_FetchWrapsError(t *testing.T) {
	backend := newFakeBackend()
	backend.readErr = errors.New("403 forbidden")
	gw := NewGateway(backend, backend, zap.NewNop())

	_, err := gw.Fetch(context.Background(), "Staff Roster")
	var fe *apperrors.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("期望 *FetchError，实际 %T", err)
	}
	if fe.Sheet != "Staff Roster" {
		t.Errorf("期望 Sheet=Staff Roster，实际 %q", fe.Sheet)
	}
}

func TestGateway_WriteInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	backend.sheets["Staff Roster"] = [][]string{model.StaffColumns}
	gw := NewGateway(backend, backend, zap.NewNop(), WithCache(NewMemoryCache(), time.Minute))

	if _, err := gw.Fetch(ctx, "Staff Roster"); err != nil {
		t.Fatalf("Fetch 失败: %v", err)
	}
	if _, err := gw.Fetch(ctx, "Staff Roster"); err != nil {
		t.Fatalf("Fetch 失败: %v", err)
	}
	if backend.reads != 1 {
		t.Errorf("第二次读取应命中缓存，实际后端读取 %d 次", backend.reads)
	}

	if err := gw.Append(ctx, "Staff Roster", []string{"7", "Sgt", "Ali", "Ops", "0501", ""}); err != nil {
		t.Fatalf("Append 失败: %v", err)
	}
	rows, err := gw.Fetch(ctx, "Staff Roster")
	if err != nil {
		t.Fatalf("Fetch 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("写入后读取应看到新行，实际 %d 行", len(rows))
	}
	if backend.reads != 2 {
		t.Errorf("写入后应重新读取后端，实际读取 %d 次", backend.reads)
	}
}

// stallingReader 首次读取先取快照，再等待放行后返回，模拟读取期间发生写入
type stallingReader struct {
	inner   *fakeBackend
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (r *stallingReader) ListRows(ctx context.Context, sheet string) ([][]string, error) {
	rows, err := r.inner.ListRows(ctx, sheet)
	stall := false
	r.once.Do(func() { stall = true })
	if stall {
		close(r.started)
		<-r.release
	}
	return rows, err
}

func TestGateway_StaleReadDoesNotRefillCache(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	backend.sheets["Staff Roster"] = [][]string{model.StaffColumns}
	reader := &stallingReader{inner: backend, started: make(chan struct{}), release: make(chan struct{})}
	gw := NewGateway(reader, backend, zap.NewNop(), WithCache(NewMemoryCache(), time.Minute))

	done := make(chan [][]string)
	go func() {
		rows, err := gw.Fetch(ctx, "Staff Roster")
		if err != nil {
			t.Errorf("Fetch 失败: %v", err)
		}
		done <- rows
	}()

	<-reader.started
	if err := gw.Append(ctx, "Staff Roster", []string{"7", "Sgt", "Ali", "Ops", "0501", ""}); err != nil {
		t.Fatalf("Append 失败: %v", err)
	}
	close(reader.release)

	if stale := <-done; len(stale) != 1 {
		t.Fatalf("进行中的读取应返回写入前的快照，实际 %d 行", len(stale))
	}

	rows, err := gw.Fetch(ctx, "Staff Roster")
	if err != nil {
		t.Fatalf("Fetch 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("写入前开始的读取不应回填缓存，随后读取应看到新行，实际 %d 行", len(rows))
	}
	if backend.reads != 2 {
		t.Errorf("随后读取应重新访问后端，实际读取 %d 次", backend.reads)
	}
}

func TestGateway_WriteErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("只读部署", func(t *testing.T) {
		gw := NewGateway(newFakeBackend(), nil, zap.NewNop())
		err := gw.Append(ctx, "s", []string{"1"})
		if !errors.Is(err, apperrors.ErrReadOnlyStore) {
			t.Errorf("期望 ErrReadOnlyStore，实际 %v", err)
		}
	})

	t.Run("后端拒绝", func(t *testing.T) {
		backend := newFakeBackend()
		backend.writeErr = errors.New("quota exceeded")
		gw := NewGateway(backend, backend, zap.NewNop())

		err := gw.Append(ctx, "s", []string{"1"})
		var we *apperrors.WriteError
		if !errors.As(err, &we) {
			t.Fatalf("期望 *WriteError，实际 %T", err)
		}
		if we.Op != OpAppend {
			t.Errorf("期望 Op=append，实际 %q", we.Op)
		}
	})

	t.Run("主键不存在", func(t *testing.T) {
		backend := newFakeBackend()
		backend.sheets["s"] = [][]string{{"SN", "Name"}}
		gw := NewGateway(backend, backend, zap.NewNop())

		err := gw.Delete(ctx, "s", staffKey("42"))
		if !errors.Is(err, apperrors.ErrRowNotFound) {
			t.Errorf("期望 ErrRowNotFound，实际 %v", err)
		}
	})
}

func TestMergeRow_KeepsExtraColumns(t *testing.T) {
	got := mergeRow([]string{"7", "Sgt", "Ali", "Ops", "0501", "", "Team Leader"}, []string{"7", "Sgt", "Ali H", "Ops", "0501", "Y"})
	want := []string{"7", "Sgt", "Ali H", "Ops", "0501", "Y", "Team Leader"}
	if len(got) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望 %v，实际 %v", want, got)
		}
	}
}
