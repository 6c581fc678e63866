package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// 写操作名称，出现在 WriteError.Op 与日志中
const (
	OpAppend = "append"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Gateway 业务层访问表格的唯一入口：
// 统一施加超时，把驱动错误转换为 FetchError / WriteError，
// 并在写入成功后使对应工作表的读缓存失效，保证随后的读取能看到本次写入。
type Gateway struct {
	reader  Reader
	writer  Writer // 可为 nil，表示只读部署
	cache   Cache  // 可为 nil，表示不缓存
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger

	// gen 每张表的失效代数，Invalidate 递增；读取期间代数变化则结果不回填缓存
	mu  sync.Mutex
	gen map[string]uint64
}

// GatewayOption 可选配置
type GatewayOption func(*Gateway)

// WithCache 启用读缓存
func WithCache(c Cache, ttl time.Duration) GatewayOption {
	return func(g *Gateway) {
		if ttl > 0 {
			g.cache, g.ttl = c, ttl
		}
	}
}

// WithTimeout 覆盖单次后端调用的超时
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// NewGateway 创建访问网关
func NewGateway(reader Reader, writer Writer, logger *zap.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		reader:  reader,
		writer:  writer,
		timeout: 10 * time.Second,
		logger:  logger,
		gen:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Writable 是否配置了写入驱动
func (g *Gateway) Writable() bool { return g.writer != nil }

// ──── 读取 ────

// Fetch 读取整张工作表（含表头），失败时返回 *FetchError
func (g *Gateway) Fetch(ctx context.Context, sheet string) ([][]string, error) {
	if g.cache != nil {
		if rows, ok := g.cache.Get(ctx, sheet); ok {
			return rows, nil
		}
	}

	gen := g.generation(sheet)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	rows, err := g.reader.ListRows(ctx, sheet)
	if err != nil {
		g.logger.Warn("读取工作表失败", zap.String("sheet", sheet), zap.Error(err))
		return nil, &apperrors.FetchError{Sheet: sheet, Err: err}
	}

	g.logger.Debug("读取工作表",
		zap.String("sheet", sheet),
		zap.Int("rows", len(rows)),
		zap.Duration("latency", time.Since(start)),
	)

	if g.cache != nil {
		g.mu.Lock()
		if g.gen[sheet] == gen {
			g.cache.Set(ctx, sheet, rows, g.ttl)
		} else {
			g.logger.Debug("读取期间工作表已被写入，结果不回填缓存", zap.String("sheet", sheet))
		}
		g.mu.Unlock()
	}
	return rows, nil
}

// Invalidate 使若干工作表的读缓存失效，并作废尚在进行中的读取的回填
func (g *Gateway) Invalidate(ctx context.Context, sheets ...string) {
	if g.cache == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, sheet := range sheets {
		g.gen[sheet]++
	}
	g.cache.Delete(ctx, sheets...)
}

func (g *Gateway) generation(sheet string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[sheet]
}

// ──── 写入 ────

// Append 追加一行，values 必须已按规范列顺序排列
func (g *Gateway) Append(ctx context.Context, sheet string, values []string) error {
	return g.write(ctx, sheet, OpAppend, func(ctx context.Context, w Writer) error {
		return w.AppendRow(ctx, sheet, values)
	})
}

// Update 覆盖主键所在行
func (g *Gateway) Update(ctx context.Context, sheet string, key RowKey, values []string) error {
	return g.write(ctx, sheet, OpUpdate, func(ctx context.Context, w Writer) error {
		return w.UpdateRow(ctx, sheet, key, values)
	})
}

// Delete 删除主键所在行
func (g *Gateway) Delete(ctx context.Context, sheet string, key RowKey) error {
	return g.write(ctx, sheet, OpDelete, func(ctx context.Context, w Writer) error {
		return w.DeleteRow(ctx, sheet, key)
	})
}

// EnsureSheet 工作表为空时写入表头；驱动不支持时忽略
func (g *Gateway) EnsureSheet(ctx context.Context, sheet string, header []string) error {
	b, ok := g.writer.(Bootstrapper)
	if !ok {
		return nil
	}
	return g.write(ctx, sheet, "bootstrap", func(ctx context.Context, _ Writer) error {
		return b.EnsureSheet(ctx, sheet, header)
	})
}

func (g *Gateway) write(ctx context.Context, sheet, op string, fn func(context.Context, Writer) error) error {
	if g.writer == nil {
		return &apperrors.WriteError{Sheet: sheet, Op: op, Err: apperrors.ErrReadOnlyStore}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := fn(ctx, g.writer); err != nil {
		g.logger.Error("写入工作表失败",
			zap.String("sheet", sheet),
			zap.String("op", op),
			zap.Error(err),
		)
		return &apperrors.WriteError{Sheet: sheet, Op: op, Err: err}
	}

	g.logger.Info("写入工作表成功", zap.String("sheet", sheet), zap.String("op", op))
	g.Invalidate(context.WithoutCancel(ctx), sheet)
	return nil
}
