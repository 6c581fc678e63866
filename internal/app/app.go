// Package app 按配置组装表格后端，供 HTTP 服务与命令行工具共用。
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/repository"
	"github.com/amjey/staff-tracker/internal/store"
	"github.com/amjey/staff-tracker/pkg/database"
	"github.com/amjey/staff-tracker/pkg/redis"
)

// Backend 组装好的访问网关及其持有的连接
type Backend struct {
	Gateway *store.Gateway
	db      *gorm.DB
}

// Close 释放数据库连接（仅 postgres 驱动持有）
func (b *Backend) Close() {
	if b.db == nil {
		return
	}
	if sqlDB, err := b.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// OpenBackend 按 reader_driver / writer_driver 创建驱动并包装为 Gateway。
// 读写使用同一驱动时共享一个实例；rdb 为 nil 时读缓存退回进程内实现。
func OpenBackend(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (*Backend, error) {
	b := &Backend{}
	drivers := make(map[string]interface{}, 2)

	open := func(name string) (interface{}, error) {
		if d, ok := drivers[name]; ok {
			return d, nil
		}
		d, err := b.openDriver(ctx, cfg, name, logger)
		if err != nil {
			return nil, err
		}
		drivers[name] = d
		return d, nil
	}

	rd, err := open(cfg.Store.ReaderDriver)
	if err != nil {
		b.Close()
		return nil, err
	}
	reader, ok := rd.(store.Reader)
	if !ok {
		b.Close()
		return nil, fmt.Errorf("驱动 %s 不支持读取", cfg.Store.ReaderDriver)
	}

	// 只读部署保持 writer 为 nil 接口，Gateway 据此拒绝写入
	var writer store.Writer
	if !cfg.ReadOnly() {
		wd, err := open(cfg.Store.WriterDriver)
		if err != nil {
			b.Close()
			return nil, err
		}
		w, ok := wd.(store.Writer)
		if !ok {
			b.Close()
			return nil, fmt.Errorf("驱动 %s 不支持写入", cfg.Store.WriterDriver)
		}
		writer = w
	}

	var cache store.Cache = store.NewMemoryCache()
	if rdb != nil {
		cache = store.NewRedisCache(rdb)
	}

	b.Gateway = store.NewGateway(reader, writer, logger,
		store.WithCache(cache, cfg.Cache.TTL),
		store.WithTimeout(cfg.Store.Timeout),
	)

	logger.Info("表格后端就绪",
		zap.String("reader", cfg.Store.ReaderDriver),
		zap.String("writer", cfg.Store.WriterDriver),
		zap.Bool("writable", b.Gateway.Writable()),
		zap.Bool("redis_cache", rdb != nil),
	)
	return b, nil
}

func (b *Backend) openDriver(ctx context.Context, cfg *config.Config, name string, logger *zap.Logger) (interface{}, error) {
	switch name {
	case config.DriverCSV:
		return store.NewCSVExport(cfg.Store.ExportURL(), cfg.Store.Timeout), nil

	case config.DriverSheets:
		api, err := store.NewSheetsAPI(ctx, cfg.Store.SpreadsheetID, cfg.Store.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("初始化表格 API 失败: %w", err)
		}
		return api, nil

	case config.DriverWorkbook:
		return store.NewWorkbook(cfg.Store.WorkbookPath), nil

	case config.DriverPostgres:
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, fmt.Errorf("数据库连接失败: %w", err)
		}
		b.db = db

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
		return store.NewPostgres(repository.NewRepository(db)), nil
	}
	return nil, fmt.Errorf("不支持的表格驱动 %q", name)
}
