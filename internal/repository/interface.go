package repository

import (
	"context"
	"errors"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"gorm.io/gorm"
)

// 战绩分页上限
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination 分页参数，Total 由查询回填
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// NewPagination 页码从 1 开始，页大小落在 [1, MaxPageSize]
func NewPagination(page, pageSize int) *Pagination {
	if page <= 0 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return &Pagination{Page: page, PageSize: pageSize}
}

func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Pages 总页数；没有记录时仍算一页
func (p *Pagination) Pages() int64 {
	if p.PageSize <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + int64(p.PageSize) - 1) / int64(p.PageSize)
}

// Paginate gorm scope
func Paginate(p *Pagination) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

// BaseRepo 各仓储共用的连接
type BaseRepo struct {
	db *gorm.DB
}

func NewBaseRepo(db *gorm.DB) *BaseRepo {
	return &BaseRepo{db: db}
}

// Transaction fn 返回错误即回滚；业务错误原样返回，驱动错误包装为 ErrDatabaseUpdate
func (r *BaseRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Wrap(err, apperr.ErrDatabaseUpdate, "事务执行失败")
}
