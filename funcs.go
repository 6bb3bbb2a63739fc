/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"context"

	"github.com/gnodux/sqlmark/dialect"
)

// Page 分页查询结果
type Page[T any] struct {
	Items    []T                 `json:"items"`
	Total    int64               `json:"total"`
	Request  dialect.PageRequest `json:"-"`
	PageSize int                 `json:"pageSize"`
	Current  int                 `json:"current"`
}

// TotalPages 总页数
func (p *Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// HasNext whether a page exists after the current one
func (p *Page[T]) HasNext() bool {
	return p.Current < p.TotalPages()
}

// SelectPage 分页查询并返回 Page
func SelectPage[T any](ctx context.Context, db *DB, id string, req dialect.PageRequest, params ...any) (*Page[T], error) {
	var items []T
	total, err := db.SelectPage(ctx, &items, id, req, params...)
	if err != nil {
		return nil, err
	}
	return &Page[T]{
		Items:    items,
		Total:    total,
		Request:  req,
		PageSize: req.PageSize,
		Current:  req.CurrentPage(),
	}, nil
}

// NewSelectFunc 创建查询函数，每次调用时从管理器获取数据库 dbName
func NewSelectFunc[T any](dbName, id string) func(params ...any) ([]T, error) {
	return func(params ...any) ([]T, error) {
		db, err := Get(dbName)
		if err != nil {
			return nil, err
		}
		var items []T
		err = db.SelectEx(&items, id, params...)
		return items, err
	}
}

// NewNamedSelectFunc 创建以命名参数（map/结构体）查询的函数
func NewNamedSelectFunc[T any](dbName, id string) func(arg any) ([]T, error) {
	fn := NewSelectFunc[T](dbName, id)
	return func(arg any) ([]T, error) {
		return fn(arg)
	}
}

// NewGetFunc 创建查询单行的函数
func NewGetFunc[T any](dbName, id string) func(params ...any) (T, error) {
	return func(params ...any) (T, error) {
		var item T
		db, err := Get(dbName)
		if err != nil {
			return item, err
		}
		err = db.GetEx(&item, id, params...)
		return item, err
	}
}
