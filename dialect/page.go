/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package dialect

import (
	"fmt"
	"math"
	"strings"
)

// Direction 排序方向
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// ParseDirection 从字符串解析排序方向（不区分大小写）
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case ASC:
		return ASC, nil
	case DESC:
		return DESC, nil
	}
	return "", fmt.Errorf("%w: %q, has to be either 'desc' or 'asc'", ErrInvalidDirection, s)
}

// Order 排序表达式
type Order struct {
	Field     string
	Direction Direction
}

func Asc(field string) Order {
	return Order{Field: field, Direction: ASC}
}

func Desc(field string) Order {
	return Order{Field: field, Direction: DESC}
}

// PageRequest 分页请求。PageIndex 从1开始，为0时使用 Offset。
type PageRequest struct {
	PageIndex int
	Offset    int
	PageSize  int
	Sort      []Order
}

// Page request by 1-based page index
func Page(index, size int, sort ...Order) PageRequest {
	return PageRequest{PageIndex: index, PageSize: size, Sort: sort}
}

// Range request by raw row offset
func Range(offset, size int, sort ...Order) PageRequest {
	return PageRequest{Offset: offset, PageSize: size, Sort: sort}
}

func (r PageRequest) Validate() error {
	if r.PageSize < 1 {
		return fmt.Errorf("%w: page size %d, must be >= 1", ErrInvalidPageRequest, r.PageSize)
	}
	if r.PageIndex < 0 {
		return fmt.Errorf("%w: page index %d, must be >= 1", ErrInvalidPageRequest, r.PageIndex)
	}
	if r.Offset < 0 {
		return fmt.Errorf("%w: offset %d, must be >= 0", ErrInvalidPageRequest, r.Offset)
	}
	// 起止行号都以整数字面量写入SQL，不能溢出
	if r.PageIndex > 1 && r.PageIndex-1 > math.MaxInt/r.PageSize {
		return fmt.Errorf("%w: page %d of size %d is out of range", ErrInvalidPageRequest, r.PageIndex, r.PageSize)
	}
	if r.Start() > math.MaxInt-r.PageSize {
		return fmt.Errorf("%w: rows %d+%d are out of range", ErrInvalidPageRequest, r.Start(), r.PageSize)
	}
	for _, o := range r.Sort {
		if o.Field == "" {
			return fmt.Errorf("%w: empty sort field", ErrInvalidPageRequest)
		}
		if o.Direction != "" && o.Direction != ASC && o.Direction != DESC {
			return fmt.Errorf("%w: %q", ErrInvalidDirection, o.Direction)
		}
	}
	return nil
}

// Start 计算起始行偏移
func (r PageRequest) Start() int {
	if r.PageIndex > 0 {
		return (r.PageIndex - 1) * r.PageSize
	}
	return r.Offset
}

// CurrentPage 1-based page number, derived from Offset when no index was given
func (r PageRequest) CurrentPage() int {
	if r.PageIndex > 0 {
		return r.PageIndex
	}
	if r.PageSize < 1 {
		return 1
	}
	return r.Offset/r.PageSize + 1
}
