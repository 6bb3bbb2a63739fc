/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package dialect

import (
	"fmt"
	"strconv"

	"github.com/gnodux/sqlmark/utils"
)

// Kind 数据库类型（分页语法族）
type Kind int

const (
	KindUnknown Kind = iota
	KindMySQL
	KindPostgres
	KindOracle
	KindSQLServer
	KindSQLite
)

func (k Kind) String() string {
	switch k {
	case KindMySQL:
		return "MySQL"
	case KindPostgres:
		return "PostgreSQL"
	case KindOracle:
		return "Oracle"
	case KindSQLServer:
		return "SQLServer"
	case KindSQLite:
		return "SQLite"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// PlaceholderStyle 驱动参数占位符风格
type PlaceholderStyle int

const (
	// Question ?
	Question PlaceholderStyle = iota
	// Dollar $1,$2...
	Dollar
	// AtP @p1,@p2...
	AtP
	// ColonNumber :1,:2...
	ColonNumber
)

type Dialect struct {
	//驱动名称（mysql/sqlserver）等
	Name string
	//数据库类型
	Kind Kind
	//BackslashEscapes 字符串字面量中反斜杠是否为转义符（仅MySQL）
	BackslashEscapes bool
	//参数占位符
	PlaceHolder PlaceholderStyle
	//SQLNameFunc SQL名称转换函数
	SQLNameFunc func(any) string
	//NameFunc 字段名称转换函数
	NameFunc func(string) string
	//DateFormat 日期格式化
	DateFormat string
	//Keywords 关键字映射
	Keywords map[string]string
}

func (d *Dialect) Keyword(name string) string {
	if d.Keywords == nil {
		return name
	}
	if k, ok := d.Keywords[name]; ok {
		return k
	}
	return name
}
func (d *Dialect) KeywordWith(prefix string, kw string, suffix string) string {

	return prefix + d.Keyword(kw) + suffix
}
func (d *Dialect) KeywordWithSpace(kw string) string {
	return d.KeywordWith(" ", kw, " ")
}

// Placeholder renders the driver placeholder for the 1-based ordinal n.
func (d *Dialect) Placeholder(n int) string {
	switch d.PlaceHolder {
	case Dollar:
		return "$" + strconv.Itoa(n)
	case AtP:
		return "@p" + strconv.Itoa(n)
	case ColonNumber:
		return ":" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// QuoteString 将 s 渲染为单引号字符串字面量
func (d *Dialect) QuoteString(s string) string {
	if d.BackslashEscapes {
		return "'" + utils.Escape(s) + "'"
	}
	return "'" + utils.EscapeQuote(s) + "'"
}

func (d *Dialect) String() string {
	return d.Name
}
