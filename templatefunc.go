/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/gnodux/sqlmark/dialect"
)

// MakeFuncMap 模板函数。生成的文本随后交给 Scan 处理，因此 param/nwhere 输出的是 :{name} 标记。
func MakeFuncMap(driver *dialect.Dialect) template.FuncMap {
	return template.FuncMap{
		"where":      func(v any) string { return where(driver, v) },
		"namedWhere": func(v any) string { return namedWhere(driver, v) },
		"nwhere":     func(v any) string { return namedWhere(driver, v) },
		"v":          func(v any) string { return sqlValue(driver, v) },
		"n":          driver.SQLNameFunc,
		"sqlName":    driver.SQLNameFunc,
		"list":       func(v any) string { return sqlValues(driver, v) },
		"param":      param,
		"orderBy":    func(v []dialect.Order) string { return driver.OrderBy(v) },
		"driver":     func() string { return driver.Name },
		"dialect": func() string {
			return driver.Name
		},
	}
}

func param(name string) string {
	return ":{" + name + "}"
}

func namedWhere(driver *dialect.Dialect, v any) string {
	return whereWith(driver, v, driver.KeywordWithSpace("AND"), true)
}

func where(driver *dialect.Dialect, v any) string {
	return whereWith(driver, v, driver.KeywordWithSpace("AND"), false)
}

// whereWith 根据map/结构体的非零字段生成 WHERE 条件，named 为 true 时输出参数标记而不是字面量
func whereWith(driver *dialect.Dialect, arg any, op string, named bool) string {
	if arg == nil {
		return ""
	}
	argv := reflect.Indirect(reflect.ValueOf(arg))
	if op == "" {
		op = driver.KeywordWithSpace("AND")
	}
	if op[0] != ' ' {
		op = " " + op + " "
	}

	buf := strings.Builder{}
	buf.Grow(256)
	comma := driver.KeywordWithSpace("WHERE")
	// column 为字段名转换后的列名，key 为命名参数名（map 使用原始键，与 Bind 的查找一致）
	cond := func(column, key string, value any) {
		buf.WriteString(comma)
		buf.WriteString(driver.SQLNameFunc(column))
		if s, ok := value.(string); ok && strings.ContainsAny(s, "%_") {
			buf.WriteString(driver.KeywordWithSpace("LIKE"))
		} else {
			buf.WriteByte('=')
		}
		if named {
			buf.WriteString(param(key))
		} else {
			buf.WriteString(sqlValue(driver, value))
		}
		comma = op
	}

	switch argv.Kind() {
	case reflect.Map:
		keys := argv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			cond(driver.NameFunc(k.String()), k.String(), argv.MapIndex(k).Interface())
		}
	case reflect.Struct:
		typ := argv.Type()
		for i := 0; i < argv.NumField(); i++ {
			field := argv.Field(i)
			if !typ.Field(i).IsExported() || field.IsZero() {
				continue
			}
			name := driver.NameFunc(typ.Field(i).Name)
			cond(name, name, field.Interface())
		}
	}
	if buf.Len() == 0 {
		return ""
	}
	buf.WriteByte(' ')
	return buf.String()
}

// sqlValues list of sqlValues
func sqlValues(driver *dialect.Dialect, v any) string {
	value := reflect.ValueOf(v)
	sb := &strings.Builder{}
	sb.Grow(64)

	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		for idx := 0; idx < value.Len(); idx++ {
			if idx > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(sqlValue(driver, value.Index(idx).Interface()))
		}
	default:
		sb.WriteString(sqlValue(driver, v))
	}
	return sb.String()
}

// sqlValue sql value converter(sql inject process)
func sqlValue(driver *dialect.Dialect, arg any) string {
	switch a := arg.(type) {
	case nil:
		return driver.Keyword("NULL")
	case string:
		return driver.QuoteString(a)
	case *string:
		if a == nil {
			return driver.Keyword("NULL")
		}
		return driver.QuoteString(*a)
	case time.Time:
		return a.Format(driver.DateFormat)
	case *time.Time:
		if a == nil {
			return driver.Keyword("NULL")
		}
		return a.Format(driver.DateFormat)
	case bool:
		if a {
			return driver.Keyword("TRUE")
		}
		return driver.Keyword("FALSE")
	case uint, uint8, uint16, uint32, uint64, int, int8, int16, int32, int64, float32, float64:
		return fmt.Sprintf("%v", a)
	default:
		return driver.QuoteString(fmt.Sprintf("%v", a))
	}
}
