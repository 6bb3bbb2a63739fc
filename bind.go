/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/cookieY/sqlx/reflectx"
	"github.com/gnodux/sqlmark/dialect"
)

var mapper = reflectx.NewMapperFunc("db", NameFunc)

// Bind 按序号为每个占位符取值。
// 命名参数从 named 中取值（map[string]any、任意 string 键的 map，或带 db 标签的结构体），
// 位置参数依次从 positional 中取值。取不到值、位置参数不足或多余时返回
// *ParameterBindingMismatchError。
func Bind(ps *ParameterizedSQL, named any, positional ...any) ([]any, error) {
	lookup := namedLookup(named)
	args := make([]any, 0, len(ps.Parameters))
	next := 0
	for _, p := range ps.Parameters {
		if !p.HasName() {
			if next >= len(positional) {
				return nil, &ParameterBindingMismatchError{Ordinal: p.Ordinal, Reason: "not enough positional arguments"}
			}
			args = append(args, positional[next])
			next++
			continue
		}
		v, ok := lookup(p.Name)
		if !ok {
			return nil, &ParameterBindingMismatchError{Ordinal: p.Ordinal, Name: p.Name, Reason: "no value supplied"}
		}
		args = append(args, v)
	}
	if next < len(positional) {
		return nil, &ParameterBindingMismatchError{
			Ordinal: len(ps.Parameters),
			Reason:  fmt.Sprintf("%d positional arguments supplied, %d used", len(positional), next),
		}
	}
	return args, nil
}

func namedLookup(named any) func(string) (any, bool) {
	if m, ok := named.(map[string]any); ok {
		return func(name string) (any, bool) {
			v, ok := m[name]
			return v, ok
		}
	}
	v := reflect.ValueOf(named)
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			break
		}
		v = v.Elem()
	}
	switch {
	case v.IsValid() && v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String:
		keyT := v.Type().Key()
		return func(name string) (any, bool) {
			mv := v.MapIndex(reflect.ValueOf(name).Convert(keyT))
			if !mv.IsValid() {
				return nil, false
			}
			return mv.Interface(), true
		}
	case v.IsValid() && v.Kind() == reflect.Struct:
		tm := mapper.TypeMap(v.Type())
		return func(name string) (any, bool) {
			fi, ok := tm.Names[name]
			if !ok {
				return nil, false
			}
			return fieldByIndex(v, fi.Index), true
		}
	default:
		return func(string) (any, bool) { return nil, false }
	}
}

// fieldByIndex follows index through embedded structs; a nil pointer on the way is NULL.
func fieldByIndex(v reflect.Value, index []int) any {
	for _, i := range index {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v.Interface()
}

// isNamedSource reports whether v can serve named parameters (and template data):
// a string keyed map or a struct that is not itself a driver value.
func isNamedSource(v any) bool {
	switch v.(type) {
	case nil, driver.Valuer, time.Time, *time.Time, []byte:
		return false
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return (t.Kind() == reflect.Map && t.Key().Kind() == reflect.String) || t.Kind() == reflect.Struct
}

// splitParams separates an optional leading named source from positional arguments.
func splitParams(params []any) (any, []any) {
	if len(params) > 0 && isNamedSource(params[0]) {
		return params[0], params[1:]
	}
	return nil, params
}

// Rebind 将最终SQL中的 '?' 转换为驱动的占位符风格（$1、@p1、:1）。
// 占位符位置取自 params 的 Offset，shift 为包装（分页、统计）在语句前增加的长度；
// 不重新扫描SQL，因此 :a||'x'、:a?、:a:b 之类紧邻的写法同样可以正确转换。
func Rebind(sql string, d *dialect.Dialect, params []ParameterDescriptor, shift int) (string, error) {
	if d == nil {
		return "", ErrNilDriver
	}
	prev := -1
	for _, p := range params {
		at := p.Offset + shift
		if at <= prev || at >= len(sql) || sql[at] != '?' {
			return "", fmt.Errorf("%w: placeholder #%d not found at offset %d", ErrParameterBindingMismatch, p.Ordinal, at)
		}
		prev = at
	}
	if d.PlaceHolder == dialect.Question {
		return sql, nil
	}
	sb := strings.Builder{}
	sb.Grow(len(sql) + len(params)*3)
	last := 0
	for i, p := range params {
		at := p.Offset + shift
		sb.WriteString(sql[last:at])
		sb.WriteString(d.Placeholder(i + 1))
		last = at + 1
	}
	sb.WriteString(sql[last:])
	return sb.String(), nil
}
