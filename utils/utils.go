/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package utils

import (
	"strings"
	"unicode"
)

// Must panic if err is not nil, otherwise return v
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

var (
	escaper      = strings.NewReplacer(`'`, `''`, `\`, `\\`, "\x00", `\0`)
	quoteEscaper = strings.NewReplacer(`'`, `''`)
)

// Escape 转义字符串中的单引号、反斜杠和NUL，用于反斜杠为转义符的数据库（MySQL）
func Escape(s string) string {
	return escaper.Replace(s)
}

// EscapeQuote 只转义单引号，用于标准SQL字符串字面量
func EscapeQuote(s string) string {
	return quoteEscaper.Replace(s)
}

// LowerCase 驼峰转小写下划线: UserName -> user_name, ID -> id
func LowerCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	sb := strings.Builder{}
	sb.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
