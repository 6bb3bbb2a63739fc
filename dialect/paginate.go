/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Paginate wraps an already rewritten statement in this dialect's paging syntax.
// The statement is treated as an opaque subquery: no bind markers are added or removed,
// bounds are written as integer literals. When req.Sort is given, a trailing ORDER BY of
// sql is moved out to the wrapping query.
func (d *Dialect) Paginate(sql string, req PageRequest) (string, error) {
	s, _, err := d.PaginateAt(sql, req)
	return s, err
}

// PaginateAt is Paginate that also reports the byte offset at which sql starts in the result.
// Only the tail of sql is ever trimmed, so every bind marker keeps its position shifted by that offset.
func (d *Dialect) PaginateAt(sql string, req PageRequest) (string, int, error) {
	if err := req.Validate(); err != nil {
		return "", 0, err
	}
	offset := req.Start()
	size := req.PageSize
	order := d.OrderBy(req.Sort)
	inner := subquery(sql, order != "")

	sb := &strings.Builder{}
	sb.Grow(len(inner) + 128)
	at := 0
	switch d.Kind {
	case KindMySQL:
		at = wrap(sb, inner, true, order)
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(offset))
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(size))
	case KindPostgres, KindSQLite:
		at = wrap(sb, inner, true, order)
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(size))
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(offset))
	case KindSQLServer:
		at = wrap(sb, inner, true, order)
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(offset))
		sb.WriteString(" ROWS FETCH NEXT ")
		sb.WriteString(strconv.Itoa(size))
		sb.WriteString(" ROWS ONLY")
	case KindOracle:
		// oracle has no "AS" for table aliases
		sb.WriteString("SELECT * FROM (SELECT O.*, ROWNUM RN FROM (")
		at = wrap(sb, inner, false, order)
		sb.WriteString(") O WHERE ROWNUM <= ")
		sb.WriteString(strconv.Itoa(offset + size))
		sb.WriteString(") WHERE RN > ")
		sb.WriteString(strconv.Itoa(offset))
	default:
		return "", 0, &UnknownDialectError{ProductName: d.Name}
	}
	return sb.String(), at, nil
}

// CheckPage validates req and rejects requests this dialect cannot page:
// SQL Server only accepts OFFSET/FETCH after an ORDER BY, and not inside a derived table.
func (d *Dialect) CheckPage(req PageRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if d.Kind == KindSQLServer && len(req.Sort) == 0 {
		return fmt.Errorf("%w: %s needs a sort to page with OFFSET/FETCH", ErrInvalidPageRequest, d.Name)
	}
	return nil
}

// CountSQL 生成统计总数的SQL，末尾不含参数的 ORDER BY 会被去掉
func CountSQL(sql string) string {
	s, _ := CountSQLAt(sql)
	return s
}

const countPrefix = "SELECT COUNT(1) FROM ("

// CountSQLAt is CountSQL that also reports the byte offset at which sql starts in the result.
func CountSQLAt(sql string) (string, int) {
	return countPrefix + subquery(sql, true) + ") " + OuterAlias, len(countPrefix)
}

// wrap returns the offset of inner in sb
func wrap(sb *strings.Builder, inner string, as bool, order string) int {
	sb.WriteString("SELECT * FROM (")
	at := sb.Len()
	sb.WriteString(inner)
	if as {
		sb.WriteString(") AS ")
	} else {
		sb.WriteString(") ")
	}
	sb.WriteString(OuterAlias)
	if order != "" {
		sb.WriteByte(' ')
		sb.WriteString(order)
	}
	return at
}

// subquery prepares sql for embedding in parentheses: trailing blanks and ';' are cut,
// a dangling "--" comment gets its newline back, and with dropOrder the last
// top-level ORDER BY is removed when it is safe to do so.
func subquery(sql string, dropOrder bool) string {
	s := strings.TrimRight(sql, " \t\r\n;")
	info := inspect(s)
	if dropOrder && info.orderBy >= 0 {
		s = strings.TrimRight(s[:info.orderBy], " \t\r\n")
		info = inspect(s)
	}
	if info.openLineComment {
		s += "\n"
	}
	return s
}

type statementInfo struct {
	// orderBy offset of a removable trailing ORDER BY, -1 if none
	orderBy         int
	openLineComment bool
}

// inspect walks sql skipping quoted text and comments, tracking parenthesis depth.
// A trailing ORDER BY is only reported as removable when nothing after it binds a
// parameter or limits rows.
func inspect(sql string) statementInfo {
	info := statementInfo{orderBy: -1}
	depth := 0
	last := -1
	removable := false
	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(sql, i, c)
			continue
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return statementInfo{orderBy: -1}
			}
			i += 2 + end + 2
			continue
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				info.openLineComment = true
				i = len(sql)
			} else {
				i += end + 1
			}
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '?':
			removable = false
		case isWordChar(c) && (i == 0 || !isWordChar(sql[i-1])):
			j := i
			for j < len(sql) && isWordChar(sql[j]) {
				j++
			}
			if depth == 0 {
				switch strings.ToUpper(sql[i:j]) {
				case "ORDER":
					k := j
					for k < len(sql) && isBlank(sql[k]) {
						k++
					}
					if k+2 <= len(sql) && strings.EqualFold(sql[k:k+2], "BY") && (k+2 == len(sql) || !isWordChar(sql[k+2])) {
						last = i
						removable = true
						j = k + 2
					}
				case "LIMIT", "OFFSET", "FETCH", "ROWS", "FOR", "UNION", "EXCEPT", "INTERSECT", "MINUS":
					removable = false
				}
			}
			i = j
			continue
		}
		i++
	}
	if removable {
		info.orderBy = last
	}
	return info
}

func skipQuoted(sql string, i int, q byte) int {
	for j := i + 1; j < len(sql); j++ {
		if sql[j] != q {
			continue
		}
		if j+1 < len(sql) && sql[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(sql)
}

func isWordChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '_' || b == '$'
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
